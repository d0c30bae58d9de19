package location

import "time"

type Location struct {
	ID          int        `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Address     string     `db:"address" json:"address"`
	PhoneNumber string     `db:"phone_number" json:"phone_number"`
	Email       string     `db:"email" json:"email"`
	LinkMaps    string     `db:"link_maps" json:"link_maps"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type Facility struct {
	ID         int        `db:"id" json:"id"`
	LocationID int        `db:"location_id" json:"location_id"`
	Name       string     `db:"name" json:"name"`
	Capacity   int        `db:"capacity" json:"capacity"`
	Level      int        `db:"level" json:"level"`
	ImageURL   string     `db:"image_url" json:"image_url"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type Asset struct {
	ID         int        `db:"id" json:"id"`
	LocationID int        `db:"location_id" json:"location_id"`
	URL        string     `db:"url" json:"url"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// LocationDetail is a location with its live facilities and gallery.
type LocationDetail struct {
	Location
	Facilities []Facility `json:"facilities"`
	Assets     []Asset    `json:"assets"`
}

type LocationRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100" example:"Setalip Kemang"`
	Address     string `json:"address" binding:"required,max=255" example:"Jl. Kemang Raya 10"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
	LinkMaps    string `json:"link_maps" binding:"omitempty,url"`
}

type FacilityRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"Reformer Room"`
	Capacity int    `json:"capacity" binding:"required,gt=0" example:"8"`
	Level    int    `json:"level" binding:"omitempty,gte=0"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

type AssetRequest struct {
	URL string `json:"url" binding:"required,url"`
}
