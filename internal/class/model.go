package class

import "time"

type ClassType struct {
	ID        int        `db:"id" json:"id"`
	Type      string     `db:"type" json:"type"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type Class struct {
	ID                 int        `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Description        string     `db:"description" json:"description"`
	Duration           int        `db:"duration" json:"duration"`
	Slot               int        `db:"slot" json:"slot"`
	ClassTypeID        int        `db:"class_type_id" json:"class_type_id"`
	LocationFacilityID *int       `db:"location_facility_id" json:"location_facility_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type ClassAsset struct {
	ID        int       `db:"id" json:"id"`
	ClassID   int       `db:"class_id" json:"class_id"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ClassDetail struct {
	Class
	ClassType string       `json:"class_type"`
	Assets    []ClassAsset `json:"assets"`
}

type ClassTypeRequest struct {
	Type string `json:"type" binding:"required,max=50" example:"Reformer"`
}

type ClassRequest struct {
	Name               string `json:"name" binding:"required,max=100" example:"Reformer Beginner"`
	Description        string `json:"description" binding:"max=2000"`
	Duration           int    `json:"duration" binding:"required,gt=0,lte=480" example:"50"`
	Slot               int    `json:"slot" binding:"required,gt=0" example:"8"`
	ClassTypeID        int    `json:"class_type_id" binding:"required,gt=0" example:"1"`
	LocationFacilityID *int   `json:"location_facility_id" binding:"omitempty,gt=0"`
}

type AssetRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type ListFilter struct {
	ClassTypeID int `form:"class_type_id" binding:"omitempty,gt=0"`
}
