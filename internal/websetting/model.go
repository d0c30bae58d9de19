package websetting

import "time"

type Setting struct {
	LogoURL     string    `db:"logo_url" json:"logo_url"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Email       string    `db:"email" json:"email"`
	Instagram   string    `db:"instagram" json:"instagram"`
	TikTok      string    `db:"tiktok" json:"tiktok"`
	Address     string    `db:"address" json:"address"`
	About       string    `db:"about" json:"about"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type FAQ struct {
	ID        int       `db:"id" json:"id"`
	Question  string    `db:"question" json:"question"`
	Answer    string    `db:"answer" json:"answer"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Review struct {
	ID        int       `db:"id" json:"id"`
	UserID    *int      `db:"user_id" json:"user_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"-"`
	Content   string    `db:"content" json:"content"`
	Rating    int       `db:"rating" json:"rating"`
	IsVisible bool      `db:"is_visible" json:"is_visible"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SettingRequest struct {
	LogoURL     string `json:"logo_url" binding:"omitempty,url"`
	PhoneNumber string `json:"phone_number" binding:"max=30"`
	Email       string `json:"email" binding:"omitempty,email"`
	Instagram   string `json:"instagram" binding:"max=100"`
	TikTok      string `json:"tiktok" binding:"max=100"`
	Address     string `json:"address" binding:"max=500"`
	About       string `json:"about" binding:"max=5000"`
}

type FAQRequest struct {
	Question string `json:"question" binding:"required,max=500" example:"Do I need my own mat?"`
	Answer   string `json:"answer" binding:"required,max=5000" example:"No, mats are provided."`
}

type ReviewRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5" example:"5"`
}

type VisibilityRequest struct {
	IsVisible bool `json:"is_visible"`
}
