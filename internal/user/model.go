package user

import (
	"time"

	"github.com/drithh/setalip-mono-sub003/internal/auth"
)

type User struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	Address      string     `db:"address" json:"address"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	VerifiedAt   *time.Time `db:"verified_at" json:"verified_at"`
	LocationID   *int       `db:"location_id" json:"location_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100" example:"Ana Putri"`
	Email      string `json:"email" binding:"required,email" example:"ana@example.com"`
	Phone      string `json:"phone" binding:"required,min=8,max=20" example:"081234567890"`
	Password   string `json:"password" binding:"required,min=8" example:"password123"`
	LocationID *int   `json:"location_id" binding:"omitempty,gt=0" example:"1"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Phone      string `json:"phone" binding:"required,min=8,max=20"`
	Address    string `json:"address" binding:"omitempty,max=255"`
	LocationID *int   `json:"location_id" binding:"omitempty,gt=0"`
}

type VerifyRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric" example:"123456"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,min=8,max=20"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=member coach admin"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member coach admin"`
}

type ListFilter struct {
	Role   string `form:"role" binding:"omitempty,oneof=member coach admin"`
	Search string `form:"q" binding:"omitempty,max=100"`
	Limit  int    `form:"-"`
	Offset int    `form:"-"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

func newAuthResponse(tokens *auth.TokenPair, u *User) *AuthResponse {
	return &AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: u}
}
