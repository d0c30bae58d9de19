package user

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error)
	UpdateRole(ctx context.Context, id int, role string) (*User, error)
	MarkVerified(ctx context.Context, id int, at time.Time) (*User, error)
	List(ctx context.Context, f ListFilter) ([]User, error)
	SoftDelete(ctx context.Context, id int) error
}
