package packages

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Package struct {
	ID            int             `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price" swaggertype:"string" example:"750000"`
	Credit        int             `db:"credit" json:"credit"`
	ValidFor      int             `db:"valid_for" json:"valid_for"`
	ClassTypeID   int             `db:"class_type_id" json:"class_type_id"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	OneTimeOnly   bool            `db:"one_time_only" json:"one_time_only"`
	LoyaltyPoints int             `db:"loyalty_points" json:"loyalty_points"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
}

type UserPackage struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	PackageID int       `db:"package_id" json:"package_id"`
	Credit    int       `db:"credit" json:"credit"`
	ExpiredAt time.Time `db:"expired_at" json:"expired_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Transaction is a purchase of a package awaiting, or past, payment review.
type Transaction struct {
	ID                int             `db:"id" json:"id"`
	UserID            int             `db:"user_id" json:"user_id"`
	PackageID         int             `db:"package_id" json:"package_id"`
	UserPackageID     *int            `db:"user_package_id" json:"user_package_id,omitempty"`
	Amount            decimal.Decimal `db:"amount" json:"amount" swaggertype:"string"`
	Discount          decimal.Decimal `db:"discount" json:"discount" swaggertype:"string"`
	LoyaltyPointsUsed int             `db:"loyalty_points_used" json:"loyalty_points_used"`
	UniqueCode        string          `db:"unique_code" json:"unique_code"`
	Status            string          `db:"status" json:"status"`
	ImageURL          string          `db:"image_url" json:"image_url"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type TransactionDetail struct {
	Transaction
	PackageName string `db:"package_name" json:"package_name"`
	UserName    string `db:"user_name" json:"user_name"`
	UserEmail   string `db:"user_email" json:"user_email"`
}

type PackageRequest struct {
	Name          string          `json:"name" binding:"required,max=100" example:"10x Reformer"`
	Description   string          `json:"description" binding:"max=1000"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"750000"`
	Credit        int             `json:"credit" binding:"required,gt=0" example:"10"`
	ValidFor      int             `json:"valid_for" binding:"required,gt=0" example:"60"`
	ClassTypeID   int             `json:"class_type_id" binding:"required,gt=0"`
	IsActive      bool            `json:"is_active"`
	OneTimeOnly   bool            `json:"one_time_only"`
	LoyaltyPoints int             `json:"loyalty_points" binding:"gte=0"`
}

type PurchaseRequest struct {
	RedeemPoints int `json:"redeem_points" binding:"gte=0" example:"0"`
}

type ProofRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
}

type TransactionFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending completed failed"`
	Limit  int    `form:"-"`
	Offset int    `form:"-"`
}

// ApprovedEvent is published on package.approved.
type ApprovedEvent struct {
	TransactionID int       `json:"transaction_id"`
	UserID        int       `json:"user_id"`
	PackageID     int       `json:"package_id"`
	UserPackageID int       `json:"user_package_id"`
	Credit        int       `json:"credit"`
	ExpiredAt     time.Time `json:"expired_at"`
}
