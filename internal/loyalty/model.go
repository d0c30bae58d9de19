package loyalty

import "time"

const (
	TypeReward     = "reward"
	TypePackage    = "package"
	TypeRedeem     = "redeem"
	TypeReversal   = "reversal"
	TypeAdjustment = "adjustment"

	RefBooking    = "agenda_booking"
	RefPackageTx  = "package_transaction"
	RefShopItem   = "loyalty_shop"
	RewardBooking = "booking"
)

type Transaction struct {
	ID            int       `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	Amount        int       `db:"amount" json:"amount"`
	Type          string    `db:"type" json:"type"`
	Note          string    `db:"note" json:"note"`
	ReferenceType *string   `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   *int      `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Reward is a named rule granting points, looked up by name when the
// matching activity happens.
type Reward struct {
	ID          int        `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Reward      int        `db:"reward" json:"reward"`
	Description string     `db:"description" json:"description"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type ShopItem struct {
	ID          int        `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Price       int        `db:"price" json:"price"`
	Description string     `db:"description" json:"description"`
	ImageURL    string     `db:"image_url" json:"image_url"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type BalanceResponse struct {
	Balance int `json:"balance"`
}

type RewardRequest struct {
	Name        string `json:"name" binding:"required,max=50" example:"booking"`
	Reward      int    `json:"reward" binding:"gte=0" example:"1"`
	Description string `json:"description" binding:"max=255"`
}

type ShopItemRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Grip socks"`
	Price       int    `json:"price" binding:"required,gt=0" example:"50"`
	Description string `json:"description" binding:"max=1000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
}

type AdjustRequest struct {
	UserID int    `json:"user_id" binding:"required,gt=0"`
	Amount int    `json:"amount" binding:"required,ne=0" example:"10"`
	Note   string `json:"note" binding:"max=255"`
}
