package credit

import "time"

const (
	TypePackage    = "package"
	TypeBooking    = "booking"
	TypeRefund     = "refund"
	TypeExpired    = "expired"
	TypeAdjustment = "adjustment"
)

// Transaction is one append-only ledger row. Balances are always the sum of
// these rows; nothing stores a running total.
type Transaction struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	ClassTypeID     int       `db:"class_type_id" json:"class_type_id"`
	Amount          int       `db:"amount" json:"amount"`
	Type            string    `db:"type" json:"type"`
	Note            string    `db:"note" json:"note"`
	UserPackageID   *int      `db:"user_package_id" json:"user_package_id,omitempty"`
	AgendaBookingID *int      `db:"agenda_booking_id" json:"agenda_booking_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Balance struct {
	ClassTypeID int    `db:"class_type_id" json:"class_type_id"`
	ClassType   string `db:"class_type" json:"class_type"`
	Balance     int    `db:"balance" json:"balance"`
}

// PackageCredit is what is left of one purchased package.
type PackageCredit struct {
	UserPackageID int       `db:"user_package_id" json:"user_package_id"`
	UserID        int       `db:"user_id" json:"user_id"`
	ClassTypeID   int       `db:"class_type_id" json:"class_type_id"`
	Remaining     int       `db:"remaining" json:"remaining"`
	ExpiredAt     time.Time `db:"expired_at" json:"expired_at"`
}

type AdjustRequest struct {
	UserID      int    `json:"user_id" binding:"required,gt=0"`
	ClassTypeID int    `json:"class_type_id" binding:"required,gt=0"`
	Amount      int    `json:"amount" binding:"required,ne=0" example:"-2"`
	Note        string `json:"note" binding:"max=255"`
}

type ExpireResult struct {
	Packages int `json:"packages"`
	Credits  int `json:"credits"`
}
