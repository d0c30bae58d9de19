package credit

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// LockLedger serializes ledger writes for one user until q commits.
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Insert(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error)

	Balance(ctx context.Context, q sqlx.QueryerContext, userID, classTypeID int) (int, error)
	Balances(ctx context.Context, userID int) ([]Balance, error)
	History(ctx context.Context, userID, limit, offset int) ([]Transaction, error)

	UsablePackages(ctx context.Context, q sqlx.QueryerContext, userID, classTypeID int, at time.Time) ([]PackageCredit, error)
	UnattributedBalance(ctx context.Context, q sqlx.QueryerContext, userID, classTypeID int) (int, error)
	PackageRemaining(ctx context.Context, q sqlx.QueryerContext, userPackageID int) (int, error)
	PackageExpiry(ctx context.Context, q sqlx.QueryerContext, userPackageID int) (time.Time, error)
	ExpiredWithRemaining(ctx context.Context, at time.Time) ([]PackageCredit, error)
	FindBookingDebit(ctx context.Context, q sqlx.QueryerContext, bookingID int) (*Transaction, error)
}
