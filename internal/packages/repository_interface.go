package packages

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, req PackageRequest) (*Package, error)
	Update(ctx context.Context, id int, req PackageRequest) (*Package, error)
	FindAll(ctx context.Context, activeOnly bool) ([]Package, error)
	FindByID(ctx context.Context, q sqlx.QueryerContext, id int) (*Package, error)
	SoftDelete(ctx context.Context, id int) error

	HasCompletedPurchase(ctx context.Context, q sqlx.QueryerContext, userID, packageID int) (bool, error)
	InsertTransaction(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error)
	LockTransaction(ctx context.Context, q sqlx.ExtContext, id int) (*TransactionDetail, error)
	Complete(ctx context.Context, q sqlx.ExtContext, id, userPackageID int) (*Transaction, error)
	SetStatus(ctx context.Context, q sqlx.ExtContext, id int, status string) (*Transaction, error)
	SetProof(ctx context.Context, id, userID int, imageURL string) (*Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]TransactionDetail, error)
	ListUserTransactions(ctx context.Context, userID, limit, offset int) ([]TransactionDetail, error)

	InsertUserPackage(ctx context.Context, q sqlx.ExtContext, userID, packageID, credit int, expiredAt time.Time) (*UserPackage, error)
}
