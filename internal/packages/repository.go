package packages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
)

const (
	packageColumns = `id, name, description, price, credit, valid_for, class_type_id, is_active, one_time_only, loyalty_points, created_at, updated_at, deleted_at`
	txColumns      = `id, user_id, package_id, user_package_id, amount, discount, loyalty_points_used, unique_code, status, image_url, created_at, updated_at`
)

const txDetailSelect = `
	SELECT
		t.id, t.user_id, t.package_id, t.user_package_id, t.amount, t.discount, t.loyalty_points_used,
		t.unique_code, t.status, t.image_url, t.created_at, t.updated_at,
		p.name AS package_name,
		u.name AS user_name,
		u.email AS user_email
	FROM package_transactions t
	JOIN packages p ON p.id = t.package_id
	JOIN users u ON u.id = t.user_id`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) queryer(q sqlx.QueryerContext) sqlx.QueryerContext {
	if q == nil {
		return r.db
	}
	return q
}

func (r *repository) Create(ctx context.Context, req PackageRequest) (*Package, error) {
	query := `
		INSERT INTO packages (name, description, price, credit, valid_for, class_type_id, is_active, one_time_only, loyalty_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + packageColumns

	var p Package
	err := r.db.GetContext(ctx, &p, query,
		req.Name, req.Description, req.Price, req.Credit, req.ValidFor, req.ClassTypeID, req.IsActive, req.OneTimeOnly, req.LoyaltyPoints)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id int, req PackageRequest) (*Package, error) {
	query := `
		UPDATE packages
		SET name = $2, description = $3, price = $4, credit = $5, valid_for = $6, class_type_id = $7,
			is_active = $8, one_time_only = $9, loyalty_points = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + packageColumns

	var p Package
	err := r.db.GetContext(ctx, &p, query,
		id, req.Name, req.Description, req.Price, req.Credit, req.ValidFor, req.ClassTypeID, req.IsActive, req.OneTimeOnly, req.LoyaltyPoints)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrPackageNotFound
		case db.IsForeignKeyViolation(err):
			return nil, ErrInvalidReference
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindAll(ctx context.Context, activeOnly bool) ([]Package, error) {
	pkgs := []Package{}
	query := `SELECT ` + packageColumns + ` FROM packages WHERE deleted_at IS NULL AND (NOT $1 OR is_active) ORDER BY class_type_id, price`
	if err := r.db.SelectContext(ctx, &pkgs, query, activeOnly); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return pkgs, nil
}

func (r *repository) FindByID(ctx context.Context, q sqlx.QueryerContext, id int) (*Package, error) {
	var p Package
	if err := sqlx.GetContext(ctx, r.queryer(q), &p, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE packages SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPackageNotFound
	}
	return nil
}

func (r *repository) HasCompletedPurchase(ctx context.Context, q sqlx.QueryerContext, userID, packageID int) (bool, error) {
	return db.Exists(ctx, r.queryer(q),
		`SELECT EXISTS(SELECT 1 FROM package_transactions WHERE user_id = $1 AND package_id = $2 AND status = 'completed')`,
		userID, packageID)
}

func (r *repository) InsertTransaction(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error) {
	query := `
		INSERT INTO package_transactions (user_id, package_id, amount, discount, loyalty_points_used, unique_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING ` + txColumns

	var out Transaction
	err := sqlx.GetContext(ctx, q, &out, query, t.UserID, t.PackageID, t.Amount, t.Discount, t.LoyaltyPointsUsed, t.UniqueCode)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert package transaction: %w", err)
	}
	return &out, nil
}

func (r *repository) LockTransaction(ctx context.Context, q sqlx.ExtContext, id int) (*TransactionDetail, error) {
	var d TransactionDetail
	if err := sqlx.GetContext(ctx, q, &d, txDetailSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("lock package transaction: %w", err)
	}
	return &d, nil
}

func (r *repository) Complete(ctx context.Context, q sqlx.ExtContext, id, userPackageID int) (*Transaction, error) {
	query := `
		UPDATE package_transactions SET status = 'completed', user_package_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + txColumns

	var out Transaction
	if err := sqlx.GetContext(ctx, q, &out, query, id, userPackageID); err != nil {
		return nil, fmt.Errorf("complete package transaction: %w", err)
	}
	return &out, nil
}

func (r *repository) SetStatus(ctx context.Context, q sqlx.ExtContext, id int, status string) (*Transaction, error) {
	query := `UPDATE package_transactions SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + txColumns

	var out Transaction
	if err := sqlx.GetContext(ctx, q, &out, query, id, status); err != nil {
		return nil, fmt.Errorf("update package transaction: %w", err)
	}
	return &out, nil
}

// SetProof only touches the member's own pending transactions.
func (r *repository) SetProof(ctx context.Context, id, userID int, imageURL string) (*Transaction, error) {
	query := `
		UPDATE package_transactions SET image_url = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'pending'
		RETURNING ` + txColumns

	var out Transaction
	if err := r.db.GetContext(ctx, &out, query, id, userID, imageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *repository) ListTransactions(ctx context.Context, f TransactionFilter) ([]TransactionDetail, error) {
	out := []TransactionDetail{}
	query := txDetailSelect + ` WHERE ($1 = '' OR t.status = $1) ORDER BY t.created_at DESC, t.id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &out, query, f.Status, f.Limit, f.Offset); err != nil {
		return nil, fmt.Errorf("list package transactions: %w", err)
	}
	return out, nil
}

func (r *repository) ListUserTransactions(ctx context.Context, userID, limit, offset int) ([]TransactionDetail, error) {
	out := []TransactionDetail{}
	query := txDetailSelect + ` WHERE t.user_id = $1 ORDER BY t.created_at DESC, t.id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &out, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list user package transactions: %w", err)
	}
	return out, nil
}

func (r *repository) InsertUserPackage(ctx context.Context, q sqlx.ExtContext, userID, packageID, credit int, expiredAt time.Time) (*UserPackage, error) {
	query := `
		INSERT INTO user_packages (user_id, package_id, credit, expired_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, package_id, credit, expired_at, created_at`

	var up UserPackage
	if err := sqlx.GetContext(ctx, q, &up, query, userID, packageID, credit, expiredAt); err != nil {
		return nil, fmt.Errorf("insert user package: %w", err)
	}
	return &up, nil
}
