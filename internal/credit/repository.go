package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const txColumns = `id, user_id, class_type_id, amount, type, note, user_package_id, agenda_booking_id, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// queryer falls back to the pool when no transaction is supplied.
func (r *repository) queryer(q sqlx.QueryerContext) sqlx.QueryerContext {
	if q == nil {
		return r.db
	}
	return q
}

func (r *repository) LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error {
	var id int
	err := sqlx.GetContext(ctx, q, &id, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (r *repository) Insert(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error) {
	query := `
		INSERT INTO credit_transactions (user_id, class_type_id, amount, type, note, user_package_id, agenda_booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + txColumns

	var out Transaction
	err := sqlx.GetContext(ctx, q, &out, query,
		t.UserID, t.ClassTypeID, t.Amount, t.Type, t.Note, t.UserPackageID, t.AgendaBookingID)
	if err != nil {
		return nil, fmt.Errorf("insert credit transaction: %w", err)
	}
	return &out, nil
}

func (r *repository) Balance(ctx context.Context, q sqlx.QueryerContext, userID, classTypeID int) (int, error) {
	var balance int
	query := `SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_id = $1 AND class_type_id = $2`
	if err := sqlx.GetContext(ctx, r.queryer(q), &balance, query, userID, classTypeID); err != nil {
		return 0, fmt.Errorf("credit balance: %w", err)
	}
	return balance, nil
}

func (r *repository) Balances(ctx context.Context, userID int) ([]Balance, error) {
	query := `
		SELECT ct.id AS class_type_id, ct.type AS class_type, COALESCE(SUM(t.amount), 0) AS balance
		FROM class_types ct
		LEFT JOIN credit_transactions t ON t.class_type_id = ct.id AND t.user_id = $1
		WHERE ct.deleted_at IS NULL
		GROUP BY ct.id, ct.type
		ORDER BY ct.type`

	balances := []Balance{}
	if err := r.db.SelectContext(ctx, &balances, query, userID); err != nil {
		return nil, fmt.Errorf("credit balances: %w", err)
	}
	return balances, nil
}

func (r *repository) History(ctx context.Context, userID, limit, offset int) ([]Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM credit_transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	txs := []Transaction{}
	if err := r.db.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("credit history: %w", err)
	}
	return txs, nil
}

func (r *repository) UsablePackages(ctx context.Context, q sqlx.QueryerContext, userID, classTypeID int, at time.Time) ([]PackageCredit, error) {
	query := `
		SELECT up.id AS user_package_id, up.user_id, p.class_type_id, SUM(t.amount) AS remaining, up.expired_at
		FROM user_packages up
		JOIN packages p ON p.id = up.package_id
		JOIN credit_transactions t ON t.user_package_id = up.id
		WHERE up.user_id = $1 AND p.class_type_id = $2 AND up.expired_at > $3
		GROUP BY up.id, up.user_id, p.class_type_id, up.expired_at
		HAVING SUM(t.amount) > 0
		ORDER BY up.expired_at, up.id`

	var pkgs []PackageCredit
	if err := sqlx.SelectContext(ctx, r.queryer(q), &pkgs, query, userID, classTypeID, at); err != nil {
		return nil, fmt.Errorf("usable packages: %w", err)
	}
	return pkgs, nil
}

func (r *repository) UnattributedBalance(ctx context.Context, q sqlx.QueryerContext, userID, classTypeID int) (int, error) {
	var balance int
	query := `SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_id = $1 AND class_type_id = $2 AND user_package_id IS NULL`
	if err := sqlx.GetContext(ctx, r.queryer(q), &balance, query, userID, classTypeID); err != nil {
		return 0, fmt.Errorf("unattributed balance: %w", err)
	}
	return balance, nil
}

func (r *repository) PackageRemaining(ctx context.Context, q sqlx.QueryerContext, userPackageID int) (int, error) {
	var remaining int
	query := `SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_package_id = $1`
	if err := sqlx.GetContext(ctx, r.queryer(q), &remaining, query, userPackageID); err != nil {
		return 0, fmt.Errorf("package remaining: %w", err)
	}
	return remaining, nil
}

func (r *repository) PackageExpiry(ctx context.Context, q sqlx.QueryerContext, userPackageID int) (time.Time, error) {
	var at time.Time
	if err := sqlx.GetContext(ctx, r.queryer(q), &at, `SELECT expired_at FROM user_packages WHERE id = $1`, userPackageID); err != nil {
		return time.Time{}, fmt.Errorf("package expiry: %w", err)
	}
	return at, nil
}

func (r *repository) ExpiredWithRemaining(ctx context.Context, at time.Time) ([]PackageCredit, error) {
	query := `
		SELECT up.id AS user_package_id, up.user_id, p.class_type_id, SUM(t.amount) AS remaining, up.expired_at
		FROM user_packages up
		JOIN packages p ON p.id = up.package_id
		JOIN credit_transactions t ON t.user_package_id = up.id
		WHERE up.expired_at <= $1
		GROUP BY up.id, up.user_id, p.class_type_id, up.expired_at
		HAVING SUM(t.amount) > 0
		ORDER BY up.expired_at, up.id`

	pkgs := []PackageCredit{}
	if err := r.db.SelectContext(ctx, &pkgs, query, at); err != nil {
		return nil, fmt.Errorf("expired packages: %w", err)
	}
	return pkgs, nil
}

func (r *repository) FindBookingDebit(ctx context.Context, q sqlx.QueryerContext, bookingID int) (*Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM credit_transactions WHERE agenda_booking_id = $1 AND type = 'booking' ORDER BY id LIMIT 1`

	var t Transaction
	if err := sqlx.GetContext(ctx, r.queryer(q), &t, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDebitNotFound
		}
		return nil, fmt.Errorf("find booking debit: %w", err)
	}
	return &t, nil
}
