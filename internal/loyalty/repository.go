package loyalty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
)

const (
	txColumns     = `id, user_id, amount, type, note, reference_type, reference_id, created_at`
	rewardColumns = `id, name, reward, description, created_at, updated_at, deleted_at`
	shopColumns   = `id, name, price, description, image_url, created_at, updated_at, deleted_at`
)

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
		INSERT INTO loyalty_transactions (user_id, amount, type, note, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + txColumns

	var out Transaction
	if err := sqlx.GetContext(ctx, q, &out, query, t.UserID, t.Amount, t.Type, t.Note, t.ReferenceType, t.ReferenceID); err != nil {
		return nil, fmt.Errorf("insert loyalty transaction: %w", err)
	}
	return &out, nil
}

func (r *repository) Balance(ctx context.Context, q sqlx.QueryerContext, userID int) (int, error) {
	var balance int
	err := sqlx.GetContext(ctx, r.queryer(q), &balance, `SELECT COALESCE(SUM(amount), 0) FROM loyalty_transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("loyalty balance: %w", err)
	}
	return balance, nil
}

func (r *repository) History(ctx context.Context, userID, limit, offset int) ([]Transaction, error) {
	txs := []Transaction{}
	query := `SELECT ` + txColumns + ` FROM loyalty_transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("loyalty history: %w", err)
	}
	return txs, nil
}

func (r *repository) SumByReference(ctx context.Context, q sqlx.QueryerContext, userID int, refType string, refID int) (int, error) {
	var sum int
	query := `SELECT COALESCE(SUM(amount), 0) FROM loyalty_transactions WHERE user_id = $1 AND reference_type = $2 AND reference_id = $3`
	if err := sqlx.GetContext(ctx, r.queryer(q), &sum, query, userID, refType, refID); err != nil {
		return 0, fmt.Errorf("loyalty by reference: %w", err)
	}
	return sum, nil
}

func (r *repository) HasReversal(ctx context.Context, q sqlx.QueryerContext, userID int, refType string, refID int) (bool, error) {
	return db.Exists(ctx, r.queryer(q),
		`SELECT EXISTS(SELECT 1 FROM loyalty_transactions WHERE user_id = $1 AND reference_type = $2 AND reference_id = $3 AND type = 'reversal')`,
		userID, refType, refID)
}

func (r *repository) FindRewardByName(ctx context.Context, q sqlx.QueryerContext, name string) (*Reward, error) {
	var rw Reward
	query := `SELECT ` + rewardColumns + ` FROM loyalty_rewards WHERE name = $1 AND deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, r.queryer(q), &rw, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	return &rw, nil
}

func (r *repository) CreateReward(ctx context.Context, req RewardRequest) (*Reward, error) {
	var rw Reward
	query := `INSERT INTO loyalty_rewards (name, reward, description) VALUES ($1, $2, $3) RETURNING ` + rewardColumns
	if err := r.db.GetContext(ctx, &rw, query, req.Name, req.Reward, req.Description); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrRewardExists
		}
		return nil, err
	}
	return &rw, nil
}

func (r *repository) UpdateReward(ctx context.Context, id int, req RewardRequest) (*Reward, error) {
	var rw Reward
	query := `
		UPDATE loyalty_rewards SET name = $2, reward = $3, description = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + rewardColumns
	if err := r.db.GetContext(ctx, &rw, query, id, req.Name, req.Reward, req.Description); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRewardNotFound
		case db.IsUniqueViolation(err):
			return nil, ErrRewardExists
		}
		return nil, err
	}
	return &rw, nil
}

func (r *repository) FindAllRewards(ctx context.Context) ([]Reward, error) {
	rewards := []Reward{}
	if err := r.db.SelectContext(ctx, &rewards, `SELECT `+rewardColumns+` FROM loyalty_rewards WHERE deleted_at IS NULL ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return rewards, nil
}

// SoftDeleteReward also renames the row so the name can be reused.
func (r *repository) SoftDeleteReward(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loyalty_rewards SET deleted_at = NOW(), name = name || '#' || id WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRewardNotFound
	}
	return nil
}

func (r *repository) CreateShopItem(ctx context.Context, req ShopItemRequest) (*ShopItem, error) {
	var it ShopItem
	query := `INSERT INTO loyalty_shops (name, price, description, image_url) VALUES ($1, $2, $3, $4) RETURNING ` + shopColumns
	if err := r.db.GetContext(ctx, &it, query, req.Name, req.Price, req.Description, req.ImageURL); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) UpdateShopItem(ctx context.Context, id int, req ShopItemRequest) (*ShopItem, error) {
	var it ShopItem
	query := `
		UPDATE loyalty_shops SET name = $2, price = $3, description = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + shopColumns
	if err := r.db.GetContext(ctx, &it, query, id, req.Name, req.Price, req.Description, req.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShopItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) FindAllShopItems(ctx context.Context) ([]ShopItem, error) {
	items := []ShopItem{}
	if err := r.db.SelectContext(ctx, &items, `SELECT `+shopColumns+` FROM loyalty_shops WHERE deleted_at IS NULL ORDER BY price, name`); err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	return items, nil
}

func (r *repository) FindShopItemByID(ctx context.Context, q sqlx.QueryerContext, id int) (*ShopItem, error) {
	var it ShopItem
	if err := sqlx.GetContext(ctx, r.queryer(q), &it, `SELECT `+shopColumns+` FROM loyalty_shops WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShopItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) SoftDeleteShopItem(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE loyalty_shops SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete shop item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShopItemNotFound
	}
	return nil
}
