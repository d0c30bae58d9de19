package loyalty

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Insert(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error)
	Balance(ctx context.Context, q sqlx.QueryerContext, userID int) (int, error)
	History(ctx context.Context, userID, limit, offset int) ([]Transaction, error)
	SumByReference(ctx context.Context, q sqlx.QueryerContext, userID int, refType string, refID int) (int, error)
	HasReversal(ctx context.Context, q sqlx.QueryerContext, userID int, refType string, refID int) (bool, error)

	FindRewardByName(ctx context.Context, q sqlx.QueryerContext, name string) (*Reward, error)
	CreateReward(ctx context.Context, req RewardRequest) (*Reward, error)
	UpdateReward(ctx context.Context, id int, req RewardRequest) (*Reward, error)
	FindAllRewards(ctx context.Context) ([]Reward, error)
	SoftDeleteReward(ctx context.Context, id int) error

	CreateShopItem(ctx context.Context, req ShopItemRequest) (*ShopItem, error)
	UpdateShopItem(ctx context.Context, id int, req ShopItemRequest) (*ShopItem, error)
	FindAllShopItems(ctx context.Context) ([]ShopItem, error)
	FindShopItemByID(ctx context.Context, q sqlx.QueryerContext, id int) (*ShopItem, error)
	SoftDeleteShopItem(ctx context.Context, id int) error
}
