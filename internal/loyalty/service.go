package loyalty

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

var (
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrRewardExists       = errors.New("reward name already exists")
	ErrShopItemNotFound   = errors.New("shop item not found")
	ErrUserNotFound       = errors.New("user not found")
)

type Service interface {
	// Ledger operations joining a caller's transaction.
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Accrue(ctx context.Context, q sqlx.ExtContext, userID int, rewardName, refType string, refID int) (*Transaction, error)
	Award(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*Transaction, error)
	Spend(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*Transaction, error)
	Reverse(ctx context.Context, q sqlx.ExtContext, userID int, refType string, refID int) (*Transaction, error)

	Balance(ctx context.Context, userID int) (int, error)
	History(ctx context.Context, userID, limit, offset int) ([]Transaction, error)
	Redeem(ctx context.Context, userID, shopItemID int) (*Transaction, error)
	Adjust(ctx context.Context, req AdjustRequest) (*Transaction, error)

	ListRewards(ctx context.Context) ([]Reward, error)
	CreateReward(ctx context.Context, req RewardRequest) (*Reward, error)
	UpdateReward(ctx context.Context, id int, req RewardRequest) (*Reward, error)
	DeleteReward(ctx context.Context, id int) error

	ListShopItems(ctx context.Context) ([]ShopItem, error)
	CreateShopItem(ctx context.Context, req ShopItemRequest) (*ShopItem, error)
	UpdateShopItem(ctx context.Context, id int, req ShopItemRequest) (*ShopItem, error)
	DeleteShopItem(ctx context.Context, id int) error
}

type service struct {
	repo Repository
	tx   db.Transactor
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{repo: repo, tx: tx}
}

func ref(refType string, refID int) (*string, *int) {
	if refType == "" {
		return nil, nil
	}
	return &refType, &refID
}

func (s *service) insert(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error) {
	out, err := s.repo.Insert(ctx, q, t)
	if err != nil {
		return nil, err
	}
	metrics.RecordLoyaltyMovement(t.Type)
	return out, nil
}

func (s *service) LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error {
	return s.repo.LockLedger(ctx, q, userID)
}

// Accrue grants the points configured for rewardName. A missing or zero
// reward grants nothing and is not an error.
func (s *service) Accrue(ctx context.Context, q sqlx.ExtContext, userID int, rewardName, refType string, refID int) (*Transaction, error) {
	rw, err := s.repo.FindRewardByName(ctx, q, rewardName)
	if errors.Is(err, ErrRewardNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rw.Reward <= 0 {
		return nil, nil
	}

	rt, rid := ref(refType, refID)
	return s.insert(ctx, q, &Transaction{
		UserID: userID, Amount: rw.Reward, Type: TypeReward, Note: rw.Name, ReferenceType: rt, ReferenceID: rid,
	})
}

func (s *service) Award(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*Transaction, error) {
	if amount <= 0 {
		return nil, nil
	}
	rt, rid := ref(refType, refID)
	return s.insert(ctx, q, &Transaction{
		UserID: userID, Amount: amount, Type: TypePackage, Note: note, ReferenceType: rt, ReferenceID: rid,
	})
}

func (s *service) Spend(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*Transaction, error) {
	balance, err := s.repo.Balance(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientPoints
	}

	rt, rid := ref(refType, refID)
	return s.insert(ctx, q, &Transaction{
		UserID: userID, Amount: -amount, Type: TypeRedeem, Note: note, ReferenceType: rt, ReferenceID: rid,
	})
}

// Reverse cancels every movement recorded against a reference, once. Taking
// back points the member already spent is capped at the current balance, so
// the ledger never goes below zero.
func (s *service) Reverse(ctx context.Context, q sqlx.ExtContext, userID int, refType string, refID int) (*Transaction, error) {
	reversed, err := s.repo.HasReversal(ctx, q, userID, refType, refID)
	if err != nil || reversed {
		return nil, err
	}
	net, err := s.repo.SumByReference(ctx, q, userID, refType, refID)
	if err != nil || net == 0 {
		return nil, err
	}

	amount := -net
	if net > 0 {
		balance, err := s.repo.Balance(ctx, q, userID)
		if err != nil {
			return nil, err
		}
		if balance <= 0 {
			logger.Warn("loyalty reversal skipped, balance exhausted", "user_id", userID, "reference_type", refType, "reference_id", refID, "owed", net)
			return nil, nil
		}
		if balance < net {
			logger.Warn("loyalty reversal capped at balance", "user_id", userID, "reference_type", refType, "reference_id", refID, "owed", net, "balance", balance)
			amount = -balance
		}
	}

	return s.insert(ctx, q, &Transaction{
		UserID: userID, Amount: amount, Type: TypeReversal, Note: "reversal", ReferenceType: &refType, ReferenceID: &refID,
	})
}

func (s *service) Balance(ctx context.Context, userID int) (int, error) {
	return s.repo.Balance(ctx, nil, userID)
}

func (s *service) History(ctx context.Context, userID, limit, offset int) ([]Transaction, error) {
	return s.repo.History(ctx, userID, limit, offset)
}

func (s *service) Redeem(ctx context.Context, userID, shopItemID int) (*Transaction, error) {
	var out *Transaction
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		if err := s.repo.LockLedger(ctx, q, userID); err != nil {
			return err
		}
		item, err := s.repo.FindShopItemByID(ctx, q, shopItemID)
		if err != nil {
			return err
		}
		if item.DeletedAt != nil {
			return ErrShopItemNotFound
		}

		out, err = s.Spend(ctx, q, userID, item.Price, item.Name, RefShopItem, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("loyalty item redeemed", "user_id", userID, "shop_item_id", shopItemID, "points", -out.Amount)
	return out, nil
}

func (s *service) Adjust(ctx context.Context, req AdjustRequest) (*Transaction, error) {
	var out *Transaction
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		if err := s.repo.LockLedger(ctx, q, req.UserID); err != nil {
			return err
		}
		if req.Amount < 0 {
			balance, err := s.repo.Balance(ctx, q, req.UserID)
			if err != nil {
				return err
			}
			if balance+req.Amount < 0 {
				return ErrInsufficientPoints
			}
		}

		var err error
		out, err = s.insert(ctx, q, &Transaction{UserID: req.UserID, Amount: req.Amount, Type: TypeAdjustment, Note: req.Note})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListRewards(ctx context.Context) ([]Reward, error) {
	return s.repo.FindAllRewards(ctx)
}

func (s *service) CreateReward(ctx context.Context, req RewardRequest) (*Reward, error) {
	return s.repo.CreateReward(ctx, req)
}

func (s *service) UpdateReward(ctx context.Context, id int, req RewardRequest) (*Reward, error) {
	return s.repo.UpdateReward(ctx, id, req)
}

func (s *service) DeleteReward(ctx context.Context, id int) error {
	return s.repo.SoftDeleteReward(ctx, id)
}

func (s *service) ListShopItems(ctx context.Context) ([]ShopItem, error) {
	return s.repo.FindAllShopItems(ctx)
}

func (s *service) CreateShopItem(ctx context.Context, req ShopItemRequest) (*ShopItem, error) {
	return s.repo.CreateShopItem(ctx, req)
}

func (s *service) UpdateShopItem(ctx context.Context, id int, req ShopItemRequest) (*ShopItem, error) {
	return s.repo.UpdateShopItem(ctx, id, req)
}

func (s *service) DeleteShopItem(ctx context.Context, id int) error {
	return s.repo.SoftDeleteShopItem(ctx, id)
}
