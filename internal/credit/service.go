package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

var (
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrDebitNotFound      = errors.New("booking debit not found")
	ErrUserNotFound       = errors.New("user not found")
)

// Service owns the credit ledger. The methods taking q run inside a caller's
// transaction and expect LockLedger to have been called on it first.
type Service interface {
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Spend(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, bookingID int) (*Transaction, error)
	Refund(ctx context.Context, q sqlx.ExtContext, bookingID int) (*Transaction, error)
	Grant(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, userPackageID, amount int, note string) (*Transaction, error)

	Balance(ctx context.Context, userID, classTypeID int) (int, error)
	Balances(ctx context.Context, userID int) ([]Balance, error)
	History(ctx context.Context, userID, limit, offset int) ([]Transaction, error)
	Adjust(ctx context.Context, req AdjustRequest) ([]Transaction, error)
	ExpirePackages(ctx context.Context) (*ExpireResult, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{repo: repo, tx: tx, now: time.Now}
}

func (s *service) LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error {
	return s.repo.LockLedger(ctx, q, userID)
}

type allocation struct {
	userPackageID *int
	amount        int
}

// allocate picks where need credits come from: live packages closest to
// expiry first, then credit not tied to any package.
func (s *service) allocate(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, need int) ([]allocation, error) {
	balance, err := s.repo.Balance(ctx, q, userID, classTypeID)
	if err != nil {
		return nil, err
	}
	if balance < need {
		return nil, ErrInsufficientCredit
	}

	pkgs, err := s.repo.UsablePackages(ctx, q, userID, classTypeID, s.now())
	if err != nil {
		return nil, err
	}

	var out []allocation
	for _, p := range pkgs {
		if need == 0 {
			break
		}
		take := min(p.Remaining, need)
		id := p.UserPackageID
		out = append(out, allocation{userPackageID: &id, amount: take})
		need -= take
	}

	if need > 0 {
		free, err := s.repo.UnattributedBalance(ctx, q, userID, classTypeID)
		if err != nil {
			return nil, err
		}
		if free < need {
			return nil, ErrInsufficientCredit
		}
		out = append(out, allocation{amount: need})
	}
	return out, nil
}

func (s *service) Spend(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, bookingID int) (*Transaction, error) {
	allocs, err := s.allocate(ctx, q, userID, classTypeID, 1)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Insert(ctx, q, &Transaction{
		UserID:          userID,
		ClassTypeID:     classTypeID,
		Amount:          -1,
		Type:            TypeBooking,
		Note:            fmt.Sprintf("booking #%d", bookingID),
		UserPackageID:   allocs[0].userPackageID,
		AgendaBookingID: &bookingID,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordCreditMovement(TypeBooking)
	return t, nil
}

// Refund reverses a booking's debit exactly, crediting the same package it
// was drawn from. A package that has expired since no longer takes credit,
// so the refund is left unattributed and stays spendable.
func (s *service) Refund(ctx context.Context, q sqlx.ExtContext, bookingID int) (*Transaction, error) {
	debit, err := s.repo.FindBookingDebit(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}

	target := debit.UserPackageID
	if target != nil {
		expiry, err := s.repo.PackageExpiry(ctx, q, *target)
		if err != nil {
			return nil, err
		}
		if !expiry.After(s.now()) {
			logger.Info("refund to expired package left unattributed", "booking_id", bookingID, "user_package_id", *target)
			target = nil
		}
	}

	t, err := s.repo.Insert(ctx, q, &Transaction{
		UserID:          debit.UserID,
		ClassTypeID:     debit.ClassTypeID,
		Amount:          -debit.Amount,
		Type:            TypeRefund,
		Note:            fmt.Sprintf("refund booking #%d", bookingID),
		UserPackageID:   target,
		AgendaBookingID: &bookingID,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordCreditMovement(TypeRefund)
	return t, nil
}

func (s *service) Grant(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, userPackageID, amount int, note string) (*Transaction, error) {
	t, err := s.repo.Insert(ctx, q, &Transaction{
		UserID:        userID,
		ClassTypeID:   classTypeID,
		Amount:        amount,
		Type:          TypePackage,
		Note:          note,
		UserPackageID: &userPackageID,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordCreditMovement(TypePackage)
	return t, nil
}

func (s *service) Balance(ctx context.Context, userID, classTypeID int) (int, error) {
	return s.repo.Balance(ctx, nil, userID, classTypeID)
}

func (s *service) Balances(ctx context.Context, userID int) ([]Balance, error) {
	return s.repo.Balances(ctx, userID)
}

func (s *service) History(ctx context.Context, userID, limit, offset int) ([]Transaction, error) {
	return s.repo.History(ctx, userID, limit, offset)
}

// Adjust records a manual correction. Removals are drawn like a booking so
// no package is left with a negative remainder.
func (s *service) Adjust(ctx context.Context, req AdjustRequest) ([]Transaction, error) {
	var out []Transaction
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		if err := s.repo.LockLedger(ctx, q, req.UserID); err != nil {
			return err
		}

		allocs := []allocation{{amount: req.Amount}}
		if req.Amount < 0 {
			var err error
			allocs, err = s.allocate(ctx, q, req.UserID, req.ClassTypeID, -req.Amount)
			if err != nil {
				return err
			}
			for i := range allocs {
				allocs[i].amount = -allocs[i].amount
			}
		}

		for _, a := range allocs {
			t, err := s.repo.Insert(ctx, q, &Transaction{
				UserID:        req.UserID,
				ClassTypeID:   req.ClassTypeID,
				Amount:        a.amount,
				Type:          TypeAdjustment,
				Note:          req.Note,
				UserPackageID: a.userPackageID,
			})
			if err != nil {
				return err
			}
			out = append(out, *t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCreditMovement(TypeAdjustment)
	logger.Info("credit adjusted", "user_id", req.UserID, "class_type_id", req.ClassTypeID, "amount", req.Amount)
	return out, nil
}

// ExpirePackages writes off what is left of every package past its expiry.
// Each package is handled in its own transaction; the remainder is read again
// under the ledger lock so a concurrent booking cannot be expired twice.
func (s *service) ExpirePackages(ctx context.Context) (*ExpireResult, error) {
	pkgs, err := s.repo.ExpiredWithRemaining(ctx, s.now())
	if err != nil {
		return nil, err
	}

	res := &ExpireResult{}
	for _, p := range pkgs {
		var written int
		err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
			if err := s.repo.LockLedger(ctx, q, p.UserID); err != nil {
				return err
			}
			remaining, err := s.repo.PackageRemaining(ctx, q, p.UserPackageID)
			if err != nil || remaining <= 0 {
				return err
			}

			id := p.UserPackageID
			_, err = s.repo.Insert(ctx, q, &Transaction{
				UserID:        p.UserID,
				ClassTypeID:   p.ClassTypeID,
				Amount:        -remaining,
				Type:          TypeExpired,
				Note:          fmt.Sprintf("package #%d expired", p.UserPackageID),
				UserPackageID: &id,
			})
			written = remaining
			return err
		})
		if err != nil {
			logger.Error("expire package failed", "user_package_id", p.UserPackageID, "error", err)
			continue
		}
		if written > 0 {
			res.Packages++
			res.Credits += written
			metrics.RecordCreditMovement(TypeExpired)
		}
	}

	logger.Info("packages expired", "packages", res.Packages, "credits", res.Credits)
	return res, nil
}
