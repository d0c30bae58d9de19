package packages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/drithh/setalip-mono-sub003/internal/credit"
	"github.com/drithh/setalip-mono-sub003/internal/db"
	"github.com/drithh/setalip-mono-sub003/internal/events"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/loyalty"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

var (
	ErrPackageNotFound     = errors.New("package not found")
	ErrPackageUnavailable  = errors.New("package is not available for purchase")
	ErrAlreadyPurchased    = errors.New("package can only be purchased once")
	ErrTransactionNotFound = errors.New("package transaction not found")
	ErrNotPending          = errors.New("package transaction is not pending")
	ErrDuplicateCode       = errors.New("unique code collision")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrInvalidReference    = errors.New("class type does not exist")
)

const (
	EventApproved = "package.approved"

	codeAttempts = 3
)

type Credits interface {
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Grant(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, userPackageID, amount int, note string) (*credit.Transaction, error)
	ExpirePackages(ctx context.Context) (*credit.ExpireResult, error)
}

type Points interface {
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Award(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*loyalty.Transaction, error)
	Spend(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*loyalty.Transaction, error)
	Reverse(ctx context.Context, q sqlx.ExtContext, userID int, refType string, refID int) (*loyalty.Transaction, error)
}

type Mailer interface {
	SendPackageApproved(ctx context.Context, to, name, packageName string, credit int, expiresAt time.Time) error
	SendPackageRejected(ctx context.Context, to, name, packageName, code string) error
}

type Service interface {
	List(ctx context.Context, activeOnly bool) ([]Package, error)
	Get(ctx context.Context, id int) (*Package, error)
	Create(ctx context.Context, req PackageRequest) (*Package, error)
	Update(ctx context.Context, id int, req PackageRequest) (*Package, error)
	Delete(ctx context.Context, id int) error

	Purchase(ctx context.Context, userID, packageID int, req PurchaseRequest) (*Transaction, error)
	UploadProof(ctx context.Context, userID, transactionID int, imageURL string) (*Transaction, error)
	Approve(ctx context.Context, transactionID int) (*Transaction, error)
	Reject(ctx context.Context, transactionID int) (*Transaction, error)
	ListTransactions(ctx context.Context, f TransactionFilter) ([]TransactionDetail, error)
	ListMyTransactions(ctx context.Context, userID, limit, offset int) ([]TransactionDetail, error)

	ExpireUserPackages(ctx context.Context) (*credit.ExpireResult, error)
}

type service struct {
	repo       Repository
	tx         db.Transactor
	credits    Credits
	points     Points
	mailer     Mailer
	publisher  events.Publisher
	pointValue decimal.Decimal
	now        func() time.Time
	genCode    func() string
}

// NewService builds the package service. pointValue is the currency value of
// one loyalty point when redeemed against a purchase.
func NewService(repo Repository, tx db.Transactor, credits Credits, points Points, mailer Mailer, publisher events.Publisher, pointValue int64) Service {
	return &service{
		repo:       repo,
		tx:         tx,
		credits:    credits,
		points:     points,
		mailer:     mailer,
		publisher:  publisher,
		pointValue: decimal.NewFromInt(pointValue),
		now:        time.Now,
		genCode:    newCode,
	}
}

func newCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]Package, error) {
	return s.repo.FindAll(ctx, activeOnly)
}

func (s *service) Get(ctx context.Context, id int) (*Package, error) {
	return s.repo.FindByID(ctx, nil, id)
}

func (s *service) Create(ctx context.Context, req PackageRequest) (*Package, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	return s.repo.Create(ctx, req)
}

func (s *service) Update(ctx context.Context, id int, req PackageRequest) (*Package, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	return s.repo.Update(ctx, id, req)
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.repo.SoftDelete(ctx, id)
}

// discount converts redeemed points into money off the price. Points beyond
// what the price can absorb are not spent.
func (s *service) discount(price decimal.Decimal, points int) (decimal.Decimal, int) {
	if points <= 0 || !s.pointValue.IsPositive() || !price.IsPositive() {
		return decimal.Zero, 0
	}
	if most := price.Div(s.pointValue).Ceil().IntPart(); int64(points) > most {
		points = int(most)
	}
	return decimal.Min(s.pointValue.Mul(decimal.NewFromInt(int64(points))), price), points
}

func (s *service) Purchase(ctx context.Context, userID, packageID int, req PurchaseRequest) (*Transaction, error) {
	var (
		out *Transaction
		err error
	)
	for attempt := 0; attempt < codeAttempts; attempt++ {
		out, err = s.purchase(ctx, userID, packageID, req)
		if !errors.Is(err, ErrDuplicateCode) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordPackageTransaction(StatusPending)
	logger.Info("package purchased", "transaction_id", out.ID, "user_id", userID, "package_id", packageID, "points_used", out.LoyaltyPointsUsed)
	return out, nil
}

func (s *service) purchase(ctx context.Context, userID, packageID int, req PurchaseRequest) (*Transaction, error) {
	var out *Transaction
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		pkg, err := s.repo.FindByID(ctx, q, packageID)
		if err != nil {
			return err
		}
		if pkg.DeletedAt != nil || !pkg.IsActive {
			return ErrPackageUnavailable
		}
		if pkg.OneTimeOnly {
			bought, err := s.repo.HasCompletedPurchase(ctx, q, userID, packageID)
			if err != nil {
				return err
			}
			if bought {
				return ErrAlreadyPurchased
			}
		}

		discount, points := s.discount(pkg.Price, req.RedeemPoints)
		if points > 0 {
			if err := s.points.LockLedger(ctx, q, userID); err != nil {
				return err
			}
		}

		out, err = s.repo.InsertTransaction(ctx, q, &Transaction{
			UserID:            userID,
			PackageID:         packageID,
			Amount:            pkg.Price.Sub(discount),
			Discount:          discount,
			LoyaltyPointsUsed: points,
			UniqueCode:        s.genCode(),
		})
		if err != nil || points == 0 {
			return err
		}
		_, err = s.points.Spend(ctx, q, userID, points, "discount on "+pkg.Name, loyalty.RefPackageTx, out.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UploadProof(ctx context.Context, userID, transactionID int, imageURL string) (*Transaction, error) {
	return s.repo.SetProof(ctx, transactionID, userID, imageURL)
}

// Approve completes a pending purchase: the member receives a package, its
// credits and its loyalty bonus in the same transaction.
func (s *service) Approve(ctx context.Context, transactionID int) (*Transaction, error) {
	var (
		detail *TransactionDetail
		up     *UserPackage
		out    *Transaction
	)
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		var err error
		detail, err = s.repo.LockTransaction(ctx, q, transactionID)
		if err != nil {
			return err
		}
		if detail.Status != StatusPending {
			return ErrNotPending
		}
		pkg, err := s.repo.FindByID(ctx, q, detail.PackageID)
		if err != nil {
			return err
		}

		if err := s.credits.LockLedger(ctx, q, detail.UserID); err != nil {
			return err
		}
		// The ledger lock serialises approvals for one member, so a second
		// pending purchase of a one-time package sees the first one completed.
		if pkg.OneTimeOnly {
			done, err := s.repo.HasCompletedPurchase(ctx, q, detail.UserID, pkg.ID)
			if err != nil {
				return err
			}
			if done {
				return ErrAlreadyPurchased
			}
		}
		up, err =s.repo.InsertUserPackage(ctx, q, detail.UserID, pkg.ID, pkg.Credit, s.now().AddDate(0, 0, pkg.ValidFor))
		if err != nil {
			return err
		}
		if out, err = s.repo.Complete(ctx, q, transactionID, up.ID); err != nil {
			return err
		}

		note := fmt.Sprintf("%s (%s)", pkg.Name, detail.UniqueCode)
		if _, err := s.credits.Grant(ctx, q, detail.UserID, pkg.ClassTypeID, up.ID, pkg.Credit, note); err != nil {
			return err
		}
		_, err = s.points.Award(ctx, q, detail.UserID, pkg.LoyaltyPoints, note, loyalty.RefPackageTx, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPackageTransaction(StatusCompleted)
	logger.Info("package approved", "transaction_id", transactionID, "user_id", detail.UserID, "user_package_id", up.ID)
	events.PublishAsync(s.publisher, EventApproved, ApprovedEvent{
		TransactionID: transactionID,
		UserID:        detail.UserID,
		PackageID:     detail.PackageID,
		UserPackageID: up.ID,
		Credit:        up.Credit,
		ExpiredAt:     up.ExpiredAt,
	})
	if err := s.mailer.SendPackageApproved(ctx, detail.UserEmail, detail.UserName, detail.PackageName, up.Credit, up.ExpiredAt); err != nil {
		logger.Warn("failed to queue package approval email", "transaction_id", transactionID, "error", err)
	}

	return out, nil
}

// Reject fails a pending purchase and gives back any points redeemed on it.
func (s *service) Reject(ctx context.Context, transactionID int) (*Transaction, error) {
	var (
		detail *TransactionDetail
		out    *Transaction
	)
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		var err error
		detail, err = s.repo.LockTransaction(ctx, q, transactionID)
		if err != nil {
			return err
		}
		if detail.Status != StatusPending {
			return ErrNotPending
		}
		if out, err = s.repo.SetStatus(ctx, q, transactionID, StatusFailed); err != nil {
			return err
		}
		if detail.LoyaltyPointsUsed == 0 {
			return nil
		}

		if err := s.points.LockLedger(ctx, q, detail.UserID); err != nil {
			return err
		}
		_, err = s.points.Reverse(ctx, q, detail.UserID, loyalty.RefPackageTx, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPackageTransaction(StatusFailed)
	logger.Info("package rejected", "transaction_id", transactionID, "user_id", detail.UserID)
	if err := s.mailer.SendPackageRejected(ctx, detail.UserEmail, detail.UserName, detail.PackageName, detail.UniqueCode); err != nil {
		logger.Warn("failed to queue package rejection email", "transaction_id", transactionID, "error", err)
	}

	return out, nil
}

func (s *service) ListTransactions(ctx context.Context, f TransactionFilter) ([]TransactionDetail, error) {
	return s.repo.ListTransactions(ctx, f)
}

func (s *service) ListMyTransactions(ctx context.Context, userID, limit, offset int) ([]TransactionDetail, error) {
	return s.repo.ListUserTransactions(ctx, userID, limit, offset)
}

func (s *service) ExpireUserPackages(ctx context.Context) (*credit.ExpireResult, error) {
	return s.credits.ExpirePackages(ctx)
}
