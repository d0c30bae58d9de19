package packages

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drithh/setalip-mono-sub003/internal/credit"
	"github.com/drithh/setalip-mono-sub003/internal/events"
	"github.com/drithh/setalip-mono-sub003/internal/loyalty"
)

type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	return fn(nil)
}

type MockRepository struct {
	mock.Mock
	Repository
}

func (m *MockRepository) FindByID(ctx context.Context, q sqlx.QueryerContext, id int) (*Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Package), args.Error(1)
}

func (m *MockRepository) HasCompletedPurchase(ctx context.Context, q sqlx.QueryerContext, userID, packageID int) (bool, error) {
	args := m.Called(ctx, userID, packageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) InsertTransaction(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error) {
	args := m.Called(ctx, t)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	out := *t
	out.ID = 40
	out.Status = StatusPending
	return &out, nil
}

func (m *MockRepository) LockTransaction(ctx context.Context, q sqlx.ExtContext, id int) (*TransactionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransactionDetail), args.Error(1)
}

func (m *MockRepository) Complete(ctx context.Context, q sqlx.ExtContext, id, userPackageID int) (*Transaction, error) {
	args := m.Called(ctx, id, userPackageID)
	return &Transaction{ID: id, UserPackageID: &userPackageID, Status: StatusCompleted}, args.Error(0)
}

func (m *MockRepository) SetStatus(ctx context.Context, q sqlx.ExtContext, id int, status string) (*Transaction, error) {
	args := m.Called(ctx, id, status)
	return &Transaction{ID: id, Status: status}, args.Error(0)
}

func (m *MockRepository) InsertUserPackage(ctx context.Context, q sqlx.ExtContext, userID, packageID, credit int, expiredAt time.Time) (*UserPackage, error) {
	args := m.Called(ctx, userID, packageID, credit, expiredAt)
	return &UserPackage{ID: 50, UserID: userID, PackageID: packageID, Credit: credit, ExpiredAt: expiredAt}, args.Error(0)
}

type MockCredits struct{ mock.Mock }

func (m *MockCredits) LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCredits) Grant(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, userPackageID, amount int, note string) (*credit.Transaction, error) {
	args := m.Called(ctx, userID, classTypeID, userPackageID, amount)
	return &credit.Transaction{Amount: amount}, args.Error(0)
}

func (m *MockCredits) ExpirePackages(ctx context.Context) (*credit.ExpireResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(*credit.ExpireResult), args.Error(1)
}

type MockPoints struct{ mock.Mock }

func (m *MockPoints) LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockPoints) Award(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*loyalty.Transaction, error) {
	args := m.Called(ctx, userID, amount, refType, refID)
	return nil, args.Error(0)
}

func (m *MockPoints) Spend(ctx context.Context, q sqlx.ExtContext, userID, amount int, note, refType string, refID int) (*loyalty.Transaction, error) {
	args := m.Called(ctx, userID, amount, refType, refID)
	return nil, args.Error(0)
}

func (m *MockPoints) Reverse(ctx context.Context, q sqlx.ExtContext, userID int, refType string, refID int) (*loyalty.Transaction, error) {
	args := m.Called(ctx, userID, refType, refID)
	return nil, args.Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendPackageApproved(ctx context.Context, to, name, packageName string, credit int, expiresAt time.Time) error {
	return m.Called(ctx, to, credit).Error(0)
}

func (m *MockMailer) SendPackageRejected(ctx context.Context, to, name, packageName, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

type fixture struct {
	repo    *MockRepository
	credits *MockCredits
	points  *MockPoints
	mailer  *MockMailer
	svc     Service
	now     time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:    new(MockRepository),
		credits: new(MockCredits),
		points:  new(MockPoints),
		mailer:  new(MockMailer),
		now:     time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	svc := NewService(f.repo, fakeTx{}, f.credits, f.points, f.mailer, events.NopPublisher{}, 1000)
	svc.(*service).now = func() time.Time { return f.now }
	svc.(*service).genCode = func() string { return "ABCD1234" }
	f.svc = svc
	return f
}

func reformer() *Package {
	return &Package{
		ID: 3, Name: "10x Reformer", Price: decimal.NewFromInt(750000), Credit: 10, ValidFor: 60,
		ClassTypeID: 2, IsActive: true, LoyaltyPoints: 25,
	}
}

func TestService_DiscountCapsAtPrice(t *testing.T) {
	s := &service{pointValue: decimal.NewFromInt(1000)}

	d, used := s.discount(decimal.NewFromInt(2500), 10)
	assert.True(t, d.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, 3, used)

	d, used = s.discount(decimal.NewFromInt(2500), 2)
	assert.True(t, d.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 2, used)

	d, used = s.discount(decimal.NewFromInt(2500), 0)
	assert.True(t, d.IsZero())
	assert.Zero(t, used)
}

func TestService_PurchaseWithPoints(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("FindByID", ctx, 3).Return(reformer(), nil)
	f.points.On("LockLedger", ctx, 1).Return(nil)
	f.repo.On("InsertTransaction", ctx, mock.MatchedBy(func(t *Transaction) bool {
		return t.Discount.Equal(decimal.NewFromInt(50000)) &&
			t.Amount.Equal(decimal.NewFromInt(700000)) &&
			t.LoyaltyPointsUsed == 50 && t.UniqueCode == "ABCD1234"
	})).Return(nil)
	f.points.On("Spend", ctx, 1, 50, loyalty.RefPackageTx, 40).Return(nil)

	tx, err := f.svc.Purchase(ctx, 1, 3, PurchaseRequest{RedeemPoints: 50})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)
	f.points.AssertExpectations(t)
}

func TestService_PurchaseRetriesCodeCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("FindByID", ctx, 3).Return(reformer(), nil)
	f.repo.On("InsertTransaction", ctx, mock.Anything).Return(ErrDuplicateCode).Once()
	f.repo.On("InsertTransaction", ctx, mock.Anything).Return(nil).Once()

	_, err := f.svc.Purchase(ctx, 1, 3, PurchaseRequest{})
	require.NoError(t, err)
	f.repo.AssertNumberOfCalls(t, "InsertTransaction", 2)
	f.points.AssertNotCalled(t, "Spend", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PurchaseOneTimeOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pkg := reformer()
	pkg.OneTimeOnly = true

	f.repo.On("FindByID", ctx, 3).Return(pkg, nil)
	f.repo.On("HasCompletedPurchase", ctx, 1, 3).Return(true, nil)

	_, err := f.svc.Purchase(ctx, 1, 3, PurchaseRequest{})
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
}

func TestService_PurchaseInactive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pkg := reformer()
	pkg.IsActive = false

	f.repo.On("FindByID", ctx, 3).Return(pkg, nil)

	_, err := f.svc.Purchase(ctx, 1, 3, PurchaseRequest{})
	assert.ErrorIs(t, err, ErrPackageUnavailable)
}

func pendingDetail(points int) *TransactionDetail {
	return &TransactionDetail{
		Transaction: Transaction{ID: 40, UserID: 1, PackageID: 3, Status: StatusPending, UniqueCode: "ABCD1234", LoyaltyPointsUsed: points},
		PackageName: "10x Reformer", UserEmail: "a@b.c",
	}
}

func TestService_Approve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	expires := f.now.AddDate(0, 0, 60)

	f.repo.On("LockTransaction", ctx, 40).Return(pendingDetail(0), nil)
	f.repo.On("FindByID", ctx, 3).Return(reformer(), nil)
	f.credits.On("LockLedger", ctx, 1).Return(nil)
	f.repo.On("InsertUserPackage", ctx, 1, 3, 10, expires).Return(nil)
	f.repo.On("Complete", ctx, 40, 50).Return(nil)
	f.credits.On("Grant", ctx, 1, 2, 50, 10).Return(nil)
	f.points.On("Award", ctx, 1, 25, loyalty.RefPackageTx, 40).Return(nil)
	f.mailer.On("SendPackageApproved", ctx, "a@b.c", 10).Return(nil)

	tx, err := f.svc.Approve(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, tx.Status)
	assert.Equal(t, 50, *tx.UserPackageID)
	f.credits.AssertExpectations(t)
	f.points.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestService_ApproveTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	done := pendingDetail(0)
	done.Status = StatusCompleted

	f.repo.On("LockTransaction", ctx, 40).Return(done, nil)

	_, err := f.svc.Approve(ctx, 40)
	assert.ErrorIs(t, err, ErrNotPending)
	f.credits.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ApproveOneTimeOnlyAfterEarlierApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pkg := reformer()
	pkg.OneTimeOnly = true
	expires := f.now.AddDate(0, 0, 60)

	first := pendingDetail(0)
	second := pendingDetail(0)
	second.ID = 41
	second.UniqueCode = "WXYZ9876"

	f.repo.On("LockTransaction", ctx, 40).Return(first, nil)
	f.repo.On("LockTransaction", ctx, 41).Return(second, nil)
	f.repo.On("FindByID", ctx, 3).Return(pkg, nil)
	f.credits.On("LockLedger", ctx, 1).Return(nil)
	f.repo.On("HasCompletedPurchase", ctx, 1, 3).Return(false, nil).Once()
	f.repo.On("HasCompletedPurchase", ctx, 1, 3).Return(true, nil).Once()
	f.repo.On("InsertUserPackage", ctx, 1, 3, 10, expires).Return(nil)
	f.repo.On("Complete", ctx, 40, 50).Return(nil)
	f.credits.On("Grant", ctx, 1, 2, 50, 10).Return(nil)
	f.points.On("Award", ctx, 1, 25, loyalty.RefPackageTx, 40).Return(nil)
	f.mailer.On("SendPackageApproved", ctx, "a@b.c", 10).Return(nil)

	_, err := f.svc.Approve(ctx, 40)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, 41)
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
	f.repo.AssertNumberOfCalls(t, "InsertUserPackage", 1)
	f.credits.AssertNumberOfCalls(t, "Grant", 1)
}

func TestService_RejectReturnsRedeemedPoints(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("LockTransaction", ctx, 40).Return(pendingDetail(50), nil)
	f.repo.On("SetStatus", ctx, 40, StatusFailed).Return(nil)
	f.points.On("LockLedger", ctx, 1).Return(nil)
	f.points.On("Reverse", ctx, 1, loyalty.RefPackageTx, 40).Return(nil)
	f.mailer.On("SendPackageRejected", ctx, "a@b.c", "ABCD1234").Return(nil)

	tx, err := f.svc.Reject(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, tx.Status)
	f.points.AssertExpectations(t)
}

func TestService_CreateRejectsNegativePrice(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), PackageRequest{Name: "x", Price: decimal.NewFromInt(-1), Credit: 1, ValidFor: 1, ClassTypeID: 1})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_ExpireUserPackages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.credits.On("ExpirePackages", ctx).Return(&credit.ExpireResult{Packages: 2, Credits: 5}, nil)

	res, err := f.svc.ExpireUserPackages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Credits)
}
