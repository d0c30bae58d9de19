package agenda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	return fn(nil)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req AgendaRequest) (*Agenda, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Agenda), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int, req AgendaRequest) (*Agenda, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Agenda), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*Agenda, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Agenda), args.Error(1)
}

func (m *MockRepository) FindScheduleByID(ctx context.Context, id int) (*Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Schedule), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, r Range, f ListFilter) ([]Schedule, error) {
	args := m.Called(ctx, r, f)
	return args.Get(0).([]Schedule), args.Error(1)
}

func (m *MockRepository) ActiveBookingCount(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CreateRecurrence(ctx context.Context, rec *Recurrence) (*Recurrence, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recurrence), args.Error(1)
}

func (m *MockRepository) UpdateRecurrence(ctx context.Context, rec *Recurrence) (*Recurrence, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recurrence), args.Error(1)
}

func (m *MockRepository) FindRecurrenceByID(ctx context.Context, id int) (*Recurrence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recurrence), args.Error(1)
}

func (m *MockRepository) ActiveRecurrences(ctx context.Context) ([]Recurrence, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Recurrence), args.Error(1)
}

func (m *MockRepository) SoftDeleteRecurrence(ctx context.Context, q sqlx.ExtContext, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) SoftDeleteFutureUnbooked(ctx context.Context, q sqlx.ExtContext, recurrenceID int, after time.Time) (int64, error) {
	args := m.Called(ctx, recurrenceID, after)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) OccurrenceDates(ctx context.Context, recurrenceID int) ([]string, error) {
	args := m.Called(ctx, recurrenceID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) InsertInstance(ctx context.Context, q sqlx.ExtContext, rec Recurrence, at time.Time, occurrence string) (bool, error) {
	args := m.Called(ctx, rec.ID, at, occurrence)
	return args.Bool(0), args.Error(1)
}

func newTestService(repo Repository, loc *time.Location, now time.Time) *service {
	s := NewService(repo, fakeTx{}, loc).(*service)
	s.now = func() time.Time { return now }
	return s
}

func TestService_GenerateSkipsMaterializedDates(t *testing.T) {
	repo := new(MockRepository)
	loc := jakarta(t)
	svc := newTestService(repo, loc, time.Date(2026, 1, 1, 6, 0, 0, 0, loc))
	ctx := context.Background()

	rec := Recurrence{ID: 3, DayOfWeek: 1, Time: "07:00", StartDate: date(2025, 12, 1), ClassID: 1, CoachID: 2, LocationFacilityID: 4}
	repo.On("ActiveRecurrences", ctx).Return([]Recurrence{rec}, nil)
	repo.On("OccurrenceDates", ctx, 3).Return([]string{"2026-01-05"}, nil)
	repo.On("InsertInstance", ctx, 3, mock.AnythingOfType("time.Time"), mock.AnythingOfType("string")).Return(true, nil)

	n, err := svc.GenerateFromRecurrences(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, loc), time.Date(2026, 1, 31, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	repo.AssertNumberOfCalls(t, "InsertInstance", 3)
	repo.AssertNotCalled(t, "InsertInstance", ctx, 3, time.Date(2026, 1, 5, 7, 0, 0, 0, loc), "2026-01-05")
}

func TestService_GenerateSkipsMovedInstance(t *testing.T) {
	repo := new(MockRepository)
	loc := jakarta(t)
	svc := newTestService(repo, loc, time.Date(2026, 1, 1, 6, 0, 0, 0, loc))
	ctx := context.Background()

	// The Monday 07:00 instance was moved to Tuesday 09:00; its occurrence
	// date stays Monday.
	rec := Recurrence{ID: 5, DayOfWeek: 1, Time: "07:00", StartDate: date(2025, 12, 1)}
	repo.On("ActiveRecurrences", ctx).Return([]Recurrence{rec}, nil)
	repo.On("OccurrenceDates", ctx, 5).Return([]string{"2026-01-05"}, nil)

	n, err := svc.GenerateFromRecurrences(ctx, time.Date(2026, 1, 5, 0, 0, 0, 0, loc), time.Date(2026, 1, 11, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	repo.AssertNotCalled(t, "InsertInstance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GenerateCountsOnlyInsertedRows(t *testing.T) {
	repo := new(MockRepository)
	loc := jakarta(t)
	svc := newTestService(repo, loc, time.Now())
	ctx := context.Background()

	rec := Recurrence{ID: 1, DayOfWeek: 2, Time: "07:00", StartDate: date(2026, 1, 1)}
	repo.On("ActiveRecurrences", ctx).Return([]Recurrence{rec}, nil)
	repo.On("OccurrenceDates", ctx, 1).Return([]string{}, nil)
	repo.On("InsertInstance", ctx, 1, time.Date(2026, 1, 6, 7, 0, 0, 0, loc), "2026-01-06").Return(false, nil)
	repo.On("InsertInstance", ctx, 1, time.Date(2026, 1, 13, 7, 0, 0, 0, loc), "2026-01-13").Return(true, nil)

	n, err := svc.GenerateFromRecurrences(ctx, time.Date(2026, 1, 5, 0, 0, 0, 0, loc), time.Date(2026, 1, 14, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_GenerateContinuesPastBrokenRule(t *testing.T) {
	repo := new(MockRepository)
	loc := jakarta(t)
	svc := newTestService(repo, loc, time.Now())
	ctx := context.Background()

	bad := Recurrence{ID: 1, DayOfWeek: 2, Time: "25:99", StartDate: date(2026, 1, 1)}
	good := Recurrence{ID: 2, DayOfWeek: 2, Time: "07:00", StartDate: date(2026, 1, 1)}
	repo.On("ActiveRecurrences", ctx).Return([]Recurrence{bad, good}, nil)
	repo.On("OccurrenceDates", ctx, 1).Return([]string{}, nil)
	repo.On("OccurrenceDates", ctx, 2).Return([]string{}, nil)
	repo.On("InsertInstance", ctx, 2, mock.Anything, mock.Anything).Return(true, nil)

	n, err := svc.GenerateFromRecurrences(ctx, time.Date(2026, 1, 5, 0, 0, 0, 0, loc), time.Date(2026, 1, 11, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_GenerateAhead(t *testing.T) {
	repo := new(MockRepository)
	loc := jakarta(t)
	svc := newTestService(repo, loc, time.Date(2026, 1, 1, 12, 0, 0, 0, loc))
	ctx := context.Background()

	repo.On("ActiveRecurrences", ctx).Return([]Recurrence{}, nil)

	res, err := svc.GenerateAhead(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", res.From)
	assert.Equal(t, "2026-01-15", res.To)
	assert.Equal(t, 0, res.Created)

	_, err = svc.GenerateAhead(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestService_ListResolvesInclusiveLocalRange(t *testing.T) {
	repo := new(MockRepository)
	loc := jakarta(t)
	svc := newTestService(repo, loc, time.Now())
	ctx := context.Background()
	f := ListFilter{From: "2026-02-01", To: "2026-02-03", LocationID: 2}

	want := Range{From: time.Date(2026, 2, 1, 0, 0, 0, 0, loc), To: time.Date(2026, 2, 4, 0, 0, 0, 0, loc)}
	repo.On("List", ctx, want, f).Return([]Schedule{{Slot: 8, BookedCount: 3, Available: 5}}, nil)

	got, err := svc.List(ctx, f)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(ctx, ListFilter{From: "2026-02-05", To: "2026-02-01"})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestService_DeleteRefusesBookedAgenda(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, time.UTC, time.Now())
	ctx := context.Background()

	repo.On("ActiveBookingCount", ctx, 5).Return(2, nil)

	assert.ErrorIs(t, svc.Delete(ctx, 5), ErrAgendaHasBookings)
	repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestService_DeleteRecurrenceRemovesFutureInstances(t *testing.T) {
	repo := new(MockRepository)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, time.UTC, now)
	ctx := context.Background()

	repo.On("SoftDeleteRecurrence", ctx, 7).Return(nil)
	repo.On("SoftDeleteFutureUnbooked", ctx, 7, now).Return(int64(4), nil)

	n, err := svc.DeleteRecurrence(ctx, 7, true)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	repo2 := new(MockRepository)
	svc2 := newTestService(repo2, time.UTC, now)
	repo2.On("SoftDeleteRecurrence", ctx, 7).Return(nil)

	n, err = svc2.DeleteRecurrence(ctx, 7, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	repo2.AssertNotCalled(t, "SoftDeleteFutureUnbooked", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateRecurrenceValidatesDates(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, time.UTC, time.Now())
	ctx := context.Background()
	dow := 1

	_, err := svc.CreateRecurrence(ctx, RecurrenceRequest{DayOfWeek: &dow, Time: "07:00", StartDate: "2026-02-01", EndDate: "2026-01-01", ClassID: 1, CoachID: 1, LocationFacilityID: 1})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	repo.On("CreateRecurrence", ctx, mock.MatchedBy(func(r *Recurrence) bool {
		return r.DayOfWeek == 1 && r.EndDate == nil && r.StartDate.Equal(date(2026, 2, 1))
	})).Return(&Recurrence{ID: 9}, nil)

	rec, err := svc.CreateRecurrence(ctx, RecurrenceRequest{DayOfWeek: &dow, Time: "07:00", StartDate: "2026-02-01", ClassID: 1, CoachID: 1, LocationFacilityID: 1})
	require.NoError(t, err)
	assert.Equal(t, 9, rec.ID)
}

func TestService_CreatePropagatesReferenceError(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, time.UTC, time.Now())
	ctx := context.Background()
	req := AgendaRequest{Time: time.Now().Add(time.Hour), ClassID: 1, CoachID: 99, LocationFacilityID: 1}

	repo.On("Create", ctx, req).Return(nil, ErrInvalidReference)

	_, err := svc.Create(ctx, req)
	assert.True(t, errors.Is(err, ErrInvalidReference))
}
