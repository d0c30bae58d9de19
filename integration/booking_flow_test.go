package integration_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drithh/setalip-mono-sub003/internal/booking"
)

func TestApprovedPackageGrantsCreditAndPoints(t *testing.T) {
	s := newStudio(setupTestDB(t))
	ctx := context.Background()

	userID := s.member(t, "ayu@test.com")
	_, classTypeID := s.agenda(t, 5, time.Now().Add(48*time.Hour))
	s.topUp(t, userID, classTypeID, 4)

	balance, err := s.credits.Balance(ctx, userID, classTypeID)
	require.NoError(t, err)
	assert.Equal(t, 4, balance)

	points, err := s.points.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, points)
}

func TestBookAndCancelRestoresCredit(t *testing.T) {
	s := newStudio(setupTestDB(t))
	ctx := context.Background()

	userID := s.member(t, "ayu@test.com")
	agendaID, classTypeID := s.agenda(t, 5, time.Now().Add(48*time.Hour))
	s.topUp(t, userID, classTypeID, 2)

	b, err := s.bookings.Book(ctx, userID, agendaID)
	require.NoError(t, err)

	balance, _ := s.credits.Balance(ctx, userID, classTypeID)
	assert.Equal(t, 1, balance)

	_, err = s.bookings.Book(ctx, userID, agendaID)
	assert.ErrorIs(t, err, booking.ErrAlreadyBooked)

	_, err = s.bookings.CancelByUser(ctx, userID, b.ID)
	require.NoError(t, err)

	balance, _ = s.credits.Balance(ctx, userID, classTypeID)
	assert.Equal(t, 2, balance)

	_, err = s.bookings.CancelByAdmin(ctx, b.ID, true)
	assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)

	balance, _ = s.credits.Balance(ctx, userID, classTypeID)
	assert.Equal(t, 2, balance, "a second cancel must not refund twice")
}

func TestAdminCancelWithoutRefund(t *testing.T) {
	s := newStudio(setupTestDB(t))
	ctx := context.Background()

	userID := s.member(t, "ayu@test.com")
	agendaID, classTypeID := s.agenda(t, 5, time.Now().Add(2*time.Hour))
	s.topUp(t, userID, classTypeID, 1)

	b, err := s.bookings.Book(ctx, userID, agendaID)
	require.NoError(t, err)

	_, err = s.bookings.CancelByUser(ctx, userID, b.ID)
	assert.ErrorIs(t, err, booking.ErrCancelWindowPassed)

	_, err = s.bookings.CancelByAdmin(ctx, b.ID, false)
	require.NoError(t, err)

	balance, _ := s.credits.Balance(ctx, userID, classTypeID)
	assert.Equal(t, 0, balance)
}

func TestConcurrentBookingsNeverOverfillClass(t *testing.T) {
	s := newStudio(setupTestDB(t))
	ctx := context.Background()

	const members, slot = 8, 3
	agendaID, classTypeID := s.agenda(t, slot, time.Now().Add(48*time.Hour))

	userIDs := make([]int, members)
	for i := range userIDs {
		userIDs[i] = s.member(t, fmt.Sprintf("m%d@test.com", i))
		s.topUp(t, userIDs[i], classTypeID, 1)
	}

	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		booked, refused int
	)
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := s.bookings.Book(ctx, userID, agendaID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, booking.ErrClassFull):
				refused++
			default:
				t.Errorf("unexpected booking error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, slot, booked)
	assert.Equal(t, members-slot, refused)

	var active int
	require.NoError(t, s.db.Get(&active, `SELECT COUNT(*) FROM agenda_bookings WHERE agenda_id = $1 AND status <> 'cancelled'`, agendaID))
	assert.Equal(t, slot, active)

	var spent int
	require.NoError(t, s.db.Get(&spent, `SELECT COALESCE(-SUM(amount), 0) FROM credit_transactions WHERE type = 'booking'`))
	assert.Equal(t, slot, spent)
}
