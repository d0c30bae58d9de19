package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/credit"
	"github.com/drithh/setalip-mono-sub003/internal/db"
	"github.com/drithh/setalip-mono-sub003/internal/events"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/loyalty"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

var (
	ErrAgendaNotFound     = errors.New("agenda not found")
	ErrAgendaStarted      = errors.New("agenda has already started")
	ErrAlreadyBooked      = errors.New("you already have a booking for this agenda")
	ErrClassFull          = errors.New("class is full")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrNotBooked          = errors.New("booking is not in booked state")
	ErrCancelWindowPassed = errors.New("cancellation window has passed")
)

const (
	ActorMember = "member"
	ActorAdmin  = "admin"

	EventCreated   = "booking.created"
	EventCancelled = "booking.cancelled"
)

// Ledger is the part of the credit ledger a booking moves.
type Ledger interface {
	LockLedger(ctx context.Context, q sqlx.ExtContext, userID int) error
	Spend(ctx context.Context, q sqlx.ExtContext, userID, classTypeID, bookingID int) (*credit.Transaction, error)
	Refund(ctx context.Context, q sqlx.ExtContext, bookingID int) (*credit.Transaction, error)
}

type Points interface {
	Accrue(ctx context.Context, q sqlx.ExtContext, userID int, rewardName, refType string, refID int) (*loyalty.Transaction, error)
	Reverse(ctx context.Context, q sqlx.ExtContext, userID int, refType string, refID int) (*loyalty.Transaction, error)
}

type Mailer interface {
	SendBookingConfirmation(ctx context.Context, to, name, className, locationName string, when time.Time) error
	SendBookingCancellation(ctx context.Context, to, name, className string, when time.Time, refunded bool) error
}

type Service interface {
	Book(ctx context.Context, userID, agendaID int) (*Detail, error)
	CancelByUser(ctx context.Context, userID, bookingID int) (*Booking, error)
	CancelByAdmin(ctx context.Context, bookingID int, refund bool) (*Booking, error)
	CheckIn(ctx context.Context, bookingID int) (*Booking, error)
	ListMine(ctx context.Context, userID, limit, offset int) ([]Detail, error)
	ListByAgenda(ctx context.Context, agendaID int) ([]Detail, error)
}

type service struct {
	repo      Repository
	tx        db.Transactor
	credits   Ledger
	points    Points
	mailer    Mailer
	publisher events.Publisher
	notice    time.Duration
	now       func() time.Time
}

func NewService(repo Repository, tx db.Transactor, credits Ledger, points Points, mailer Mailer, publisher events.Publisher, notice time.Duration) Service {
	return &service{
		repo:      repo,
		tx:        tx,
		credits:   credits,
		points:    points,
		mailer:    mailer,
		publisher: publisher,
		notice:    notice,
		now:       time.Now,
	}
}

// Book reserves a seat and pays for it with one class credit. The seat, the
// debit and the loyalty accrual commit together or not at all.
func (s *service) Book(ctx context.Context, userID, agendaID int) (*Detail, error) {
	var (
		booking *Booking
		seat    *Seat
	)
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		var err error
		seat, err = s.repo.LockSeat(ctx, q, agendaID)
		if err != nil {
			return err
		}
		if seat.DeletedAt != nil {
			return ErrAgendaNotFound
		}
		if !seat.Time.After(s.now()) {
			return ErrAgendaStarted
		}

		taken, err := s.repo.HasActive(ctx, q, userID, agendaID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyBooked
		}

		count, err := s.repo.CountActive(ctx, q, agendaID)
		if err != nil {
			return err
		}
		if count >= seat.Slot {
			return ErrClassFull
		}

		if err := s.credits.LockLedger(ctx, q, userID); err != nil {
			return err
		}
		booking, err = s.repo.Insert(ctx, q, userID, agendaID)
		if err != nil {
			return err
		}
		if _, err := s.credits.Spend(ctx, q, userID, seat.ClassTypeID, booking.ID); err != nil {
			return err
		}
		_, err = s.points.Accrue(ctx, q, userID, loyalty.RewardBooking, loyalty.RefBooking, booking.ID)
		return err
	})
	if err != nil {
		metrics.RecordBooking(rejection(err))
		return nil, err
	}
	metrics.RecordBooking(StatusBooked)

	logger.Info("booking created", "booking_id", booking.ID, "agenda_id", agendaID, "user_id", userID)
	events.PublishAsync(s.publisher, EventCreated, Event{
		BookingID: booking.ID, AgendaID: agendaID, UserID: userID, Time: seat.Time,
	})

	// The booking is committed; a failed read-back must not report it as lost.
	detail, err := s.repo.FindDetail(ctx, booking.ID)
	if err != nil {
		logger.Warn("failed to load booking detail", "booking_id", booking.ID, "error", err)
		return &Detail{Booking: *booking, AgendaTime: seat.Time, ClassTypeID: seat.ClassTypeID}, nil
	}
	if err := s.mailer.SendBookingConfirmation(ctx, detail.UserEmail, detail.UserName, detail.ClassName, detail.LocationName, detail.AgendaTime); err != nil {
		logger.Warn("failed to queue booking confirmation", "booking_id", detail.ID, "error", err)
	}

	return detail, nil
}

func rejection(err error) string {
	switch {
	case errors.Is(err, ErrClassFull):
		return "full"
	case errors.Is(err, credit.ErrInsufficientCredit):
		return "no_credit"
	case errors.Is(err, ErrAlreadyBooked):
		return "duplicate"
	default:
		return "rejected"
	}
}

// CancelByUser always refunds, but only while the agenda is further away
// than the notice window.
func (s *service) CancelByUser(ctx context.Context, userID, bookingID int) (*Booking, error) {
	return s.cancel(ctx, bookingID, true, ActorMember, func(d *Detail) error {
		if d.UserID != userID {
			return ErrBookingNotFound
		}
		if d.AgendaTime.Sub(s.now()) < s.notice {
			return ErrCancelWindowPassed
		}
		return nil
	})
}

func (s *service) CancelByAdmin(ctx context.Context, bookingID int, refund bool) (*Booking, error) {
	return s.cancel(ctx, bookingID, refund, ActorAdmin, nil)
}

func (s *service) cancel(ctx context.Context, bookingID int, refund bool, actor string, allow func(*Detail) error) (*Booking, error) {
	var (
		detail *Detail
		out    *Booking
	)
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		var err error
		detail, err = s.repo.Lock(ctx, q, bookingID)
		if err != nil {
			return err
		}
		if allow != nil {
			if err := allow(detail); err != nil {
				return err
			}
		}
		switch detail.Status {
		case StatusCancelled:
			return ErrAlreadyCancelled
		case StatusCheckedIn:
			return ErrNotBooked
		}

		out, err = s.repo.SetStatus(ctx, q, bookingID, StatusCancelled)
		if err != nil || !refund {
			return err
		}

		if err := s.credits.LockLedger(ctx, q, detail.UserID); err != nil {
			return err
		}
		if _, err := s.credits.Refund(ctx, q, bookingID); err != nil && !errors.Is(err, credit.ErrDebitNotFound) {
			return err
		}
		_, err = s.points.Reverse(ctx, q, detail.UserID, loyalty.RefBooking, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation(actor, refund)
	logger.Info("booking cancelled", "booking_id", bookingID, "actor", actor, "refund", refund)
	events.PublishAsync(s.publisher, EventCancelled, Event{
		BookingID: bookingID, AgendaID: detail.AgendaID, UserID: detail.UserID, Time: detail.AgendaTime, Refunded: refund, Actor: actor,
	})
	if err := s.mailer.SendBookingCancellation(ctx, detail.UserEmail, detail.UserName, detail.ClassName, detail.AgendaTime, refund); err != nil {
		logger.Warn("failed to queue booking cancellation", "booking_id", bookingID, "error", err)
	}

	return out, nil
}

func (s *service) CheckIn(ctx context.Context, bookingID int) (*Booking, error) {
	var out *Booking
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		d, err := s.repo.Lock(ctx, q, bookingID)
		if err != nil {
			return err
		}
		if d.Status != StatusBooked {
			return ErrNotBooked
		}
		out, err = s.repo.SetStatus(ctx, q, bookingID, StatusCheckedIn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListMine(ctx context.Context, userID, limit, offset int) ([]Detail, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) ListByAgenda(ctx context.Context, agendaID int) ([]Detail, error) {
	return s.repo.ListByAgenda(ctx, agendaID)
}
