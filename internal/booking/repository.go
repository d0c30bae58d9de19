package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
)

const bookingColumns = `id, agenda_id, user_id, status, created_at, updated_at`

const detailSelect = `
	SELECT
		b.id, b.agenda_id, b.user_id, b.status, b.created_at, b.updated_at,
		a.time AS agenda_time,
		c.name AS class_name,
		c.class_type_id,
		l.name AS location_name,
		u.name AS user_name,
		u.email AS user_email
	FROM agenda_bookings b
	JOIN agendas a ON a.id = b.agenda_id
	JOIN classes c ON c.id = a.class_id
	JOIN location_facilities f ON f.id = a.location_facility_id
	JOIN locations l ON l.id = f.location_id
	JOIN users u ON u.id = b.user_id`

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

// LockSeat serialises bookings against one agenda so the seat count read
// afterwards stays valid until commit.
func (r *repository) LockSeat(ctx context.Context, q sqlx.ExtContext, agendaID int) (*Seat, error) {
	query := `
		SELECT a.id AS agenda_id, a.time, c.slot, c.class_type_id, a.deleted_at
		FROM agendas a
		JOIN classes c ON c.id = a.class_id
		WHERE a.id = $1
		FOR UPDATE OF a`

	var s Seat
	if err := sqlx.GetContext(ctx, q, &s, query, agendaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAgendaNotFound
		}
		return nil, fmt.Errorf("lock agenda: %w", err)
	}
	return &s, nil
}

func (r *repository) CountActive(ctx context.Context, q sqlx.QueryerContext, agendaID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM agenda_bookings WHERE agenda_id = $1 AND status <> 'cancelled'`
	if err := sqlx.GetContext(ctx, r.queryer(q), &count, query, agendaID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) HasActive(ctx context.Context, q sqlx.QueryerContext, userID, agendaID int) (bool, error) {
	return db.Exists(ctx, r.queryer(q),
		`SELECT EXISTS(SELECT 1 FROM agenda_bookings WHERE user_id = $1 AND agenda_id = $2 AND status <> 'cancelled')`,
		userID, agendaID)
}

func (r *repository) Insert(ctx context.Context, q sqlx.ExtContext, userID, agendaID int) (*Booking, error) {
	query := `
		INSERT INTO agenda_bookings (agenda_id, user_id, status)
		VALUES ($1, $2, 'booked')
		RETURNING ` + bookingColumns

	var b Booking
	if err := sqlx.GetContext(ctx, q, &b, query, agendaID, userID); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyBooked
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &b, nil
}

func (r *repository) Lock(ctx context.Context, q sqlx.ExtContext, id int) (*Detail, error) {
	var d Detail
	if err := sqlx.GetContext(ctx, q, &d, detailSelect+` WHERE b.id = $1 FOR UPDATE OF b`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return &d, nil
}

func (r *repository) SetStatus(ctx context.Context, q sqlx.ExtContext, id int, status string) (*Booking, error) {
	query := `
		UPDATE agenda_bookings SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var b Booking
	if err := sqlx.GetContext(ctx, q, &b, query, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	return &b, nil
}

func (r *repository) FindDetail(ctx context.Context, id int) (*Detail, error) {
	var d Detail
	if err := r.db.GetContext(ctx, &d, detailSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Detail, error) {
	out := []Detail{}
	query := detailSelect + ` WHERE b.user_id = $1 ORDER BY a.time DESC, b.id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &out, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return out, nil
}

func (r *repository) ListByAgenda(ctx context.Context, agendaID int) ([]Detail, error) {
	out := []Detail{}
	query := detailSelect + ` WHERE b.agenda_id = $1 ORDER BY b.created_at, b.id`
	if err := r.db.SelectContext(ctx, &out, query, agendaID); err != nil {
		return nil, fmt.Errorf("list agenda bookings: %w", err)
	}
	return out, nil
}
