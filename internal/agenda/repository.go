package agenda

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
)

const (
	agendaColumns     = `id, time, class_id, coach_id, location_facility_id, agenda_recurrence_id, created_at, updated_at, deleted_at`
	recurrenceColumns = `id, day_of_week, time, start_date, end_date, class_id, coach_id, location_facility_id, created_at, updated_at, deleted_at`

	scheduleSelect = `
		SELECT a.id, a.time, a.class_id, a.coach_id, a.location_facility_id, a.agenda_recurrence_id,
		       a.created_at, a.updated_at, a.deleted_at,
		       c.name AS class_name, c.duration, c.slot, c.class_type_id, ct.type AS class_type,
		       u.name AS coach_name, f.name AS facility_name, l.id AS location_id, l.name AS location_name,
		       (SELECT COUNT(*) FROM agenda_bookings b WHERE b.agenda_id = a.id AND b.status <> 'cancelled') AS booked_count
		FROM agendas a
		JOIN classes c ON c.id = a.class_id
		JOIN class_types ct ON ct.id = c.class_type_id
		JOIN users u ON u.id = a.coach_id
		JOIN location_facilities f ON f.id = a.location_facility_id
		JOIN locations l ON l.id = f.location_id`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func mapErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference
	default:
		return err
	}
}

func (r *repository) Create(ctx context.Context, req AgendaRequest) (*Agenda, error) {
	query := `
		INSERT INTO agendas (time, class_id, coach_id, location_facility_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + agendaColumns

	var a Agenda
	if err := r.db.GetContext(ctx, &a, query, req.Time, req.ClassID, req.CoachID, req.LocationFacilityID); err != nil {
		return nil, mapErr(err, ErrAgendaNotFound)
	}
	return &a, nil
}

func (r *repository) Update(ctx context.Context, id int, req AgendaRequest) (*Agenda, error) {
	query := `
		UPDATE agendas
		SET time = $2, class_id = $3, coach_id = $4, location_facility_id = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + agendaColumns

	var a Agenda
	if err := r.db.GetContext(ctx, &a, query, id, req.Time, req.ClassID, req.CoachID, req.LocationFacilityID); err != nil {
		return nil, mapErr(err, ErrAgendaNotFound)
	}
	return &a, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Agenda, error) {
	var a Agenda
	if err := r.db.GetContext(ctx, &a, `SELECT `+agendaColumns+` FROM agendas WHERE id = $1`, id); err != nil {
		return nil, mapErr(err, ErrAgendaNotFound)
	}
	return &a, nil
}

func (r *repository) FindScheduleByID(ctx context.Context, id int) (*Schedule, error) {
	var s Schedule
	if err := r.db.GetContext(ctx, &s, scheduleSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, mapErr(err, ErrAgendaNotFound)
	}
	s.fillAvailability()
	return &s, nil
}

func (r *repository) List(ctx context.Context, rg Range, f ListFilter) ([]Schedule, error) {
	query := scheduleSelect + `
		WHERE a.deleted_at IS NULL
		  AND a.time >= $1 AND a.time < $2
		  AND ($3 = 0 OR l.id = $3)
		  AND ($4 = 0 OR c.class_type_id = $4)
		  AND ($5 = 0 OR a.coach_id = $5)
		ORDER BY a.time, a.id`

	schedules := []Schedule{}
	if err := r.db.SelectContext(ctx, &schedules, query, rg.From, rg.To, f.LocationID, f.ClassTypeID, f.CoachID); err != nil {
		return nil, fmt.Errorf("list agendas: %w", err)
	}
	for i := range schedules {
		schedules[i].fillAvailability()
	}
	return schedules, nil
}

func (r *repository) ActiveBookingCount(ctx context.Context, id int) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM agenda_bookings WHERE agenda_id = $1 AND status <> 'cancelled'`, id)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE agendas SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete agenda: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAgendaNotFound
	}
	return nil
}

func (r *repository) CreateRecurrence(ctx context.Context, rec *Recurrence) (*Recurrence, error) {
	query := `
		INSERT INTO agenda_recurrences (day_of_week, time, start_date, end_date, class_id, coach_id, location_facility_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recurrenceColumns

	var out Recurrence
	err := r.db.GetContext(ctx, &out, query,
		rec.DayOfWeek, rec.Time, rec.StartDate, rec.EndDate, rec.ClassID, rec.CoachID, rec.LocationFacilityID)
	if err != nil {
		return nil, mapErr(err, ErrRecurrenceNotFound)
	}
	return &out, nil
}

func (r *repository) UpdateRecurrence(ctx context.Context, rec *Recurrence) (*Recurrence, error) {
	query := `
		UPDATE agenda_recurrences
		SET day_of_week = $2, time = $3, start_date = $4, end_date = $5, class_id = $6, coach_id = $7,
		    location_facility_id = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + recurrenceColumns

	var out Recurrence
	err := r.db.GetContext(ctx, &out, query,
		rec.ID, rec.DayOfWeek, rec.Time, rec.StartDate, rec.EndDate, rec.ClassID, rec.CoachID, rec.LocationFacilityID)
	if err != nil {
		return nil, mapErr(err, ErrRecurrenceNotFound)
	}
	return &out, nil
}

func (r *repository) FindRecurrenceByID(ctx context.Context, id int) (*Recurrence, error) {
	var rec Recurrence
	if err := r.db.GetContext(ctx, &rec, `SELECT `+recurrenceColumns+` FROM agenda_recurrences WHERE id = $1`, id); err != nil {
		return nil, mapErr(err, ErrRecurrenceNotFound)
	}
	return &rec, nil
}

func (r *repository) ActiveRecurrences(ctx context.Context) ([]Recurrence, error) {
	recs := []Recurrence{}
	query := `SELECT ` + recurrenceColumns + ` FROM agenda_recurrences WHERE deleted_at IS NULL ORDER BY id`
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	return recs, nil
}

func (r *repository) SoftDeleteRecurrence(ctx context.Context, q sqlx.ExtContext, id int) error {
	res, err := q.ExecContext(ctx, `UPDATE agenda_recurrences SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete recurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecurrenceNotFound
	}
	return nil
}

func (r *repository) SoftDeleteFutureUnbooked(ctx context.Context, q sqlx.ExtContext, recurrenceID int, after time.Time) (int64, error) {
	query := `
		UPDATE agendas a SET deleted_at = NOW()
		WHERE a.agenda_recurrence_id = $1 AND a.deleted_at IS NULL AND a.time > $2
		  AND NOT EXISTS (SELECT 1 FROM agenda_bookings b WHERE b.agenda_id = a.id AND b.status <> 'cancelled')`

	res, err := q.ExecContext(ctx, query, recurrenceID, after)
	if err != nil {
		return 0, fmt.Errorf("delete future instances: %w", err)
	}
	return res.RowsAffected()
}

// OccurrenceDates lists the studio-local dates a rule has produced an instance
// for. The date is fixed at generation, so instances an admin moved or deleted
// still count.
func (r *repository) OccurrenceDates(ctx context.Context, recurrenceID int) ([]string, error) {
	dates := []string{}
	query := `
		SELECT to_char(occurrence_date, 'YYYY-MM-DD')
		FROM agendas
		WHERE agenda_recurrence_id = $1 AND occurrence_date IS NOT NULL`
	if err := r.db.SelectContext(ctx, &dates, query, recurrenceID); err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return dates, nil
}

func (r *repository) InsertInstance(ctx context.Context, q sqlx.ExtContext, rec Recurrence, at time.Time, occurrence string) (bool, error) {
	query := `
		INSERT INTO agendas (time, class_id, coach_id, location_facility_id, agenda_recurrence_id, occurrence_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (agenda_recurrence_id, occurrence_date) DO NOTHING`

	res, err := q.ExecContext(ctx, query, at, rec.ClassID, rec.CoachID, rec.LocationFacilityID, rec.ID, occurrence)
	if err != nil {
		return false, mapErr(err, ErrRecurrenceNotFound)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
