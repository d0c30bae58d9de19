package agenda

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, req AgendaRequest) (*Agenda, error)
	Update(ctx context.Context, id int, req AgendaRequest) (*Agenda, error)
	FindByID(ctx context.Context, id int) (*Agenda, error)
	FindScheduleByID(ctx context.Context, id int) (*Schedule, error)
	List(ctx context.Context, r Range, f ListFilter) ([]Schedule, error)
	ActiveBookingCount(ctx context.Context, id int) (int, error)
	SoftDelete(ctx context.Context, id int) error

	CreateRecurrence(ctx context.Context, rec *Recurrence) (*Recurrence, error)
	UpdateRecurrence(ctx context.Context, rec *Recurrence) (*Recurrence, error)
	FindRecurrenceByID(ctx context.Context, id int) (*Recurrence, error)
	ActiveRecurrences(ctx context.Context) ([]Recurrence, error)
	SoftDeleteRecurrence(ctx context.Context, q sqlx.ExtContext, id int) error
	SoftDeleteFutureUnbooked(ctx context.Context, q sqlx.ExtContext, recurrenceID int, after time.Time) (int64, error)

	// OccurrenceDates lists the dates (YYYY-MM-DD) a rule already produced an
	// instance for, moved and soft-deleted ones included.
	OccurrenceDates(ctx context.Context, recurrenceID int) ([]string, error)
	InsertInstance(ctx context.Context, q sqlx.ExtContext, rec Recurrence, at time.Time, occurrence string) (bool, error)
}
