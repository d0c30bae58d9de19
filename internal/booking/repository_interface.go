package booking

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	LockSeat(ctx context.Context, q sqlx.ExtContext, agendaID int) (*Seat, error)
	CountActive(ctx context.Context, q sqlx.QueryerContext, agendaID int) (int, error)
	HasActive(ctx context.Context, q sqlx.QueryerContext, userID, agendaID int) (bool, error)
	Insert(ctx context.Context, q sqlx.ExtContext, userID, agendaID int) (*Booking, error)
	Lock(ctx context.Context, q sqlx.ExtContext, id int) (*Detail, error)
	SetStatus(ctx context.Context, q sqlx.ExtContext, id int, status string) (*Booking, error)

	FindDetail(ctx context.Context, id int) (*Detail, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Detail, error)
	ListByAgenda(ctx context.Context, agendaID int) ([]Detail, error)
}
