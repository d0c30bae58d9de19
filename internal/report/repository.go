package report

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const statusCounts = `
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE b.status = 'booked') AS booked,
		COUNT(*) FILTER (WHERE b.status = 'checked_in') AS checked_in,
		COUNT(*) FILTER (WHERE b.status = 'cancelled') AS cancelled`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) BookingsByDay(ctx context.Context, p Period, tz string) ([]BookingRow, error) {
	query := `
		SELECT to_char(a.time AT TIME ZONE $3, 'YYYY-MM-DD') AS key,` + statusCounts + `
		FROM agenda_bookings b
		JOIN agendas a ON a.id = b.agenda_id
		WHERE a.time >= $1 AND a.time < $2
		GROUP BY 1
		ORDER BY 1`

	rows := []BookingRow{}
	if err := r.db.SelectContext(ctx, &rows, query, p.From, p.To, tz); err != nil {
		return nil, fmt.Errorf("bookings by day: %w", err)
	}
	return rows, nil
}

func (r *repository) BookingsByLocation(ctx context.Context, p Period) ([]BookingRow, error) {
	query := `
		SELECT l.name AS key,` + statusCounts + `
		FROM agenda_bookings b
		JOIN agendas a ON a.id = b.agenda_id
		JOIN location_facilities f ON f.id = a.location_facility_id
		JOIN locations l ON l.id = f.location_id
		WHERE a.time >= $1 AND a.time < $2
		GROUP BY l.id, l.name
		ORDER BY l.name`

	rows := []BookingRow{}
	if err := r.db.SelectContext(ctx, &rows, query, p.From, p.To); err != nil {
		return nil, fmt.Errorf("bookings by location: %w", err)
	}
	return rows, nil
}

func (r *repository) CreditSummary(ctx context.Context, p Period) ([]CreditRow, error) {
	query := `
		SELECT type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM credit_transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY type
		ORDER BY type`

	rows := []CreditRow{}
	if err := r.db.SelectContext(ctx, &rows, query, p.From, p.To); err != nil {
		return nil, fmt.Errorf("credit summary: %w", err)
	}
	return rows, nil
}

// PackageSales counts completed purchases by the time they were approved.
func (r *repository) PackageSales(ctx context.Context, p Period) ([]SalesRow, error) {
	query := `
		SELECT p.id AS package_id, p.name AS package_name, COUNT(*) AS sold, COALESCE(SUM(t.amount), 0) AS revenue
		FROM package_transactions t
		JOIN packages p ON p.id = t.package_id
		WHERE t.status = 'completed' AND t.updated_at >= $1 AND t.updated_at < $2
		GROUP BY p.id, p.name
		ORDER BY revenue DESC, p.name`

	rows := []SalesRow{}
	if err := r.db.SelectContext(ctx, &rows, query, p.From, p.To); err != nil {
		return nil, fmt.Errorf("package sales: %w", err)
	}
	return rows, nil
}
