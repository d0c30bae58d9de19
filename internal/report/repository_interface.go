package report

import "context"

type Repository interface {
	BookingsByDay(ctx context.Context, p Period, tz string) ([]BookingRow, error)
	BookingsByLocation(ctx context.Context, p Period) ([]BookingRow, error)
	CreditSummary(ctx context.Context, p Period) ([]CreditRow, error)
	PackageSales(ctx context.Context, p Period) ([]SalesRow, error)
}
