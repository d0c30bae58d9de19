package report

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidRange = errors.New("invalid date range")

const (
	dateLayout        = "2006-01-02"
	defaultReportDays = 30
)

type Service interface {
	Bookings(ctx context.Context, f Filter) (*BookingReport, error)
	Credits(ctx context.Context, f Filter) (*CreditReport, error)
	Sales(ctx context.Context, f Filter) (*SalesReport, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) Service {
	return &service{repo: repo, loc: loc, now: time.Now}
}

// period turns inclusive local dates into a half-open window. Without dates
// it covers the last 30 days, today included.
func (s *service) period(f Filter) (Period, error) {
	today := s.now().In(s.loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.loc)
	if f.To != "" {
		d, err := time.ParseInLocation(dateLayout, f.To, s.loc)
		if err != nil {
			return Period{}, ErrInvalidRange
		}
		end = d
	}
	start := end.AddDate(0, 0, 1-defaultReportDays)
	if f.From != "" {
		d, err := time.ParseInLocation(dateLayout, f.From, s.loc)
		if err != nil {
			return Period{}, ErrInvalidRange
		}
		start = d
	}
	if end.Before(start) {
		return Period{}, ErrInvalidRange
	}
	return Period{From: start, To: end.AddDate(0, 0, 1)}, nil
}

func (s *service) Bookings(ctx context.Context, f Filter) (*BookingReport, error) {
	p, err := s.period(f)
	if err != nil {
		return nil, err
	}

	var rows []BookingRow
	groupBy := f.GroupBy
	if groupBy == GroupByLocation {
		rows, err = s.repo.BookingsByLocation(ctx, p)
	} else {
		groupBy = GroupByDay
		rows, err = s.repo.BookingsByDay(ctx, p, s.loc.String())
	}
	if err != nil {
		return nil, err
	}
	return &BookingReport{Period: p, GroupBy: groupBy, Rows: rows}, nil
}

func (s *service) Credits(ctx context.Context, f Filter) (*CreditReport, error) {
	p, err := s.period(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.CreditSummary(ctx, p)
	if err != nil {
		return nil, err
	}
	return &CreditReport{Period: p, Rows: rows}, nil
}

func (s *service) Sales(ctx context.Context, f Filter) (*SalesReport, error) {
	p, err := s.period(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.PackageSales(ctx, p)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}
	return &SalesReport{Period: p, Rows: rows, Revenue: total}, nil
}
