package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drithh/setalip-mono-sub003/internal/db"
	"github.com/drithh/setalip-mono-sub003/internal/logger"
	"github.com/drithh/setalip-mono-sub003/internal/metrics"
)

const defaultListDays = 7

var (
	ErrAgendaNotFound     = errors.New("agenda not found")
	ErrRecurrenceNotFound = errors.New("recurrence not found")
	ErrInvalidRecurrence  = errors.New("invalid recurrence")
	ErrInvalidReference   = errors.New("referenced class, coach or facility does not exist")
	ErrInvalidRange       = errors.New("to must not be before from")
	ErrAgendaHasBookings  = errors.New("agenda has active bookings")
)

type Service interface {
	Create(ctx context.Context, req AgendaRequest) (*Agenda, error)
	Update(ctx context.Context, id int, req AgendaRequest) (*Agenda, error)
	Get(ctx context.Context, id int) (*Schedule, error)
	List(ctx context.Context, f ListFilter) ([]Schedule, error)
	Delete(ctx context.Context, id int) error

	CreateRecurrence(ctx context.Context, req RecurrenceRequest) (*Recurrence, error)
	UpdateRecurrence(ctx context.Context, id int, req RecurrenceRequest) (*Recurrence, error)
	GetRecurrence(ctx context.Context, id int) (*Recurrence, error)
	ListRecurrences(ctx context.Context) ([]Recurrence, error)
	DeleteRecurrence(ctx context.Context, id int, removeFuture bool) (int64, error)

	GenerateFromRecurrences(ctx context.Context, from, to time.Time) (int, error)
	GenerateAhead(ctx context.Context, weeks int) (*GenerateResult, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, tx db.Transactor, loc *time.Location) Service {
	return &service{repo: repo, tx: tx, loc: loc, now: time.Now}
}

func (s *service) Create(ctx context.Context, req AgendaRequest) (*Agenda, error) {
	return s.repo.Create(ctx, req)
}

func (s *service) Update(ctx context.Context, id int, req AgendaRequest) (*Agenda, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *service) Get(ctx context.Context, id int) (*Schedule, error) {
	return s.repo.FindScheduleByID(ctx, id)
}

// List defaults to the coming week. Dates are studio-local and inclusive.
func (s *service) List(ctx context.Context, f ListFilter) ([]Schedule, error) {
	rg, err := s.resolveRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, rg, f)
}

func (s *service) resolveRange(from, to string) (Range, error) {
	start := civilDate(s.now(), s.loc)
	if from != "" {
		d, err := time.Parse(dateLayout, from)
		if err != nil {
			return Range{}, ErrInvalidRange
		}
		start = d
	}
	end := start.AddDate(0, 0, defaultListDays-1)
	if to != "" {
		d, err := time.Parse(dateLayout, to)
		if err != nil {
			return Range{}, ErrInvalidRange
		}
		end = d
	}
	if end.Before(start) {
		return Range{}, ErrInvalidRange
	}

	atMidnight := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	}
	return Range{From: atMidnight(start), To: atMidnight(end.AddDate(0, 0, 1))}, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	n, err := s.repo.ActiveBookingCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAgendaHasBookings
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *service) toRecurrence(req RecurrenceRequest) (*Recurrence, error) {
	if req.DayOfWeek == nil {
		return nil, fmt.Errorf("%w: day_of_week is required", ErrInvalidRecurrence)
	}
	if _, _, err := parseClock(req.Time); err != nil {
		return nil, err
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidRecurrence)
	}

	rec := &Recurrence{
		DayOfWeek:          *req.DayOfWeek,
		Time:               req.Time,
		StartDate:          start,
		ClassID:            req.ClassID,
		CoachID:            req.CoachID,
		LocationFacilityID: req.LocationFacilityID,
	}
	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidRecurrence)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: end_date is before start_date", ErrInvalidRecurrence)
		}
		rec.EndDate = &end
	}
	return rec, nil
}

func (s *service) CreateRecurrence(ctx context.Context, req RecurrenceRequest) (*Recurrence, error) {
	rec, err := s.toRecurrence(req)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateRecurrence(ctx, rec)
}

// UpdateRecurrence changes the rule only; instances already generated keep
// their schedule.
func (s *service) UpdateRecurrence(ctx context.Context, id int, req RecurrenceRequest) (*Recurrence, error) {
	rec, err := s.toRecurrence(req)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return s.repo.UpdateRecurrence(ctx, rec)
}

func (s *service) GetRecurrence(ctx context.Context, id int) (*Recurrence, error) {
	return s.repo.FindRecurrenceByID(ctx, id)
}

func (s *service) ListRecurrences(ctx context.Context) ([]Recurrence, error) {
	return s.repo.ActiveRecurrences(ctx)
}

func (s *service) DeleteRecurrence(ctx context.Context, id int, removeFuture bool) (int64, error) {
	var removed int64
	err := s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		if err := s.repo.SoftDeleteRecurrence(ctx, q, id); err != nil {
			return err
		}
		if !removeFuture {
			return nil
		}
		n, err := s.repo.SoftDeleteFutureUnbooked(ctx, q, id, s.now())
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// GenerateFromRecurrences materializes every active rule over [from, to].
// A rule that fails is logged and skipped so one bad row cannot block the
// rest of the schedule.
func (s *service) GenerateFromRecurrences(ctx context.Context, from, to time.Time) (int, error) {
	recs, err := s.repo.ActiveRecurrences(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, rec := range recs {
		n, err := s.generateOne(ctx, rec, from, to)
		if err != nil {
			logger.Error("generate agendas failed", "recurrence_id", rec.ID, "error", err)
			continue
		}
		created += n
	}

	metrics.RecordAgendasGenerated(created)
	logger.Info("agendas generated", "from", DateKey(from, s.loc), "to", DateKey(to, s.loc), "created", created)
	return created, nil
}

func (s *service) generateOne(ctx context.Context, rec Recurrence, from, to time.Time) (int, error) {
	dates, err := s.repo.OccurrenceDates(ctx, rec.ID)
	if err != nil {
		return 0, err
	}
	existing := make(map[string]bool, len(dates))
	for _, d := range dates {
		existing[d] = true
	}

	pending, err := Expand(rec, from, to, s.loc, existing)
	if err != nil || len(pending) == 0 {
		return 0, err
	}

	created := 0
	err = s.tx.InTx(ctx, func(q sqlx.ExtContext) error {
		for _, at := range pending {
			ok, err := s.repo.InsertInstance(ctx, q, rec, at, DateKey(at, s.loc))
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *service) GenerateAhead(ctx context.Context, weeks int) (*GenerateResult, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("%w: weeks must be positive", ErrInvalidRecurrence)
	}
	from := s.now()
	to := from.AddDate(0, 0, weeks*7)

	n, err := s.GenerateFromRecurrences(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{From: DateKey(from, s.loc), To: DateKey(to, s.loc), Created: n}, nil
}
