package visit

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/evcraddock/realty-crm/internal/clock"
	"github.com/evcraddock/realty-crm/internal/db"
)

// ExistenceChecker reports whether a referenced row exists.
type ExistenceChecker interface {
	Exists(id int64) (bool, error)
}

// Service validates visit writes and answers agenda queries.
type Service struct {
	repo       *Repository
	validator  *Validator
	clients    ExistenceChecker
	properties ExistenceChecker
}

// NewService wires a visit service over database.
func NewService(database *sql.DB, clients, properties ExistenceChecker, clk clock.Clock, loc *time.Location) *Service {
	return &Service{
		repo:       NewRepository(database),
		validator:  NewValidator(clk, loc),
		clients:    clients,
		properties: properties,
	}
}

// Validator returns the validator used for writes and date parsing.
func (s *Service) Validator() *Validator { return s.validator }

// Create validates in and stores a new visit.
func (s *Service) Create(in Input) (*Visit, error) {
	v, err := s.validator.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	if err := s.mustExist(s.clients, "client", in.ClientID); err != nil {
		return nil, err
	}
	if err := s.mustExist(s.properties, "property", in.PropertyID); err != nil {
		return nil, err
	}

	// Not transactional: two concurrent requests can both pass this check.
	if v.Status == Scheduled || v.Status == Rescheduled {
		busy, err := s.repo.HasActiveAt(v.PropertyID, v.ScheduledDatetime)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, fmt.Errorf("%w: property %d already has a visit at %s",
				ErrConflict, v.PropertyID, v.ScheduledDatetime.In(s.validator.Location()).Format("2006-01-02 15:04"))
		}
	}

	v.CreatedAt = s.validator.Now().UTC()
	id, err := s.repo.Insert(v)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(id)
}

func (s *Service) mustExist(checker ExistenceChecker, kind string, id int64) error {
	ok, err := checker.Exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", kind, id, db.ErrNotFound)
	}
	return nil
}

// Get returns a single enriched visit.
func (s *Service) Get(id int64) (*Visit, error) {
	return s.repo.Get(id)
}

// List returns visits matching f, latest first. Limit 0 means DefaultLimit.
func (s *Service) List(f Filter) ([]*Visit, error) {
	if f.Status != "" {
		if _, err := ParseStatus(string(f.Status)); err != nil {
			return nil, err
		}
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return nil, invalid(ErrInvalidFormat, "limit", "limit must be between 1 and %d", MaxLimit)
	}
	if f.Offset < 0 {
		return nil, invalid(ErrInvalidFormat, "offset", "offset must not be negative")
	}
	return s.repo.List(f)
}

// Calendar returns the active visits of a month, earliest first.
func (s *Service) Calendar(month, year int) ([]*Visit, error) {
	if month < 1 || month > 12 {
		return nil, invalid(ErrInvalidFormat, "month", "month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return nil, invalid(ErrInvalidFormat, "year", "year must be between 1 and 9999, got %d", year)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.validator.Location())
	return s.repo.ListActive(from, from.AddDate(0, 1, 0), false)
}

// Today returns today's active visits, earliest first.
func (s *Service) Today() ([]*Visit, error) {
	from, to := s.todayBounds()
	return s.repo.ListActive(from, to, true)
}

func (s *Service) todayBounds() (time.Time, time.Time) {
	now := s.validator.Now().In(s.validator.Location())
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	return from, to
}

// Summary aggregates visit counts by status and today's agenda size.
func (s *Service) Summary() (*Summary, error) {
	counts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, err
	}

	from, to := s.todayBounds()
	today, err := s.repo.CountActive(from, to)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Scheduled:   counts[string(Scheduled)],
		Completed:   counts[string(Completed)],
		Canceled:    counts[string(Canceled)],
		Rescheduled: counts[string(Rescheduled)],
		Today:       today,
		ByStatus:    counts,
	}
	for _, n := range counts {
		sum.Total += n
	}
	if sum.Total > 0 {
		rate := float64(sum.Completed) / float64(sum.Total) * 100
		sum.CompletionRatePercent = math.Round(rate*100) / 100
	}
	return sum, nil
}

// Update merges p into the visit and stamps updated_at.
func (s *Service) Update(id int64, p Patch) (*Visit, error) {
	cur, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ApplyPatch(cur, p); err != nil {
		return nil, err
	}

	now := s.validator.Now().UTC()
	cur.UpdatedAt = &now
	if err := s.repo.Update(cur); err != nil {
		return nil, err
	}
	return s.repo.Get(id)
}

// UpdateStatus transitions a visit to status.
func (s *Service) UpdateStatus(id int64, status string) (*Visit, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(id, st, s.validator.Now()); err != nil {
		return nil, err
	}
	return s.repo.Get(id)
}

// Delete removes a visit.
func (s *Service) Delete(id int64) error {
	return s.repo.Delete(id)
}
