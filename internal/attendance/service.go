package attendance

import (
	"context"
	"time"
)

// ClockInResult is what a successful clock-in reports back.
type ClockInResult struct {
	ClockInTime  string
	PresentCount int
}

// Service coordinates the daily clock-in/clock-out lifecycle and derives the
// aggregate numbers the stats endpoints serve.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) today() (date, clock string) {
	n := s.now()
	return n.Format("2006-01-02"), n.Format("15:04:05")
}

// ClockIn records arrival for today. Repeat calls the same day overwrite the
// clock-in time instead of creating a second row.
func (s *Service) ClockIn(ctx context.Context, userID string) (ClockInResult, error) {
	date, clock := s.today()
	if err := s.store.ClockIn(ctx, userID, date, clock); err != nil {
		return ClockInResult{}, err
	}
	count, err := s.store.CountPresent(ctx, userID)
	if err != nil {
		return ClockInResult{}, err
	}
	return ClockInResult{ClockInTime: clock, PresentCount: count}, nil
}

// ClockOut records departure for today. Without a same-day clock-in it fails
// with ErrNoRecordToday and writes nothing.
func (s *Service) ClockOut(ctx context.Context, userID string) (string, error) {
	date, clock := s.today()
	ok, err := s.store.ClockOut(ctx, userID, date, clock)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoRecordToday
	}
	return clock, nil
}

// IsClockedIn reports whether the user is currently clocked in today.
func (s *Service) IsClockedIn(ctx context.Context, userID string) (bool, error) {
	date, _ := s.today()
	return s.store.IsClockedIn(ctx, userID, date)
}

// StatsForUser returns the per-student counts with the percentage computed,
// 0 when the student has no records at all.
func (s *Service) StatsForUser(ctx context.Context, userID string) (Stats, error) {
	stats, err := s.store.StatsForUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	if stats.Total > 0 {
		stats.Percentage = float64(stats.Present) / float64(stats.Total) * 100
	}
	return stats, nil
}

// PercentageList returns every student's overall percentage.
func (s *Service) PercentageList(ctx context.Context) ([]PercentageRow, error) {
	return s.store.PercentageList(ctx)
}

// TodayPercentage computes the campus-wide share of students present today,
// 0 when there are no students.
func (s *Service) TodayPercentage(ctx context.Context, totalStudents int) (float64, error) {
	date, _ := s.today()
	present, err := s.store.CountByStatusOn(ctx, date, StatusPresent)
	if err != nil {
		return 0, err
	}
	if totalStudents == 0 {
		return 0, nil
	}
	return float64(present) / float64(totalStudents) * 100, nil
}

// AbsentToday counts records explicitly marked absent today.
func (s *Service) AbsentToday(ctx context.Context) (int, error) {
	date, _ := s.today()
	return s.store.CountByStatusOn(ctx, date, StatusAbsent)
}

// Report runs the filtered per-student report aggregation.
func (s *Service) Report(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	return s.store.Report(ctx, f)
}

// RecentRecords returns the newest ledger rows for the admin dashboard.
func (s *Service) RecentRecords(ctx context.Context, limit int) ([]RecentRow, error) {
	return s.store.RecentRecords(ctx, limit)
}

// ListRecords lists ledger rows.
func (s *Service) ListRecords(ctx context.Context, f RecordFilter) ([]Record, error) {
	return s.store.ListRecords(ctx, f)
}

// GetRecord returns one ledger row, ErrNotFound if unknown.
func (s *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// CreateRecord inserts a ledger row.
func (s *Service) CreateRecord(ctx context.Context, rec Record) (Record, error) {
	return s.store.CreateRecord(ctx, rec)
}

// UpdateRecord applies a partial admin update.
func (s *Service) UpdateRecord(ctx context.Context, id string, upd RecordUpdate) (*Record, error) {
	return s.store.UpdateRecord(ctx, id, upd)
}

// DeleteRecord removes a ledger row.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	return s.store.DeleteRecord(ctx, id)
}

// RecordAction appends a login/logout entry to the audit trail.
func (s *Service) RecordAction(ctx context.Context, userID, action string) error {
	return s.store.InsertLog(ctx, LogEntry{UserID: userID, Timestamp: s.now(), Action: action})
}

// ListLogs returns the audit trail newest first.
func (s *Service) ListLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	return s.store.ListLogs(ctx, limit)
}
