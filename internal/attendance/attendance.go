package attendance

import (
	"context"
	"errors"
	"time"
)

// Attendance statuses. A day with no row counts as absent only by exclusion
// in the aggregate queries; "late" is never derived, only set by an admin.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusPending = "pending"
)

// Statuses lists the valid status values in a stable order.
var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusPending}

// ValidStatus reports whether s is a known attendance status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Record is one ledger row: at most one per (user, date). Dates are
// "YYYY-MM-DD" strings and clock times "HH:MM:SS" strings, matching the wire
// format.
type Record struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user"`
	StudentID    *string `json:"student_id"`
	StudentName  string  `json:"student_name"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	ClockInTime  *string `json:"clock_in_time"`
	ClockOutTime *string `json:"clock_out_time"`
}

// RecordUpdate is a partial update for a ledger row. Nil fields are left
// untouched; the owning user is immutable.
type RecordUpdate struct {
	Date         *string
	Status       *string
	ClockInTime  *string
	ClockOutTime *string
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	FromDate     string
	ToDate       string
	StudentsOnly bool
	Limit        int
}

// Stats is the per-student aggregate.
type Stats struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Percentage float64 `json:"percentage"`
}

// PercentageRow is one student's overall attendance percentage.
type PercentageRow struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Percentage float64 `json:"attendance_percentage"`
}

// ReportFilter is the admin report query. StartDate/EndDate apply only when
// both are set.
type ReportFilter struct {
	StartDate   string
	EndDate     string
	Status      string
	Department  string
	StudentName string
}

// ReportRow is one student line of the filtered report.
type ReportRow struct {
	LatestDate  *string
	StudentName string
	Present     int
	Total       int
	Department  *string
	Percentage  float64
}

// RecentRow is one line of the recent-activity listing.
type RecentRow struct {
	StudentName string  `json:"student_name"`
	StudentID   *string `json:"student_id"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
}

// LogEntry is one row of the append-only login/logout audit trail.
type LogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

var (
	// ErrNoRecordToday is returned by clock-out when the user has not
	// clocked in that day.
	ErrNoRecordToday = errors.New("no attendance record found for today")
	// ErrNotFound is returned for unknown record ids.
	ErrNotFound = errors.New("attendance record not found")
	// ErrDuplicateRecord is returned when a (user, date) row already exists.
	ErrDuplicateRecord = errors.New("attendance record already exists for this date")
)

// Store is the persistence boundary for the ledger, its aggregates, and the
// audit trail.
type Store interface {
	ClockIn(ctx context.Context, userID, date, clockInTime string) error
	ClockOut(ctx context.Context, userID, date, clockOutTime string) (bool, error)
	IsClockedIn(ctx context.Context, userID, date string) (bool, error)
	CountPresent(ctx context.Context, userID string) (int, error)

	StatsForUser(ctx context.Context, userID string) (Stats, error)
	PercentageList(ctx context.Context) ([]PercentageRow, error)
	CountByStatusOn(ctx context.Context, date, status string) (int, error)
	Report(ctx context.Context, f ReportFilter) ([]ReportRow, error)
	RecentRecords(ctx context.Context, limit int) ([]RecentRow, error)

	ListRecords(ctx context.Context, f RecordFilter) ([]Record, error)
	GetRecord(ctx context.Context, id string) (*Record, error)
	CreateRecord(ctx context.Context, rec Record) (Record, error)
	UpdateRecord(ctx context.Context, id string, upd RecordUpdate) (*Record, error)
	DeleteRecord(ctx context.Context, id string) error

	InsertLog(ctx context.Context, entry LogEntry) error
	ListLogs(ctx context.Context, limit int) ([]LogEntry, error)
}
