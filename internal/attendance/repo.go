package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists the attendance ledger in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ClockIn upserts the (user, date) row, overwriting clock_in_time on repeat
// calls. The unique constraint makes concurrent clock-ins collapse into one
// row.
func (r *Repository) ClockIn(ctx context.Context, userID, date, clockInTime string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, user_id, date, status, clock_in_time)
		VALUES ($1, $2, $3::date, 'present', $4::time)
		ON CONFLICT (user_id, date) DO UPDATE SET
			clock_in_time = EXCLUDED.clock_in_time,
			status = 'present'
	`, uuid.NewString(), userID, date, clockInTime)
	return err
}

// ClockOut sets clock_out_time on the same-day row and forces the status to
// present. Returns false when no row exists for that day.
func (r *Repository) ClockOut(ctx context.Context, userID, date, clockOutTime string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET clock_out_time = $3::time, status = 'present'
		WHERE user_id = $1 AND date = $2::date
	`, userID, date, clockOutTime)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IsClockedIn reports whether the user clocked in on date without clocking
// out yet.
func (r *Repository) IsClockedIn(ctx context.Context, userID, date string) (bool, error) {
	var clockedIn bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE user_id = $1 AND date = $2::date
			  AND clock_in_time IS NOT NULL AND clock_out_time IS NULL
		)
	`, userID, date).Scan(&clockedIn)
	return clockedIn, err
}

// CountPresent counts the user's present days.
func (r *Repository) CountPresent(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records WHERE user_id = $1 AND status = 'present'
	`, userID).Scan(&n)
	return n, err
}

// StatsForUser returns status counts for one user. Percentage is filled in
// by the service.
func (r *Repository) StatsForUser(ctx context.Context, userID string) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'present'),
		       COUNT(*) FILTER (WHERE status = 'absent'),
		       COUNT(*) FILTER (WHERE status = 'late')
		FROM attendance_records
		WHERE user_id = $1
	`, userID).Scan(&s.Total, &s.Present, &s.Absent, &s.Late)
	return s, err
}

// PercentageList computes each student's attendance percentage, 0 for
// students with no records.
func (r *Repository) PercentageList(ctx context.Context) ([]PercentageRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username,
		       CASE WHEN COUNT(a.id) = 0 THEN 0
		            ELSE COUNT(a.id) FILTER (WHERE a.status = 'present') * 100.0 / COUNT(a.id)
		       END
		FROM users u
		LEFT JOIN attendance_records a ON a.user_id = u.id
		WHERE u.role = 'student'
		GROUP BY u.id, u.username
		ORDER BY u.username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []PercentageRow
	for rows.Next() {
		var p PercentageRow
		if err := rows.Scan(&p.ID, &p.Username, &p.Percentage); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// CountByStatusOn counts records with the given status on a single date.
func (r *Repository) CountByStatusOn(ctx context.Context, date, status string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records WHERE date = $1::date AND status = $2
	`, date, status).Scan(&n)
	return n, err
}

// Report runs the filtered per-student aggregation. Date range and status
// narrow which ledger rows are counted; department and name narrow which
// students appear.
func (r *Repository) Report(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	join := `LEFT JOIN attendance_records a ON a.user_id = u.id`
	args := []any{}
	if f.StartDate != "" && f.EndDate != "" {
		args = append(args, f.StartDate, f.EndDate)
		join += fmt.Sprintf(" AND a.date BETWEEN $%d::date AND $%d::date", len(args)-1, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		join += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	where := `WHERE u.role = 'student'`
	if f.Department != "" {
		args = append(args, f.Department)
		where += fmt.Sprintf(" AND d.name = $%d", len(args))
	}
	if f.StudentName != "" {
		args = append(args, f.StudentName)
		where += fmt.Sprintf(" AND u.username ILIKE '%%' || $%d || '%%'", len(args))
	}

	query := `
		SELECT to_char(MAX(a.date), 'YYYY-MM-DD'),
		       u.username,
		       COUNT(a.id) FILTER (WHERE a.status = 'present'),
		       COUNT(a.id),
		       d.name,
		       CASE WHEN COUNT(a.id) = 0 THEN 0
		            ELSE COUNT(a.id) FILTER (WHERE a.status = 'present') * 100.0 / COUNT(a.id)
		       END
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		` + join + `
		` + where + `
		GROUP BY u.id, u.username, d.name
		ORDER BY u.username`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.LatestDate, &row.StudentName, &row.Present, &row.Total, &row.Department, &row.Percentage); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// RecentRecords returns the newest ledger rows with student info joined.
func (r *Repository) RecentRecords(ctx context.Context, limit int) ([]RecentRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.username, u.student_id, to_char(a.date, 'YYYY-MM-DD'), a.status
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.date DESC, a.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []RecentRow
	for rows.Next() {
		var row RecentRow
		if err := rows.Scan(&row.StudentName, &row.StudentID, &row.Date, &row.Status); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

const recordColumns = `a.id, a.user_id, u.student_id, u.username,
	to_char(a.date, 'YYYY-MM-DD'),
	a.status,
	to_char(a.clock_in_time, 'HH24:MI:SS'),
	to_char(a.clock_out_time, 'HH24:MI:SS')`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.StudentID, &rec.StudentName, &rec.Date, &rec.Status, &rec.ClockInTime, &rec.ClockOutTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ListRecords returns ledger rows newest-date first with optional date range
// and a students-only restriction for the admin views.
func (r *Repository) ListRecords(ctx context.Context, f RecordFilter) ([]Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id`
	args := []any{}
	clauses := []string{}
	if f.StudentsOnly {
		clauses = append(clauses, `u.role = 'student'`)
	}
	if f.FromDate != "" {
		args = append(args, f.FromDate)
		clauses = append(clauses, fmt.Sprintf("a.date >= $%d::date", len(args)))
	}
	if f.ToDate != "" {
		args = append(args, f.ToDate)
		clauses = append(clauses, fmt.Sprintf("a.date <= $%d::date", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY a.date DESC, a.id DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *rec)
	}
	return res, rows.Err()
}

// GetRecord returns one ledger row by id, nil if unknown.
func (r *Repository) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`, id)
	return scanRecord(row)
}

// CreateRecord inserts a ledger row. A second row for the same (user, date)
// is rejected with ErrDuplicateRecord.
func (r *Repository) CreateRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, user_id, date, status, clock_in_time, clock_out_time)
		VALUES ($1, $2, $3::date, $4, $5::time, $6::time)
	`, rec.ID, rec.UserID, rec.Date, rec.Status, rec.ClockInTime, rec.ClockOutTime)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Record{}, ErrDuplicateRecord
	}
	if err != nil {
		return Record{}, err
	}
	created, err := r.GetRecord(ctx, rec.ID)
	if err != nil {
		return Record{}, err
	}
	return *created, nil
}

// UpdateRecord applies a partial update and returns the fresh row. The user
// reference never changes.
func (r *Repository) UpdateRecord(ctx context.Context, id string, upd RecordUpdate) (*Record, error) {
	sets := []string{}
	args := []any{id}
	add := func(expr string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}
	if upd.Date != nil {
		add("date = $%d::date", *upd.Date)
	}
	if upd.Status != nil {
		add("status = $%d", *upd.Status)
	}
	if upd.ClockInTime != nil {
		add("clock_in_time = $%d::time", *upd.ClockInTime)
	}
	if upd.ClockOutTime != nil {
		add("clock_out_time = $%d::time", *upd.ClockOutTime)
	}
	if len(sets) > 0 {
		query := "UPDATE attendance_records SET " + sets[0]
		for _, s := range sets[1:] {
			query += ", " + s
		}
		query += " WHERE id = $1"
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrNotFound
		}
	}
	rec, err := r.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// DeleteRecord removes a ledger row.
func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertLog appends one audit trail entry.
func (r *Repository) InsertLog(ctx context.Context, entry LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (id, user_id, timestamp, action)
		VALUES ($1, $2, $3, $4)
	`, entry.ID, entry.UserID, entry.Timestamp, entry.Action)
	return err
}

// ListLogs returns audit entries newest first.
func (r *Repository) ListLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, timestamp, action
		FROM attendance_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Timestamp, &e.Action); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
