package identity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists accounts and departments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, username, password_hash, role, student_id, department_id, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.StudentID, &u.DepartmentID, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user row. Duplicate email or student id is reported
// via ErrEmailTaken / ErrStudentIDTaken.
func (r *Repository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, role, student_id, department_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Email, u.Username, u.PasswordHash, u.Role, u.StudentID, u.DepartmentID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "users_student_id_key" {
			return ErrStudentIDTaken
		}
		return ErrEmailTaken
	}
	return err
}

// GetUserByEmail returns the active user with the given email, nil if none.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active
	`, email)
	return scanUser(row)
}

// GetUser resolves a user by row id or by student id, nil if none.
func (r *Repository) GetUser(ctx context.Context, ref string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1 OR student_id = $1
	`, ref)
	return scanUser(row)
}

// CountStudents returns the number of student accounts.
func (r *Repository) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'student'`).Scan(&n)
	return n, err
}

// SearchStudents matches students by username or student id substring.
func (r *Repository) SearchStudents(ctx context.Context, q string, limit int) ([]StudentSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, student_id
		FROM users
		WHERE role = 'student'
		  AND (username ILIKE '%' || $1 || '%' OR student_id ILIKE '%' || $1 || '%')
		ORDER BY username
		LIMIT $2
	`, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StudentSummary
	for rows.Next() {
		var s StudentSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.StudentID); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// ListDepartments returns all departments ordered by name.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// GetDepartment returns a department by id, nil if none.
func (r *Repository) GetDepartment(ctx context.Context, id string) (*Department, error) {
	var d Department
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM departments WHERE id = $1`, id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDepartment inserts a department.
func (r *Repository) CreateDepartment(ctx context.Context, d Department) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO departments (id, name) VALUES ($1, $2)`, d.ID, d.Name)
	return err
}

// UpdateDepartment renames a department.
func (r *Repository) UpdateDepartment(ctx context.Context, d Department) error {
	res, err := r.db.ExecContext(ctx, `UPDATE departments SET name = $2 WHERE id = $1`, d.ID, d.Name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDepartment removes a department; referencing users are detached by
// the ON DELETE SET NULL constraint.
func (r *Repository) DeleteDepartment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DepartmentStats counts student accounts per department, including empty
// departments.
func (r *Repository) DepartmentStats(ctx context.Context) ([]DepartmentStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.name, COUNT(u.id)
		FROM departments d
		LEFT JOIN users u ON u.department_id = d.id AND u.role = 'student'
		GROUP BY d.id, d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []DepartmentStats
	for rows.Next() {
		var s DepartmentStats
		if err := rows.Scan(&s.Name, &s.StudentCount); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, t RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, t.Token, t.UserID, t.ExpiresAt)
	return err
}

// GetRefreshToken returns a stored refresh token, nil if unknown.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	var t RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, revoked FROM refresh_tokens WHERE token = $1
	`, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
