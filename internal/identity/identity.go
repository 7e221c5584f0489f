package identity

import (
	"context"
	"errors"
	"time"
)

// Roles known to the system.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User is an account row. StudentID is set only for student accounts.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	StudentID    *string   `json:"student_id,omitempty"`
	DepartmentID *string   `json:"department,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Department groups students for aggregate statistics.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DepartmentStats is the per-department student headcount.
type DepartmentStats struct {
	Name         string `json:"name"`
	StudentCount int    `json:"student_count"`
}

// StudentSummary is the shape returned by the admin student search.
type StudentSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	StudentID *string `json:"student_id"`
}

// RefreshToken is a stored refresh token used for rotation bookkeeping.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
}

var (
	// ErrNotFound is returned when a user or department does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrStudentIDTaken is returned when the student id is already registered.
	ErrStudentIDTaken = errors.New("student id already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store is the persistence boundary for accounts and departments.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, ref string) (*User, error)
	CountStudents(ctx context.Context) (int, error)
	SearchStudents(ctx context.Context, q string, limit int) ([]StudentSummary, error)

	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id string) (*Department, error)
	CreateDepartment(ctx context.Context, d Department) error
	UpdateDepartment(ctx context.Context, d Department) error
	DeleteDepartment(ctx context.Context, id string) error
	DepartmentStats(ctx context.Context) ([]DepartmentStats, error)

	SaveRefreshToken(ctx context.Context, t RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}
