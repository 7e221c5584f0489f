package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"edulog/internal/auth"
)

// FieldErrors maps request fields to validation messages, mirroring the
// field-keyed 400 bodies the API returns on registration.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Email      string
	Username   string
	Password   string
	Role       string
	StudentID  string
	Department string
}

// Service implements registration and credential checks on top of a Store.
type Service struct {
	store      Store
	bcryptCost int
}

// NewService creates an identity service.
func NewService(store Store, bcryptCost int) *Service {
	return &Service{store: store, bcryptCost: bcryptCost}
}

// Register validates input and creates the account. Validation problems come
// back as FieldErrors; duplicate email/student id surface as ErrEmailTaken or
// ErrStudentIDTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	fieldErrs := FieldErrors{}
	if in.Email == "" {
		fieldErrs["email"] = "This field is required."
	}
	if in.Username == "" {
		fieldErrs["username"] = "This field is required."
	}
	if in.Password == "" {
		fieldErrs["password"] = "This field is required."
	}
	role := in.Role
	if role == "" {
		role = RoleStudent
	}
	if role != RoleAdmin && role != RoleStudent {
		fieldErrs["role"] = "Role must be admin or student."
	}
	if role == RoleStudent && in.StudentID == "" {
		fieldErrs["student_id"] = "This field is required for students."
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}

	u := User{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Username: in.Username,
		Role:     role,
	}
	if role == RoleStudent {
		sid := in.StudentID
		u.StudentID = &sid
	}
	if in.Department != "" {
		dept, err := s.store.GetDepartment(ctx, in.Department)
		if err != nil {
			return err
		}
		if dept == nil {
			return FieldErrors{"department": "Unknown department."}
		}
		u.DepartmentID = &dept.ID
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash

	return s.store.CreateUser(ctx, u)
}

// Authenticate verifies email/password and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
