// Package employees manages staff accounts and issues the signed session
// tokens consumed by the auth middleware.
package employees

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/employee"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// RoleEmployee is the role claim issued to staff sessions.
const RoleEmployee = "employee"

// Claims is the JWT payload for an employee session.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token      string `json:"token"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
}

// Service validates and persists employees.
type Service struct {
	store    storage.EmployeeStore
	secret   []byte
	tokenTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// New constructs the employees service. The secret signs session tokens
// with HS256.
func New(store storage.EmployeeStore, secret []byte, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("employees")
	}
	return &Service{
		store:    store,
		secret:   secret,
		tokenTTL: 12 * time.Hour,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithTokenTTL overrides the session token lifetime.
func (s *Service) WithTokenTTL(d time.Duration) *Service {
	if d > 0 {
		s.tokenTTL = d
	}
	return s
}

// Create registers an employee, hashing the given plain-text password.
func (s *Service) Create(ctx context.Context, e employee.Employee, password string) (employee.Employee, error) {
	if strings.TrimSpace(e.EmployeeID) == "" {
		return employee.Employee{}, apperr.Validation("employee id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return employee.Employee{}, apperr.Validation("employee name is required")
	}
	if password == "" {
		return employee.Employee{}, apperr.Validation("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return employee.Employee{}, apperr.Internal(err)
	}
	e.PasswordHash = string(hash)

	created, err := s.store.CreateEmployee(ctx, e)
	if err != nil {
		return employee.Employee{}, err
	}
	s.log.WithField("employee_id", created.EmployeeID).Info("employee created")
	return created, nil
}

// Update replaces an employee record. An empty password keeps the stored
// hash.
func (s *Service) Update(ctx context.Context, e employee.Employee, password string) (employee.Employee, error) {
	if strings.TrimSpace(e.Name) == "" {
		return employee.Employee{}, apperr.Validation("employee name is required")
	}

	current, err := s.store.GetEmployee(ctx, e.EmployeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if password == "" {
		e.PasswordHash = current.PasswordHash
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return employee.Employee{}, apperr.Internal(err)
		}
		e.PasswordHash = string(hash)
	}
	return s.store.UpdateEmployee(ctx, e)
}

// Get fetches one employee.
func (s *Service) Get(ctx context.Context, employeeID string) (employee.Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

// List returns all employees.
func (s *Service) List(ctx context.Context) ([]employee.Employee, error) {
	return s.store.ListEmployees(ctx)
}

// Delete removes an employee.
func (s *Service) Delete(ctx context.Context, employeeID string) error {
	return s.store.DeleteEmployee(ctx, employeeID)
}

// Login verifies the credential and issues a signed session token. An
// unknown employee and a wrong password return the same error.
func (s *Service) Login(ctx context.Context, employeeID, password string) (Session, error) {
	e, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return Session{}, apperr.Unauthorized("invalid employee id or password")
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return Session{}, apperr.Unauthorized("invalid employee id or password")
	}

	now := s.now()
	claims := Claims{
		Name: e.Name,
		Role: RoleEmployee,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   e.EmployeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, apperr.Internal(err)
	}

	s.log.WithField("employee_id", e.EmployeeID).Info("employee logged in")
	return Session{Token: token, EmployeeID: e.EmployeeID, Name: e.Name}, nil
}
