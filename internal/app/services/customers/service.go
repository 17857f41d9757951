// Package customers manages the loyalty customer collection. Credentials
// are bcrypt-hashed at rest and compared with constant-time bcrypt
// verification.
package customers

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/customer"
	"github.com/storeflow/storeflow/internal/app/storage"
	"github.com/storeflow/storeflow/pkg/logger"
)

// Service validates and persists customers.
type Service struct {
	store storage.CustomerStore
	log   *logger.Logger
}

// New constructs the customers service.
func New(store storage.CustomerStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("customers")
	}
	return &Service{store: store, log: log}
}

// Create registers a customer with the given plain-text password, which
// is hashed before anything is stored.
func (s *Service) Create(ctx context.Context, c customer.Customer, password string) (customer.Customer, error) {
	if strings.TrimSpace(c.PhoneNumber) == "" {
		return customer.Customer{}, apperr.Validation("phone number is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return customer.Customer{}, apperr.Validation("customer name is required")
	}
	if password == "" {
		return customer.Customer{}, apperr.Validation("password is required")
	}
	if c.LoyaltyPoints < 0 {
		return customer.Customer{}, apperr.Validation("loyalty points must not be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return customer.Customer{}, apperr.Internal(err)
	}
	c.PasswordHash = string(hash)

	created, err := s.store.CreateCustomer(ctx, c)
	if err != nil {
		return customer.Customer{}, err
	}
	s.log.WithField("phone_number", created.PhoneNumber).Info("customer created")
	return created, nil
}

// Update replaces a customer record. An empty password keeps the stored
// hash; a new password is re-hashed.
func (s *Service) Update(ctx context.Context, c customer.Customer, password string) (customer.Customer, error) {
	if strings.TrimSpace(c.Name) == "" {
		return customer.Customer{}, apperr.Validation("customer name is required")
	}
	if c.LoyaltyPoints < 0 {
		return customer.Customer{}, apperr.Validation("loyalty points must not be negative")
	}

	current, err := s.store.GetCustomer(ctx, c.PhoneNumber)
	if err != nil {
		return customer.Customer{}, err
	}
	if password == "" {
		c.PasswordHash = current.PasswordHash
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return customer.Customer{}, apperr.Internal(err)
		}
		c.PasswordHash = string(hash)
	}
	return s.store.UpdateCustomer(ctx, c)
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, phoneNumber string) (customer.Customer, error) {
	return s.store.GetCustomer(ctx, phoneNumber)
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]customer.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, phoneNumber string) error {
	return s.store.DeleteCustomer(ctx, phoneNumber)
}

// Authenticate verifies the password for the customer portal login. An
// unknown phone number and a wrong password return the same error.
func (s *Service) Authenticate(ctx context.Context, phoneNumber, password string) (customer.Customer, error) {
	c, err := s.store.GetCustomer(ctx, phoneNumber)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return customer.Customer{}, apperr.Unauthorized("invalid phone number or password")
		}
		return customer.Customer{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return customer.Customer{}, apperr.Unauthorized("invalid phone number or password")
	}
	return c, nil
}
