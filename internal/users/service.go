package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	cost int
	// compared against when the username is unknown so both failure paths cost one bcrypt run
	dummyHash []byte
}

func NewService(r UserRepository) *Service {
	return NewServiceWithCost(r, bcrypt.DefaultCost)
}

// NewServiceWithCost lets tests use bcrypt.MinCost.
func NewServiceWithCost(r UserRepository, cost int) *Service {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	return &Service{repo: r, cost: cost, dummyHash: dummy}
}

// Register creates a local user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("register: %w: username and password are required", errs.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("register %q: %w", username, err)
	}
	return u, nil
}

// Authenticate verifies a local username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, errs.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if u.PasswordHash == "" {
		// Google-only account
		return nil, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errs.ErrInvalidCredentials
	}
	return u, nil
}

// FindOrCreateByGoogleID resolves the user for a provider profile id.
func (s *Service) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, fmt.Errorf("find or create: %w: empty profile id", errs.ErrProvider)
	}
	u, err := s.repo.FindOrCreateByGoogleID(ctx, googleID)
	if err != nil {
		return nil, fmt.Errorf("find or create google user: %w", err)
	}
	return u, nil
}

// GetByID loads a user by id hex. Malformed ids resolve to errs.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrNotFound
	}
	return s.repo.GetByID(ctx, oid)
}
