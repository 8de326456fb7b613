// Package secrets lists disclosed secrets and records new ones.
package secrets

import (
	"context"
	"fmt"

	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"github.com/secretwall/secretwall/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the slice of the user store the secret service needs.
type Store interface {
	ListWithSecret(ctx context.Context) ([]*models.User, error)
	SetSecret(ctx context.Context, id primitive.ObjectID, secret string) error
}

// Disclosure is one entry of the shared list.
type Disclosure struct {
	Author string
	Secret string
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// ListDisclosed returns every non-empty secret in store order.
func (s *Service) ListDisclosed(ctx context.Context) ([]Disclosure, error) {
	list, err := s.store.ListWithSecret(ctx)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	out := make([]Disclosure, 0, len(list))
	for _, u := range list {
		if !u.HasSecret() {
			continue
		}
		out = append(out, Disclosure{Author: u.DisplayName(), Secret: u.Secret})
	}
	return out, nil
}

// SetSecret overwrites the secret of userID. Content is stored as given.
func (s *Service) SetSecret(ctx context.Context, userID string, text string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.ErrNotFound
	}
	if err := s.store.SetSecret(ctx, oid, text); err != nil {
		return fmt.Errorf("set secret for %s: %w", userID, err)
	}
	metrics.SecretsSubmitted.Inc()
	return nil
}
