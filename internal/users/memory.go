package users

import (
	"context"
	"sync"
	"time"

	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-process UserRepository used by tests and by the
// memory store driver in development. Records are copied in and out so
// callers never share state with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	byID  map[primitive.ObjectID]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[primitive.ObjectID]*models.User)}
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Username != "" && m.findLocked(func(x *models.User) bool { return x.Username == u.Username }) != nil {
		return errs.ErrDuplicateUser
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	m.insertLocked(u)
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u := m.findLocked(func(x *models.User) bool { return x.Username == username })
	if u == nil {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findLocked(func(x *models.User) bool { return x.GoogleID == googleID }); u != nil {
		cp := *u
		return &cp, nil
	}
	now := time.Now().UTC()
	u := &models.User{ID: primitive.NewObjectID(), GoogleID: googleID, CreatedAt: now, UpdatedAt: now}
	m.insertLocked(u)
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) ListWithSecret(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.User{}
	for _, id := range m.order {
		if u := m.byID[id]; u.HasSecret() {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) SetSecret(ctx context.Context, id primitive.ObjectID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.Secret = secret
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *MemoryRepository) insertLocked(u *models.User) {
	cp := *u
	m.byID[u.ID] = &cp
	m.order = append(m.order, u.ID)
}

func (m *MemoryRepository) findLocked(match func(*models.User) bool) *models.User {
	for _, id := range m.order {
		if u := m.byID[id]; match(u) {
			return u
		}
	}
	return nil
}
