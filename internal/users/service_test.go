package users

import (
	"context"
	"testing"

	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewServiceWithCost(repo, bcrypt.MinCost), repo
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "pw123")
	require.NoError(t, err)
	require.False(t, u.ID.IsZero(), "expected repository to assign an ID")
	require.Equal(t, "alice", u.Username)
	require.NotEqual(t, "pw123", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123")))
	require.Equal(t, 1, repo.Len())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	require.ErrorIs(t, err, errs.ErrDuplicateUser)
	require.Equal(t, 1, repo.Len())
}

func TestRegister_RejectsEmptyFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "  ", "pw")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = svc.Register(ctx, "bob", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	pairs := map[string]string{"alice": "pw123", "bob": "hunter2", "carol": "correct horse"}
	for name, pw := range pairs {
		_, err := svc.Register(ctx, name, pw)
		require.NoError(t, err)
	}
	for name, pw := range pairs {
		u, err := svc.Authenticate(ctx, name, pw)
		require.NoError(t, err, name)
		require.Equal(t, name, u.Username)

		_, err = svc.Authenticate(ctx, name, pw+"x")
		require.ErrorIs(t, err, errs.ErrInvalidCredentials, name)
	}

	_, err := svc.Authenticate(ctx, "nobody", "pw")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestAuthenticate_GoogleOnlyAccountHasNoPassword(t *testing.T) {
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(context.Background(), &models.User{Username: "g", GoogleID: "g-1"}))
	svc := NewServiceWithCost(repo, bcrypt.MinCost)

	_, err := svc.Authenticate(context.Background(), "g", "")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestFindOrCreateByGoogleID_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u1, err := svc.FindOrCreateByGoogleID(ctx, "google-123")
	require.NoError(t, err)
	u2, err := svc.FindOrCreateByGoogleID(ctx, "google-123")
	require.NoError(t, err)
	require.Equal(t, u1.ID, u2.ID)
	require.Equal(t, 1, repo.Len())

	u3, err := svc.FindOrCreateByGoogleID(ctx, "google-456")
	require.NoError(t, err)
	require.NotEqual(t, u1.ID, u3.ID)

	_, err = svc.FindOrCreateByGoogleID(ctx, "")
	require.ErrorIs(t, err, errs.ErrProvider)
}

func TestFindOrCreateByGoogleID_Timestamps(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.FindOrCreateByGoogleID(ctx, "sub-123")
	require.NoError(t, err)
	require.Equal(t, "sub-123", u.GoogleID)
	require.False(t, u.CreatedAt.IsZero())
	require.False(t, u.CreatedAt.After(u.UpdatedAt))
}

func TestGetByID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "dave", "pw")
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "dave", got.Username)

	_, err = svc.GetByID(ctx, "not-hex")
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = svc.GetByID(ctx, primitive.NewObjectID().Hex())
	require.ErrorIs(t, err, errs.ErrNotFound)
}
