package sessions

import (
	"context"
	"testing"
	"time"
)

func TestCreateAndResolveSession(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	tok, err := svc.CreateSession(ctx, "user-1", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(tok) != 64 {
		t.Fatalf("expected 64 hex chars, got %q", tok)
	}
	sess, err := svc.Resolve(ctx, tok)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if sess == nil || sess.UserID != "user-1" {
		t.Fatalf("unexpected session: %v", sess)
	}
	if err := svc.DeleteSession(ctx, tok); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	sess2, _ := svc.Resolve(ctx, tok)
	if sess2 != nil {
		t.Fatalf("expected session removed")
	}
}

func TestResolve_ExpiredSessionIsDropped(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	tok, err := svc.CreateSession(ctx, "user-2", time.Minute)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	svc.now = func() time.Time { return start.Add(2 * time.Minute) }
	sess, err := svc.Resolve(ctx, tok)
	if err != nil || sess != nil {
		t.Fatalf("expected expired session to resolve to nil, got %v err=%v", sess, err)
	}
	if raw, _ := repo.GetByToken(ctx, tok); raw != nil {
		t.Fatalf("expected expired session to be deleted from the repository")
	}
}

func TestCreateSession_RequiresUser(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.CreateSession(context.Background(), "", time.Hour); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if s, err := svc.Resolve(context.Background(), ""); s != nil || err != nil {
		t.Fatalf("empty token must resolve to nil, got %v err=%v", s, err)
	}
}
