package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewStore(client, "ases")
}

func saveTestSession(t *testing.T, store *Store, sessionID, userID, tenantID string) *Session {
	t.Helper()

	var hash [32]byte
	copy(hash[:], sessionID)
	sess := New(sessionID, userID, tenantID, hash, "cli", "203.0.113.9", modelNow(), 24*time.Hour)
	if err := store.Save(context.Background(), sess, 24*time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return sess
}

func TestStoreSaveAndGet(t *testing.T) {
	_, store := newTestStore(t)
	sess := saveTestSession(t, store, "s1", "u1", "acme")

	got, err := store.Get(context.Background(), "acme", "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "u1" || got.TenantID != "acme" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.TokenHash != sess.TokenHash {
		t.Fatal("token hash did not round-trip")
	}

	if _, err := store.Get(context.Background(), "acme", "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), "globex", "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for wrong tenant, got %v", err)
	}
}

func TestStoreUpdatePersistsRevocation(t *testing.T) {
	_, store := newTestStore(t)
	sess := saveTestSession(t, store, "s1", "u1", "acme")

	sess.Revoke(modelNow().Add(time.Hour), "logout")
	if err := store.Update(context.Background(), sess); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(context.Background(), "acme", "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Revoked || got.RevokeReason != "logout" {
		t.Fatalf("expected revocation state to persist, got %+v", got)
	}
}

func TestStoreDeleteRemovesIndexAndCounter(t *testing.T) {
	_, store := newTestStore(t)
	saveTestSession(t, store, "s1", "u1", "acme")
	saveTestSession(t, store, "s2", "u1", "acme")

	count, err := store.TenantSessionCount(context.Background(), "acme")
	if err != nil {
		t.Fatalf("TenantSessionCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 tracked sessions, got %d", count)
	}

	if err := store.Delete(context.Background(), "acme", "u1", "s1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(context.Background(), "acme", "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}

	ids, err := store.SessionIDsForUser(context.Background(), "acme", "u1")
	if err != nil {
		t.Fatalf("SessionIDsForUser failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "s2" {
		t.Fatalf("expected only s2 in the user index, got %v", ids)
	}

	count, err = store.TenantSessionCount(context.Background(), "acme")
	if err != nil {
		t.Fatalf("TenantSessionCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter 1 after delete, got %d", count)
	}
}

func TestStoreSessionsForUser(t *testing.T) {
	_, store := newTestStore(t)
	saveTestSession(t, store, "s1", "u1", "acme")
	saveTestSession(t, store, "s2", "u1", "acme")
	saveTestSession(t, store, "s3", "u2", "acme")

	sessions, err := store.SessionsForUser(context.Background(), "acme", "u1")
	if err != nil {
		t.Fatalf("SessionsForUser failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions for u1, got %d", len(sessions))
	}
	for _, sess := range sessions {
		if sess.UserID != "u1" {
			t.Fatalf("unexpected session owner: %+v", sess)
		}
	}
}

func TestStoreDeleteAllForUser(t *testing.T) {
	_, store := newTestStore(t)
	saveTestSession(t, store, "s1", "u1", "acme")
	saveTestSession(t, store, "s2", "u1", "acme")
	other := saveTestSession(t, store, "s3", "u2", "acme")

	if err := store.DeleteAllForUser(context.Background(), "acme", "u1"); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	ids, err := store.SessionIDsForUser(context.Background(), "acme", "u1")
	if err != nil {
		t.Fatalf("SessionIDsForUser failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty index after delete-all, got %v", ids)
	}

	got, err := store.Get(context.Background(), "acme", other.SessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "u2" {
		t.Fatal("delete-all must not touch other users' sessions")
	}

	count, err := store.TenantSessionCount(context.Background(), "acme")
	if err != nil {
		t.Fatalf("TenantSessionCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter 1 after delete-all, got %d", count)
	}
}

func TestStoreRecordExpiresWithTTL(t *testing.T) {
	mr, store := newTestStore(t)
	saveTestSession(t, store, "s1", "u1", "acme")

	mr.FastForward(25 * time.Hour)

	if _, err := store.Get(context.Background(), "acme", "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after TTL, got %v", err)
	}
}
