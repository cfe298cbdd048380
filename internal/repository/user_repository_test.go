package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/vidora/vidora-backend/internal/domain"
)

func seedUser(t *testing.T, repo UserRepository, username, email string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: email, PasswordHash: "hash"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func TestUserRepositoryCreateLowercasesUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := &domain.User{Username: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("username not lowercased: %q", u.Username)
	}
	found, err := repo.FindByUsername(context.Background(), "ALICE")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if found.ID != u.ID {
		t.Fatal("lookup must be case-insensitive")
	}
}

func TestUserRepositoryFindByIdentity(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := seedUser(t, repo, "bob", "bob@example.com")

	byHandle, err := repo.FindByIdentity(context.Background(), "Bob")
	if err != nil || byHandle.ID != u.ID {
		t.Fatalf("find by handle: %v, %+v", err, byHandle)
	}
	byEmail, err := repo.FindByIdentity(context.Background(), "bob@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("find by email: %v, %+v", err, byEmail)
	}
	if _, err := repo.FindByIdentity(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryProjectionOmitsSecrets(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := seedUser(t, repo, "carol", "carol@example.com")
	if err := repo.PersistRefreshToken(context.Background(), u.ID, strPtr("refresh-value")); err != nil {
		t.Fatalf("persist refresh token: %v", err)
	}

	projected, err := repo.FindByIDProjected(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("projected find: %v", err)
	}
	if projected.PasswordHash != "" {
		t.Fatal("projection must omit the password hash")
	}
	if projected.RefreshToken != nil {
		t.Fatal("projection must omit the refresh token")
	}
}

func TestUserRepositoryPersistRefreshTokenOverwritesAndClears(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := seedUser(t, repo, "dave", "dave@example.com")

	if err := repo.PersistRefreshToken(context.Background(), u.ID, strPtr("first")); err != nil {
		t.Fatalf("persist first: %v", err)
	}
	if err := repo.PersistRefreshToken(context.Background(), u.ID, strPtr("second")); err != nil {
		t.Fatalf("persist second: %v", err)
	}
	got, err := repo.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.RefreshToken == nil || *got.RefreshToken != "second" {
		t.Fatalf("expected second token stored, got %v", got.RefreshToken)
	}

	if err := repo.PersistRefreshToken(context.Background(), u.ID, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = repo.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find after clear: %v", err)
	}
	if got.RefreshToken != nil {
		t.Fatalf("expected cleared token, got %v", *got.RefreshToken)
	}

	if err := repo.PersistRefreshToken(context.Background(), 9999, strPtr("x")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown user, got %v", err)
	}
}

func TestUserRepositoryUpdatePasswordClearsRefreshToken(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	u := seedUser(t, repo, "erin", "erin@example.com")
	if err := repo.PersistRefreshToken(context.Background(), u.ID, strPtr("session")); err != nil {
		t.Fatalf("persist: %v", err)
	}

	if err := repo.UpdatePassword(context.Background(), u.ID, "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, err := repo.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PasswordHash != "new-hash" {
		t.Fatalf("hash not updated: %q", got.PasswordHash)
	}
	if got.RefreshToken != nil {
		t.Fatal("password change must clear the stored refresh token")
	}
}
