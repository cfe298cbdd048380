package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vidora/vidora-backend/internal/apperr"
)

func newTestAuthService() (*AuthService, *inMemoryUserRepo) {
	repo := newInMemoryUserRepo()
	tokens := newTestTokenService(repo)
	return NewAuthService(repo, tokens), repo
}

func registerAlice(t *testing.T, svc *AuthService) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "Alice",
		Email:    "alice@example.com",
		FullName: "Alice A.",
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	svc, _ := newTestAuthService()
	_, err := svc.Register(context.Background(), RegisterInput{Username: "bob"})
	if !errors.Is(err, apperr.Validation("")) {
		t.Fatalf("expected Validation error, got %v", err)
	}
}

func TestRegisterLowercasesUsernameAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestAuthService()
	registerAlice(t, svc)

	profile, err := svc.Login(context.Background(), LoginInput{Identifier: "ALICE", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("login with mixed-case handle: %v", err)
	}
	if profile.User.Username != "alice" {
		t.Fatalf("username stored as %q, want lowercase", profile.User.Username)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "pw123456",
	})
	if !errors.Is(err, apperr.Conflict("")) {
		t.Fatalf("expected Conflict for duplicate username, got %v", err)
	}
	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "alice2", Email: "alice@example.com", Password: "pw123456",
	})
	if !errors.Is(err, apperr.Conflict("")) {
		t.Fatalf("expected Conflict for duplicate email, got %v", err)
	}
}

func TestLoginWrongPasswordIssuesNothing(t *testing.T) {
	svc, repo := newTestAuthService()
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "wrong"})
	if !errors.Is(err, apperr.InvalidCredential("")) {
		t.Fatalf("expected InvalidCredential, got %v", err)
	}
	u, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if u.RefreshToken != nil {
		t.Fatal("store must be untouched after failed login")
	}
}

func TestLoginUnknownUserIsNotFound(t *testing.T) {
	svc, _ := newTestAuthService()
	_, err := svc.Login(context.Background(), LoginInput{Identifier: "ghost", Password: "pw"})
	if !errors.Is(err, apperr.NotFound("")) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestLoginByEmailWorks(t *testing.T) {
	svc, _ := newTestAuthService()
	registerAlice(t, svc)
	res, err := svc.Login(context.Background(), LoginInput{Identifier: "alice@example.com", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if res.Pair.AccessToken == "" || res.Pair.RefreshToken == "" {
		t.Fatal("expected a full credential pair")
	}
}

func TestLoginThenRefreshRotates(t *testing.T) {
	svc, _ := newTestAuthService()
	registerAlice(t, svc)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	res2, err := svc.Refresh(context.Background(), res.Pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res2.Pair.RefreshToken == res.Pair.RefreshToken {
		t.Fatal("refresh must rotate the refresh token")
	}
	_, err = svc.Refresh(context.Background(), res.Pair.RefreshToken)
	if !errors.Is(err, apperr.RefreshTokenMismatch("")) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	svc, _ := newTestAuthService()
	registerAlice(t, svc)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), res.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = svc.Refresh(context.Background(), res.Pair.RefreshToken)
	if !errors.Is(err, apperr.RefreshTokenMismatch("")) {
		t.Fatalf("expected RefreshTokenMismatch after logout, got %v", err)
	}
}

func TestChangePasswordEndsSession(t *testing.T) {
	svc, _ := newTestAuthService()
	registerAlice(t, svc)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	err = svc.ChangePassword(context.Background(), res.User.ID, "wrong", "next-password")
	if !errors.Is(err, apperr.InvalidCredential("")) {
		t.Fatalf("expected InvalidCredential for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), res.User.ID, "correct horse battery staple", "next-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	_, err = svc.Refresh(context.Background(), res.Pair.RefreshToken)
	if !errors.Is(err, apperr.RefreshTokenMismatch("")) {
		t.Fatalf("expected RefreshTokenMismatch after password change, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "next-password"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
