package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billfold/internal/auth/domain"
	"github.com/smallbiznis/billfold/internal/auth/repository"
	"github.com/smallbiznis/billfold/internal/config"
	"github.com/smallbiznis/billfold/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, ttlHours int) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.User{}, &domain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		Cfg:   config.Config{SessionTTLHours: ttlHours},
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := newTestService(t, 24)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "Owner@Example.COM",
		Password: "hunter2!",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "hunter2!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected a session token")
	}
	if !result.ExpiresAt.After(time.Now().UTC()) {
		t.Fatalf("expected a future expiry, got %v", result.ExpiresAt)
	}

	authed, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, 24)

	if _, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "owner@example.com", Password: "hunter2!"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "OWNER@example.com", Password: "other"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, 24)

	if _, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "owner@example.com", Password: "hunter2!"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "owner@example.com", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, 24)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "anything"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t, 24)

	if _, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "owner@example.com", Password: "hunter2!"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	result, err := svc.Login(context.Background(), domain.LoginRequest{Email: "owner@example.com", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), result.RawToken)
	if !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc, conn := newTestService(t, 24)

	if _, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{Email: "owner@example.com", Password: "hunter2!"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	result, err := svc.Login(context.Background(), domain.LoginRequest{Email: "owner@example.com", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	if err := conn.Model(&domain.Session{}).Where("user_id = ?", result.User.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), result.RawToken)
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	svc, _ := newTestService(t, 24)

	_, err := svc.Authenticate(context.Background(), "deadbeef")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
