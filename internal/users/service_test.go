package users

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/auth"
	"github.com/danghoang/sportygear-backend/pkg/config"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

type sessionStub struct {
	mu      sync.Mutex
	refresh map[string]string
}

func newSessionStub() *sessionStub {
	return &sessionStub{refresh: map[string]string{}}
}

func (s *sessionStub) Generate(ctx context.Context, accessID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "refresh-" + accessID
	s.refresh[accessID] = token
	return token, nil
}

func (s *sessionStub) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.refresh[oldAccessID]
	if !ok || stored != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	delete(s.refresh, oldAccessID)
	newID := uuid.NewString()
	s.refresh[newID] = "refresh-" + newID
	return newID, s.refresh[newID], nil
}

func (s *sessionStub) Revoke(ctx context.Context, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, accessID)
	return nil
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "sportygear", ExpirationMinutes: 15, SessionTTLMinutes: 60}
}

func passwordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func newService(t *testing.T) (Service, *gorm.DB, *sessionStub) {
	t.Helper()

	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sessions := newSessionStub()
	svc, err := NewService(NewRepository(db), sessions, jwtConfig(), passwordConfig())
	if err != nil {
		t.Fatalf("users service: %v", err)
	}
	return svc, db, sessions
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:    "linh@example.com",
		Password: "correct horse battery",
		Name:     "Linh",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if session.User.Role != enums.UserRoleCustomer {
		t.Fatalf("role = %q, want customer", session.User.Role)
	}

	// the stored hash never equals the raw password
	var stored models.User
	if err := db.First(&stored, "email = ?", "linh@example.com").Error; err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}

	login, err := svc.Login(ctx, "linh@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := auth.ParseAccessToken(jwtConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != stored.ID {
		t.Fatalf("token user = %s, want %s", claims.UserID, stored.ID)
	}
}

func TestRegisterNormalizesEmailCase(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	input := registerInput()
	input.Email = "Linh@Example.COM"
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "linh@example.com", "correct horse battery"); err != nil {
		t.Fatalf("login with lowered email: %v", err)
	}

	_, err := svc.Register(ctx, registerInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		edit  func(*RegisterInput)
	}{
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"blank name", func(in *RegisterInput) { in.Name = "  " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := registerInput()
			tc.edit(&input)
			_, err := svc.Register(ctx, input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, "linh@example.com", "wrong password!")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	// unknown emails get the same answer as bad passwords
	_, err = svc.Login(ctx, "nobody@example.com", "whatever pass")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := auth.ParseAccessToken(jwtConfig(), session.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	payload := auth.AccessTokenPayload{UserID: claims.UserID, Role: claims.Role, JTI: claims.ID}
	renewed, err := svc.Refresh(ctx, payload, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renewed.RefreshToken == session.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// the old pair is burned
	if _, err := svc.Refresh(ctx, payload, session.RefreshToken); err == nil {
		t.Fatal("expected reuse of the old refresh token to fail")
	}

	// the rotated one still works
	newClaims, err := auth.ParseAccessToken(jwtConfig(), renewed.AccessToken)
	if err != nil {
		t.Fatalf("parse renewed token: %v", err)
	}
	if _, ok := sessions.refresh[newClaims.ID]; !ok {
		t.Fatal("rotated session not stored")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := auth.ParseAccessToken(jwtConfig(), session.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.refresh[claims.ID]; ok {
		t.Fatal("session survived logout")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "0900000000"
	name := "Linh Nguyen"
	updated, err := svc.UpdateProfile(ctx, session.User.ID, UpdateProfileInput{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Linh Nguyen" || updated.Phone == nil || *updated.Phone != "0900000000" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	blank := "   "
	_, err = svc.UpdateProfile(ctx, session.User.ID, UpdateProfileInput{Name: &blank})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}
