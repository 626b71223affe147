package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"

	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

func newAuth() (*AuthService, *mockUserRepo) {
	users := newMockUserRepo()
	return NewAuthService(users, testSecret, time.Hour, zerolog.Nop()), users
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FirstName: "Pat",
		LastName:  "Lee",
		Email:     "Pat@Example.com",
		Password:  "correct-horse",
		Role:      "Patient",
		Gender:    "Female",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "pat@example.com" || user.Gender != "female" {
		t.Errorf("expected normalised email and gender, got %s / %s", user.Email, user.Gender)
	}
	if user.Role != models.RolePatient || user.IsDoctor {
		t.Errorf("expected a plain patient, got role=%s isDoctor=%v", user.Role, user.IsDoctor)
	}

	session, err := svc.Login(ctx, "PAT@example.com ", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := utils.ValidateToken(session.Token, testSecret)
	if err != nil {
		t.Fatalf("token should validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RolePatient {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"admin role", func(in *RegisterInput) { in.Role = "Admin" }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"bad gender", func(in *RegisterInput) { in.Gender = "robot" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newAuth()
			in := validRegistration()
			tt.mutate(&in)
			if _, err := svc.Register(context.Background(), in); KindOf(err) != KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()
	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, validRegistration()); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_Doctor(t *testing.T) {
	svc, _ := newAuth()
	in := validRegistration()
	in.Role = "Doctor"
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !user.IsDoctor {
		t.Error("expected doctors to be flagged isDoctor")
	}
	doctors, err := svc.Doctors(context.Background())
	if err != nil {
		t.Fatalf("doctors: %v", err)
	}
	if len(doctors) != 1 || doctors[0].ID != user.ID {
		t.Errorf("expected the new doctor to be listed, got %v", doctors)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, users := newAuth()
	ctx := context.Background()
	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "pat@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if KindOf(ErrInvalidCredentials) != KindUnauthenticated {
		t.Error("expected invalid credentials to be an authentication failure")
	}

	users.err = errDatabaseDown
	if _, err := svc.Login(ctx, "pat@example.com", "correct-horse"); !errors.Is(err, errDatabaseDown) {
		t.Errorf("expected database error, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()
	user, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	profile, err := svc.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.FirstName != "Pat" {
		t.Errorf("expected Pat, got %s", profile.FirstName)
	}
	if _, err := svc.Profile(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
