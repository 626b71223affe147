package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/repository"
	"doctor-appointment-server/internal/utils"

	"github.com/rs/zerolog"
)

// RegisterInput is a self-service sign-up. Admin accounts are never created here.
type RegisterInput struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,min=8,max=72"`
	Role      string `validate:"required,oneof=Patient Doctor"`
	Age       *int   `validate:"omitempty,gt=0,lt=150"`
	Gender    string `validate:"omitempty,oneof=male female other"`
	Mobile    string `validate:"omitempty,max=20"`
}

// Session is what a successful login hands back.
type Session struct {
	Token string               `json:"token"`
	User  models.UserSanitized `json:"user"`
}

// AuthService covers registration, login and profile reads.
type AuthService struct {
	users    repository.UserRepository
	secret   string
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.UserSanitized, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	if err := utils.Validate(in); err != nil {
		return nil, ValidationError(utils.FormatValidationError(err))
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	role := models.Role(in.Role)
	user := &models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Role:      role,
		IsDoctor:  role == models.RoleDoctor,
		Age:       in.Age,
		Gender:    in.Gender,
		Mobile:    strings.TrimSpace(in.Mobile),
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	sanitized := user.Sanitize()
	return &sanitized, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user.Sanitize()}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.UserSanitized, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// Doctors lists everyone a patient can book with.
func (s *AuthService) Doctors(ctx context.Context) ([]models.UserSanitized, error) {
	doctors, err := s.users.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	out := make([]models.UserSanitized, len(doctors))
	for i := range doctors {
		out[i] = doctors[i].Sanitize()
	}
	return out, nil
}
