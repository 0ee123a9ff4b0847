package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/identity"
)

// UserService covers account changes made by an authenticated user.
type UserService struct {
	auth   *AuthService
	hasher identity.PasswordHasher
	now    func() time.Time
}

func NewUserService(authService *AuthService, hasher identity.PasswordHasher) *UserService {
	return &UserService{
		auth:   authService,
		hasher: hasher,
		now:    time.Now,
	}
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.auth.GetUserByID(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if input.OldPassword == "" || input.NewPassword == "" {
		return ErrPasswordRequired
	}
	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}

	user, err := s.auth.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Verify(user.PasswordHash, input.OldPassword); err != nil {
		if errors.Is(err, identity.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := s.auth.setPassword(ctx, user, input.NewPassword); err != nil {
		return err
	}

	s.auth.notifyPasswordChanged(ctx, user)
	return nil
}

func (s *UserService) SetEmailNotifications(ctx context.Context, userID string, enabled bool) (*domain.User, error) {
	user, err := s.auth.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.EmailNotificationsEnabled = enabled
	user.UpdatedAt = s.now()
	if _, err := s.auth.userRepo.UpdateOne(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
