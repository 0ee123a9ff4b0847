package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/dom/reader/internal/auth"
	"github.com/dom/reader/internal/config"
	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/email"
	"github.com/dom/reader/internal/identity"
	"github.com/dom/reader/internal/repository"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	hasher   identity.PasswordHasher
	codes    *identity.CodeProvider
	tokens   *auth.TokenIssuer
	mailer   *email.Dispatcher
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher identity.PasswordHasher,
	codes *identity.CodeProvider,
	tokens *auth.TokenIssuer,
	mailer *email.Dispatcher,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		codes:    codes,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Email         string
	Password      string
	TermsAgreedTo bool
}

type LoginInput struct {
	Email    string
	Password string
}

type ResetPasswordInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Code            string
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	emailAddr := strings.TrimSpace(input.Email)
	if emailAddr == "" {
		return nil, ErrEmailRequired
	}

	// Check if email exists
	existing, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if !input.TermsAgreedTo {
		return nil, ErrTermsRequired
	}

	if err := validateCredentials(emailAddr, input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:                        uuid.New().String(),
		Email:                     emailAddr,
		NormalizedEmail:           domain.NormalizeEmail(emailAddr),
		PasswordHash:              hashedPassword,
		JoinedOn:                  now,
		TermsAgreedTo:             true,
		TermsAgreedOn:             now,
		PasswordLastChanged:       now,
		EmailNotificationsEnabled: true,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	user.SetRoles(domain.DefaultRoles...)

	if _, err := s.userRepo.InsertOne(ctx, user); err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	result, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	// Registration is complete without the confirmation email.
	if link, err := s.confirmationLink(ctx, user); err != nil {
		log.Printf("ERROR [auth.Register] userID=%s failed to create confirmation code: %v", user.ID, err)
	} else {
		s.mailer.Go(ctx, email.ConfirmEmail(s.cfg.Email.FromAddress, user.Email, link))
	}

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, input.Password); err != nil {
		if !errors.Is(err, identity.ErrPasswordMismatch) {
			log.Printf("ERROR [auth.Login] userID=%s password check failed: %v", user.ID, err)
		}
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// ForgotPassword emails a reset link. The user cannot continue without the
// email, so a delivery failure is returned.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	if strings.TrimSpace(emailAddr) == "" {
		return ErrEmailRequired
	}

	user, err := s.findByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	code, err := s.codes.Generate(ctx, user.ID, domain.TokenPurposePasswordReset)
	if err != nil {
		return err
	}

	link := s.link("/account/ResetPassword", url.Values{"code": {identity.EncodeCode(code)}})
	if err := s.mailer.Send(ctx, email.ForgotPassword(s.cfg.Email.FromAddress, user.Email, link)); err != nil {
		log.Printf("ERROR [auth.ForgotPassword] userID=%s: %v", user.ID, err)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	return nil
}

// ResendEmailConfirmation always issues a fresh code, whether or not the
// address is already confirmed.
func (s *AuthService) ResendEmailConfirmation(ctx context.Context, emailAddr string) error {
	if strings.TrimSpace(emailAddr) == "" {
		return ErrEmailRequired
	}

	user, err := s.findByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	link, err := s.confirmationLink(ctx, user)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, email.ResendConfirmation(s.cfg.Email.FromAddress, user.Email, link)); err != nil {
		log.Printf("ERROR [auth.ResendEmailConfirmation] userID=%s: %v", user.ID, err)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	return nil
}

// ResetPassword checks the whole input before touching storage.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	switch {
	case strings.TrimSpace(input.Email) == "":
		return ErrEmailRequired
	case input.Password == "":
		return ErrPasswordRequired
	case input.Code == "":
		return ErrCodeRequired
	case input.Password != input.ConfirmPassword:
		return ErrPasswordsDiffer
	}
	if err := validatePassword(input.Password); err != nil {
		return err
	}

	user, err := s.findByEmail(ctx, input.Email)
	if err != nil {
		return err
	}

	if err := s.redeem(ctx, user.ID, domain.TokenPurposePasswordReset, input.Code); err != nil {
		return err
	}

	if err := s.setPassword(ctx, user, input.Password); err != nil {
		return err
	}

	// Any other reset links in flight die with this one.
	if err := s.codes.RevokeAll(ctx, user.ID, domain.TokenPurposePasswordReset); err != nil {
		log.Printf("ERROR [auth.ResetPassword] userID=%s failed to revoke reset codes: %v", user.ID, err)
	}

	s.notifyPasswordChanged(ctx, user)
	return nil
}

func (s *AuthService) ConfirmEmail(ctx context.Context, userID, code string) error {
	if code == "" {
		return ErrCodeRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.redeem(ctx, user.ID, domain.TokenPurposeEmailConfirmation, code); err != nil {
		return err
	}

	user.EmailConfirmed = true
	user.UpdatedAt = s.now()
	if _, err := s.userRepo.UpdateOne(ctx, user); err != nil {
		return err
	}

	return nil
}

func (s *AuthService) ValidateToken(tokenString string) (*auth.Claims, error) {
	return s.tokens.Validate(tokenString)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email}, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) findByEmail(ctx context.Context, emailAddr string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) confirmationLink(ctx context.Context, user *domain.User) (string, error) {
	code, err := s.codes.Generate(ctx, user.ID, domain.TokenPurposeEmailConfirmation)
	if err != nil {
		return "", err
	}
	return s.link("/account/confirmemail", url.Values{
		"userId": {user.ID},
		"code":   {identity.EncodeCode(code)},
	}), nil
}

func (s *AuthService) link(path string, query url.Values) string {
	return strings.TrimRight(s.cfg.AppBaseURL, "/") + path + "?" + query.Encode()
}

// redeem decodes a link-encoded code and spends it.
func (s *AuthService) redeem(ctx context.Context, userID string, purpose domain.TokenPurpose, encoded string) error {
	code, err := identity.DecodeCode(encoded)
	if err != nil {
		return ErrInvalidCode
	}

	if err := s.codes.Redeem(ctx, userID, purpose, code); err != nil {
		if errors.Is(err, identity.ErrInvalidCode) {
			return ErrInvalidCode
		}
		return err
	}
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	hashed, err := s.hasher.Hash(password)
	if errors.Is(err, identity.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password: %v", ErrInvalidInput, err)
	}
	return hashed, err
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hashedPassword, err := s.hash(password)
	if err != nil {
		return err
	}

	now := s.now()
	user.PasswordHash = hashedPassword
	user.PasswordLastChanged = now
	user.UpdatedAt = now

	if _, err := s.userRepo.UpdateOne(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// notifyPasswordChanged runs after the change is stored; the change stands
// even when the notice cannot be delivered.
func (s *AuthService) notifyPasswordChanged(ctx context.Context, user *domain.User) {
	if err := s.mailer.Send(ctx, email.PasswordChanged(s.cfg.Email.FromAddress, user.Email)); err != nil {
		log.Printf("ERROR [auth.notifyPasswordChanged] userID=%s: %v", user.ID, err)
	}
}

func validateCredentials(emailAddr, password string) error {
	err := validation.Validate(emailAddr, validation.Required, validation.Length(3, 254), is.Email)
	if err != nil {
		return fmt.Errorf("%w: email: %v", ErrInvalidInput, err)
	}
	return validatePassword(password)
}

// maxPasswordBytes is the most bcrypt will hash; longer input is rejected
// rather than truncated.
const maxPasswordBytes = 72

func validatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required,
		validation.Length(8, 0),
		validation.By(passwordFitsHash),
	)
	if err != nil {
		return fmt.Errorf("%w: password: %v", ErrInvalidInput, err)
	}
	return nil
}

func passwordFitsHash(value interface{}) error {
	if len(value.(string)) > maxPasswordBytes {
		return fmt.Errorf("the length must be no more than %d bytes", maxPasswordBytes)
	}
	return nil
}
