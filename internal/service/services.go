package service

import (
	"github.com/dom/reader/internal/auth"
	"github.com/dom/reader/internal/config"
	"github.com/dom/reader/internal/email"
	"github.com/dom/reader/internal/identity"
	"github.com/dom/reader/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type Services struct {
	Auth       *AuthService
	User       *UserService
	ReadBook   *ReadBookService
	BookSearch *BookSearchService
	Codes      *identity.CodeProvider
}

func NewServices(repos *repository.Repositories, cfg *config.Config, mailer *email.Dispatcher) (*Services, error) {
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   []byte(cfg.JWT.Secret),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.TokenTTL(),
	})
	if err != nil {
		return nil, err
	}

	hasher := identity.NewBcryptHasher(bcrypt.DefaultCost)
	codes := identity.NewCodeProvider(repos.UserToken, cfg.Codes.EmailConfirmationTTL, cfg.Codes.PasswordResetTTL)
	authService := NewAuthService(repos.User, hasher, codes, tokens, mailer, cfg)

	return &Services{
		Auth:       authService,
		User:       NewUserService(authService, hasher),
		ReadBook:   NewReadBookService(repos.ReadBook),
		BookSearch: NewBookSearchService(cfg.GoogleBooks),
		Codes:      codes,
	}, nil
}
