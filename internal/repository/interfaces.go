package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotSupported is returned by operations a repository deliberately does not implement.
	ErrNotSupported = errors.New("operation not supported")
)

// Filter is a predicate over an entity's columns, e.g. Where("email = ?", e).
type Filter struct {
	Query string
	Args  []interface{}
}

func Where(query string, args ...interface{}) Filter {
	return Filter{Query: query, Args: args}
}

// Repository is the uniform CRUD contract shared by every entity store.
// Reads never return cached instances. Writes report true when at least one
// row was affected.
type Repository[T any] interface {
	GetOne(ctx context.Context, filter Filter) (*T, error)
	GetMany(ctx context.Context, filters ...Filter) ([]*T, error)
	InsertOne(ctx context.Context, entity *T) (*T, error)
	InsertMany(ctx context.Context, entities []*T) (bool, error)
	UpdateOne(ctx context.Context, entity *T) (bool, error)
	// UpdateMany is not supported and always returns ErrNotSupported.
	UpdateMany(ctx context.Context, entities []*T) (bool, error)
	DeleteOne(ctx context.Context, entity *T) (bool, error)
	DeleteMany(ctx context.Context, entities []*T) (bool, error)
}

type UserRepository interface {
	Repository[domain.User]
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ReadBookRepository interface {
	Repository[domain.ReadBook]
	GetByIDForUser(ctx context.Context, id int64, userID string) (*domain.ReadBook, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.ReadBook, error)
}

type UserTokenRepository interface {
	Repository[domain.UserToken]
	// GetActive finds an unconsumed, unexpired token by hash for the given user and purpose.
	GetActive(ctx context.Context, userID string, purpose domain.TokenPurpose, tokenHash string, now time.Time) (*domain.UserToken, error)
	// Consume marks the token used. It reports false if another request consumed it first.
	Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ConsumeAllForUser(ctx context.Context, userID string, purpose domain.TokenPurpose, now time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Repositories struct {
	User      UserRepository
	ReadBook  ReadBookRepository
	UserToken UserTokenRepository
}
