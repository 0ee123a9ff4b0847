package postgres

import (
	"context"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	gormRepository[domain.User]
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{gormRepository: newGormRepository[domain.User](db)}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.GetOne(ctx, repository.Where("id = ?", id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.GetOne(ctx, repository.Where("normalized_email = ?", domain.NormalizeEmail(email)))
}
