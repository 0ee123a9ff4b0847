package postgres

import (
	"context"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userTokenRepository struct {
	gormRepository[domain.UserToken]
}

func NewUserTokenRepository(db *gorm.DB) *userTokenRepository {
	return &userTokenRepository{gormRepository: newGormRepository[domain.UserToken](db)}
}

func (r *userTokenRepository) GetActive(ctx context.Context, userID string, purpose domain.TokenPurpose, tokenHash string, now time.Time) (*domain.UserToken, error) {
	return r.GetOne(ctx, repository.Where(
		"user_id = ? AND purpose = ? AND token_hash = ? AND consumed_at IS NULL AND expires_at > ?",
		userID, purpose, tokenHash, now,
	))
}

func (r *userTokenRepository) Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	// The consumed_at guard makes concurrent redemptions race on the row;
	// only one update can match.
	result := r.db.WithContext(ctx).
		Model(&domain.UserToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected >= 1, nil
}

func (r *userTokenRepository) ConsumeAllForUser(ctx context.Context, userID string, purpose domain.TokenPurpose, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.UserToken{}).
		Where("user_id = ? AND purpose = ? AND consumed_at IS NULL", userID, purpose).
		Update("consumed_at", now).Error
}

func (r *userTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ? OR consumed_at IS NOT NULL", before).
		Delete(&domain.UserToken{})
	return result.RowsAffected, result.Error
}
