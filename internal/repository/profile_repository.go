package repository

import (
	"context"
	"errors"

	"sandy/internal/domain/profile"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]profile.UserProfile, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (profile.UserProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (profile.UserProfile, error)
	Create(ctx context.Context, p *profile.UserProfile) error
	Update(ctx context.Context, p *profile.UserProfile) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type GormProfileRepository struct {
	store ownedStore[profile.UserProfile]
}

var _ ProfileRepository = (*GormProfileRepository)(nil)

func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{store: ownedStore[profile.UserProfile]{db: db, order: "created_at DESC"}}
}

// ListByUser returns at most one profile; the table holds one row per user.
func (r *GormProfileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]profile.UserProfile, error) {
	items, _, err := r.store.list(ctx, userID, Page{Limit: MaxPageLimit})
	return items, err
}

func (r *GormProfileRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (profile.UserProfile, error) {
	return r.store.get(ctx, userID, id)
}

func (r *GormProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.UserProfile, error) {
	var out profile.UserProfile
	err := r.store.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, ErrNotFound
		}
		return out, err
	}
	return out, nil
}

func (r *GormProfileRepository) Create(ctx context.Context, p *profile.UserProfile) error {
	return r.store.create(ctx, p)
}

func (r *GormProfileRepository) Update(ctx context.Context, p *profile.UserProfile) error {
	return r.store.save(ctx, p)
}

func (r *GormProfileRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.store.delete(ctx, userID, id)
}
