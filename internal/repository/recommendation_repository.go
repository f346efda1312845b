package repository

import (
	"context"

	"sandy/internal/domain/recommendation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecommendationRepository interface {
	List(ctx context.Context, userID uuid.UUID, page Page) ([]recommendation.Recommendation, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (recommendation.Recommendation, error)
	Create(ctx context.Context, r *recommendation.Recommendation) error
	Update(ctx context.Context, r *recommendation.Recommendation) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type GormRecommendationRepository struct {
	store ownedStore[recommendation.Recommendation]
}

var _ RecommendationRepository = (*GormRecommendationRepository)(nil)

func NewGormRecommendationRepository(db *gorm.DB) *GormRecommendationRepository {
	return &GormRecommendationRepository{store: ownedStore[recommendation.Recommendation]{db: db, order: "timestamp DESC"}}
}

func (r *GormRecommendationRepository) List(ctx context.Context, userID uuid.UUID, page Page) ([]recommendation.Recommendation, int64, error) {
	return r.store.list(ctx, userID, page)
}

func (r *GormRecommendationRepository) Get(ctx context.Context, userID, id uuid.UUID) (recommendation.Recommendation, error) {
	return r.store.get(ctx, userID, id)
}

func (r *GormRecommendationRepository) Create(ctx context.Context, rec *recommendation.Recommendation) error {
	return r.store.create(ctx, rec)
}

func (r *GormRecommendationRepository) Update(ctx context.Context, rec *recommendation.Recommendation) error {
	return r.store.save(ctx, rec)
}

func (r *GormRecommendationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.store.delete(ctx, userID, id)
}
