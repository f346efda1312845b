package repository

import (
	"context"

	"sandy/internal/domain/interaction"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InteractionRepository is read-only; interactions are recorded through the
// raw-SQL service.
type InteractionRepository interface {
	List(ctx context.Context, userID uuid.UUID, page Page) ([]interaction.Interaction, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (interaction.Interaction, error)
}

type GormInteractionRepository struct {
	store ownedStore[interaction.Interaction]
}

var _ InteractionRepository = (*GormInteractionRepository)(nil)

func NewGormInteractionRepository(db *gorm.DB) *GormInteractionRepository {
	return &GormInteractionRepository{store: ownedStore[interaction.Interaction]{db: db, order: "timestamp DESC"}}
}

func (r *GormInteractionRepository) List(ctx context.Context, userID uuid.UUID, page Page) ([]interaction.Interaction, int64, error) {
	return r.store.list(ctx, userID, page)
}

func (r *GormInteractionRepository) Get(ctx context.Context, userID, id uuid.UUID) (interaction.Interaction, error) {
	return r.store.get(ctx, userID, id)
}
