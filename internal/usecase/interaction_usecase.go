package usecase

import (
	"context"
	"fmt"
	"strings"

	"sandy/internal/domain/interaction"
	"sandy/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultStatsDays = 30
	MaxStatsDays     = 365
)

type InteractionInput struct {
	InteractionType string
	InteractionData map[string]any
	// Success defaults to true when unset.
	Success *bool
}

// InteractionStore is the interaction half of PostgresService.
type InteractionStore interface {
	RecordInteraction(ctx context.Context, userID uuid.UUID, interactionType string, data map[string]any, success bool) (uuid.UUID, error)
	GetInteractionStats(ctx context.Context, userID uuid.UUID, days int) (map[string]interaction.TypeStats, error)
}

type InteractionUsecase interface {
	Record(ctx context.Context, userID uuid.UUID, in InteractionInput) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID, page repository.Page) ([]interaction.Interaction, int64, error)
	Stats(ctx context.Context, userID uuid.UUID, days int) (map[string]interaction.TypeStats, error)
}

type Interaction struct {
	repo  repository.InteractionRepository
	store InteractionStore
}

func NewInteractionUsecase(repo repository.InteractionRepository, store InteractionStore) *Interaction {
	return &Interaction{repo: repo, store: store}
}

func (u *Interaction) Record(ctx context.Context, userID uuid.UUID, in InteractionInput) (uuid.UUID, error) {
	typ := strings.TrimSpace(in.InteractionType)
	if typ == "" || len(typ) > 50 {
		return uuid.Nil, ErrInvalidInput
	}
	success := true
	if in.Success != nil {
		success = *in.Success
	}
	id, err := u.store.RecordInteraction(ctx, userID, typ, in.InteractionData, success)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return id, nil
}

func (u *Interaction) List(ctx context.Context, userID uuid.UUID, page repository.Page) ([]interaction.Interaction, int64, error) {
	items, total, err := u.repo.List(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return items, total, nil
}

// Stats reports per-type counts over the last days days. Zero means the
// default window.
func (u *Interaction) Stats(ctx context.Context, userID uuid.UUID, days int) (map[string]interaction.TypeStats, error) {
	if days < 0 || days > MaxStatsDays {
		return nil, ErrInvalidInput
	}
	stats, err := u.store.GetInteractionStats(ctx, userID, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if stats == nil {
		stats = map[string]interaction.TypeStats{}
	}
	return stats, nil
}
