package repository

import (
	"context"

	"sandy/internal/domain/conversation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	List(ctx context.Context, userID uuid.UUID, page Page) ([]conversation.Conversation, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (conversation.Conversation, error)
	Create(ctx context.Context, c *conversation.Conversation) error
	Update(ctx context.Context, c *conversation.Conversation) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type GormConversationRepository struct {
	store ownedStore[conversation.Conversation]
}

var _ ConversationRepository = (*GormConversationRepository)(nil)

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{store: ownedStore[conversation.Conversation]{db: db, order: "timestamp DESC"}}
}

func (r *GormConversationRepository) List(ctx context.Context, userID uuid.UUID, page Page) ([]conversation.Conversation, int64, error) {
	return r.store.list(ctx, userID, page)
}

func (r *GormConversationRepository) Get(ctx context.Context, userID, id uuid.UUID) (conversation.Conversation, error) {
	return r.store.get(ctx, userID, id)
}

func (r *GormConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	return r.store.create(ctx, c)
}

func (r *GormConversationRepository) Update(ctx context.Context, c *conversation.Conversation) error {
	return r.store.save(ctx, c)
}

func (r *GormConversationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.store.delete(ctx, userID, id)
}
