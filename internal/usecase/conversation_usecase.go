package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sandy/internal/domain/conversation"
	"sandy/internal/repository"

	"github.com/google/uuid"
)

type ConversationInput struct {
	MessageType *string
	MessageText *string
	ContextData *map[string]any
}

// validate checks the fields present; full updates and creates also require
// the message type and text.
func (in ConversationInput) validate(full bool) error {
	if full && (in.MessageType == nil || in.MessageText == nil) {
		return ErrInvalidInput
	}
	if in.MessageType != nil && !conversation.ValidMessageType(*in.MessageType) {
		return conversation.ErrInvalidMessageType
	}
	if in.MessageText != nil && strings.TrimSpace(*in.MessageText) == "" {
		return ErrInvalidInput
	}
	return nil
}

func (in ConversationInput) apply(c *conversation.Conversation) {
	setString(&c.MessageType, in.MessageType)
	setString(&c.MessageText, in.MessageText)
	if in.ContextData != nil {
		c.ContextData = *in.ContextData
	}
}

// HistoryStore is the conversation-history half of PostgresService.
type HistoryStore interface {
	GetConversationHistory(ctx context.Context, userID uuid.UUID, limit int) ([]conversation.HistoryEntry, error)
	ClearConversationHistory(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ConversationUsecase interface {
	List(ctx context.Context, scope Scope, page repository.Page) ([]conversation.Conversation, int64, error)
	Get(ctx context.Context, scope Scope, id uuid.UUID) (conversation.Conversation, error)
	Create(ctx context.Context, scope Scope, in ConversationInput) (conversation.Conversation, error)
	Update(ctx context.Context, scope Scope, id uuid.UUID, in ConversationInput, partial bool) (conversation.Conversation, error)
	Delete(ctx context.Context, scope Scope, id uuid.UUID) error

	History(ctx context.Context, userID uuid.UUID, limit int) ([]conversation.HistoryEntry, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Conversation struct {
	repo    repository.ConversationRepository
	history HistoryStore
}

func NewConversationUsecase(repo repository.ConversationRepository, history HistoryStore) *Conversation {
	return &Conversation{repo: repo, history: history}
}

// List returns an empty page when the route names another user.
func (u *Conversation) List(ctx context.Context, scope Scope, page repository.Page) ([]conversation.Conversation, int64, error) {
	if scope.Foreign() {
		return []conversation.Conversation{}, 0, nil
	}
	items, total, err := u.repo.List(ctx, scope.Caller, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return items, total, nil
}

func (u *Conversation) Get(ctx context.Context, scope Scope, id uuid.UUID) (conversation.Conversation, error) {
	if scope.Foreign() {
		return conversation.Conversation{}, conversation.ErrNotFound
	}
	c, err := u.repo.Get(ctx, scope.Caller, id)
	if err != nil {
		return conversation.Conversation{}, conversationRepoError(err)
	}
	return c, nil
}

// Create always saves for the caller; a path user only narrows reads.
func (u *Conversation) Create(ctx context.Context, scope Scope, in ConversationInput) (conversation.Conversation, error) {
	if err := in.validate(true); err != nil {
		return conversation.Conversation{}, err
	}
	c := conversation.Conversation{UserID: scope.Caller}
	in.apply(&c)
	if err := u.repo.Create(ctx, &c); err != nil {
		return conversation.Conversation{}, conversationRepoError(err)
	}
	return c, nil
}

func (u *Conversation) Update(ctx context.Context, scope Scope, id uuid.UUID, in ConversationInput, partial bool) (conversation.Conversation, error) {
	if scope.Foreign() {
		return conversation.Conversation{}, conversation.ErrNotFound
	}
	if err := in.validate(!partial); err != nil {
		return conversation.Conversation{}, err
	}
	c, err := u.repo.Get(ctx, scope.Caller, id)
	if err != nil {
		return conversation.Conversation{}, conversationRepoError(err)
	}
	in.apply(&c)
	if err := u.repo.Update(ctx, &c); err != nil {
		return conversation.Conversation{}, conversationRepoError(err)
	}
	return c, nil
}

func (u *Conversation) Delete(ctx context.Context, scope Scope, id uuid.UUID) error {
	if scope.Foreign() {
		return conversation.ErrNotFound
	}
	if err := u.repo.Delete(ctx, scope.Caller, id); err != nil {
		return conversationRepoError(err)
	}
	return nil
}

func (u *Conversation) History(ctx context.Context, userID uuid.UUID, limit int) ([]conversation.HistoryEntry, error) {
	if limit < 0 {
		return nil, ErrInvalidInput
	}
	items, err := u.history.GetConversationHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if items == nil {
		items = []conversation.HistoryEntry{}
	}
	return items, nil
}

func (u *Conversation) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := u.history.ClearConversationHistory(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return n, nil
}

func conversationRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return conversation.ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
