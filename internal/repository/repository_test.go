package repository

import (
	"context"
	"testing"
	"time"

	"sandy/internal/database/orm"
	"sandy/internal/domain/conversation"
	"sandy/internal/domain/interaction"
	"sandy/internal/domain/profile"
	"sandy/internal/domain/recommendation"
	"sandy/internal/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), orm.Config(logging.Nop()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&profile.UserProfile{},
		&conversation.Conversation{},
		&recommendation.Recommendation{},
		&interaction.Interaction{},
	))
	return db
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageLimit, Offset: 0}, Page{Limit: 1000, Offset: -4}.Normalize())
	assert.Equal(t, Page{Limit: 5, Offset: 10}, Page{Limit: 5, Offset: 10}.Normalize())
}

func TestConversationRepository_ScopedByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewGormConversationRepository(newTestDB(t))
	alice, bob := uuid.New(), uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		c := &conversation.Conversation{
			UserID:      alice,
			MessageType: conversation.MessageTypeUser,
			MessageText: "msg",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, c))
		assert.NotEqual(t, uuid.Nil, c.ID)
	}
	other := &conversation.Conversation{UserID: bob, MessageType: conversation.MessageTypeAssistant, MessageText: "bob"}
	require.NoError(t, repo.Create(ctx, other))

	items, total, err := repo.List(ctx, alice, Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.True(t, items[0].Timestamp.After(items[1].Timestamp))

	items, _, err = repo.List(ctx, alice, Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = repo.Get(ctx, alice, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, alice, other.ID), ErrNotFound)

	got, err := repo.Get(ctx, bob, other.ID)
	require.NoError(t, err)
	got.MessageText = "edited"
	got.ContextData = map[string]any{"k": "v"}
	require.NoError(t, repo.Update(ctx, &got))

	got, err = repo.Get(ctx, bob, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.MessageText)
	assert.Equal(t, "v", got.ContextData["k"])

	require.NoError(t, repo.Delete(ctx, bob, other.ID))
	_, total, err = repo.List(ctx, bob, Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProfileRepository_OnePerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProfileRepository(newTestDB(t))
	userID := uuid.New()

	p := &profile.UserProfile{UserID: userID, EnergyLevel: "low", PhysicalNeeds: []string{"ramp"}}
	require.NoError(t, repo.Create(ctx, p))

	err := repo.Create(ctx, &profile.UserProfile{UserID: userID})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ramp"}, got.PhysicalNeeds)
	assert.Equal(t, []string{}, got.DailyTaskChallenges)

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = repo.GetByID(ctx, uuid.New(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got.Bio = "hello"
	require.NoError(t, repo.Update(ctx, &got))
	got, err = repo.GetByID(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)

	require.NoError(t, repo.Delete(ctx, userID, p.ID))
	_, err = repo.GetByUserID(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecommendationRepository_Feedback(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRecommendationRepository(newTestDB(t))
	userID := uuid.New()
	typ := "device"

	rec := &recommendation.Recommendation{UserID: userID, RecommendationType: &typ, RecommendationData: map[string]any{"item": "switch"}}
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.Get(ctx, userID, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.WasHelpful)

	helpful := false
	got.WasHelpful = &helpful
	require.NoError(t, repo.Update(ctx, &got))

	items, total, err := repo.List(ctx, userID, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, items[0].WasHelpful)
	assert.False(t, *items[0].WasHelpful)
	assert.Equal(t, "switch", items[0].RecommendationData["item"])
}

func TestInteractionRepository_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormInteractionRepository(db)
	userID := uuid.New()

	in := &interaction.Interaction{UserID: userID, InteractionType: "search", Success: false}
	require.NoError(t, db.Create(in).Error)

	items, total, err := repo.List(ctx, userID, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.False(t, items[0].Success)

	got, err := repo.Get(ctx, userID, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "search", got.InteractionType)
}
