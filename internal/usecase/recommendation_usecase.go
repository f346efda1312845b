package usecase

import (
	"context"
	"errors"
	"fmt"

	"sandy/internal/domain/recommendation"
	"sandy/internal/repository"

	"github.com/google/uuid"
)

type RecommendationInput struct {
	RecommendationType *string
	RecommendationData *map[string]any
	WasHelpful         *bool
	Feedback           *string
}

func (in RecommendationInput) validate(full bool) error {
	if full && (in.RecommendationData == nil || *in.RecommendationData == nil) {
		return ErrInvalidInput
	}
	if in.RecommendationType != nil && len(*in.RecommendationType) > 100 {
		return ErrInvalidInput
	}
	return nil
}

func (in RecommendationInput) apply(r *recommendation.Recommendation) {
	if in.RecommendationType != nil {
		r.RecommendationType = optionalString(*in.RecommendationType)
	}
	if in.RecommendationData != nil && *in.RecommendationData != nil {
		r.RecommendationData = *in.RecommendationData
	}
	if in.WasHelpful != nil {
		v := *in.WasHelpful
		r.WasHelpful = &v
	}
	if in.Feedback != nil {
		r.Feedback = optionalString(*in.Feedback)
	}
}

// FeedbackStore is the recommendation half of PostgresService.
type FeedbackStore interface {
	UpdateRecommendationFeedback(ctx context.Context, userID, recID uuid.UUID, wasHelpful bool, feedback *string) error
	GetRecommendationHistory(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.HistoryEntry, error)
}

type RecommendationUsecase interface {
	List(ctx context.Context, scope Scope, page repository.Page) ([]recommendation.Recommendation, int64, error)
	Get(ctx context.Context, scope Scope, id uuid.UUID) (recommendation.Recommendation, error)
	Create(ctx context.Context, scope Scope, in RecommendationInput) (recommendation.Recommendation, error)
	Update(ctx context.Context, scope Scope, id uuid.UUID, in RecommendationInput, partial bool) (recommendation.Recommendation, error)
	Delete(ctx context.Context, scope Scope, id uuid.UUID) error

	Feedback(ctx context.Context, userID, id uuid.UUID, wasHelpful bool, feedback *string) error
	History(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.HistoryEntry, error)
}

type Recommendation struct {
	repo     repository.RecommendationRepository
	feedback FeedbackStore
}

func NewRecommendationUsecase(repo repository.RecommendationRepository, feedback FeedbackStore) *Recommendation {
	return &Recommendation{repo: repo, feedback: feedback}
}

func (u *Recommendation) List(ctx context.Context, scope Scope, page repository.Page) ([]recommendation.Recommendation, int64, error) {
	if scope.Foreign() {
		return []recommendation.Recommendation{}, 0, nil
	}
	items, total, err := u.repo.List(ctx, scope.Caller, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return items, total, nil
}

func (u *Recommendation) Get(ctx context.Context, scope Scope, id uuid.UUID) (recommendation.Recommendation, error) {
	if scope.Foreign() {
		return recommendation.Recommendation{}, recommendation.ErrNotFound
	}
	r, err := u.repo.Get(ctx, scope.Caller, id)
	if err != nil {
		return recommendation.Recommendation{}, recommendationRepoError(err)
	}
	return r, nil
}

// Create always saves for the caller.
func (u *Recommendation) Create(ctx context.Context, scope Scope, in RecommendationInput) (recommendation.Recommendation, error) {
	if err := in.validate(true); err != nil {
		return recommendation.Recommendation{}, err
	}
	r := recommendation.Recommendation{UserID: scope.Caller}
	in.apply(&r)
	if err := u.repo.Create(ctx, &r); err != nil {
		return recommendation.Recommendation{}, recommendationRepoError(err)
	}
	return r, nil
}

func (u *Recommendation) Update(ctx context.Context, scope Scope, id uuid.UUID, in RecommendationInput, partial bool) (recommendation.Recommendation, error) {
	if scope.Foreign() {
		return recommendation.Recommendation{}, recommendation.ErrNotFound
	}
	if err := in.validate(!partial); err != nil {
		return recommendation.Recommendation{}, err
	}
	r, err := u.repo.Get(ctx, scope.Caller, id)
	if err != nil {
		return recommendation.Recommendation{}, recommendationRepoError(err)
	}
	in.apply(&r)
	if err := u.repo.Update(ctx, &r); err != nil {
		return recommendation.Recommendation{}, recommendationRepoError(err)
	}
	return r, nil
}

func (u *Recommendation) Delete(ctx context.Context, scope Scope, id uuid.UUID) error {
	if scope.Foreign() {
		return recommendation.ErrNotFound
	}
	if err := u.repo.Delete(ctx, scope.Caller, id); err != nil {
		return recommendationRepoError(err)
	}
	return nil
}

func (u *Recommendation) Feedback(ctx context.Context, userID, id uuid.UUID, wasHelpful bool, feedback *string) error {
	if feedback != nil {
		feedback = optionalString(*feedback)
	}
	err := u.feedback.UpdateRecommendationFeedback(ctx, userID, id, wasHelpful, feedback)
	if err != nil {
		if errors.Is(err, recommendation.ErrNotFound) {
			return recommendation.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return nil
}

func (u *Recommendation) History(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.HistoryEntry, error) {
	if limit < 0 {
		return nil, ErrInvalidInput
	}
	items, err := u.feedback.GetRecommendationHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if items == nil {
		items = []recommendation.HistoryEntry{}
	}
	return items, nil
}

func recommendationRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return recommendation.ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
