package dto

import "sandy/internal/usecase"

type RecommendationRequest struct {
	RecommendationType *string         `json:"recommendation_type" validate:"omitempty,max=100"`
	RecommendationData *map[string]any `json:"recommendation_data"`
	WasHelpful         *bool           `json:"was_helpful"`
	Feedback           *string         `json:"feedback"`
}

func (r RecommendationRequest) Input() usecase.RecommendationInput {
	return usecase.RecommendationInput{
		RecommendationType: r.RecommendationType,
		RecommendationData: r.RecommendationData,
		WasHelpful:         r.WasHelpful,
		Feedback:           r.Feedback,
	}
}

type FeedbackRequest struct {
	WasHelpful *bool   `json:"was_helpful" validate:"required"`
	Feedback   *string `json:"feedback"`
}
