package dto

import "sandy/internal/usecase"

type InteractionRequest struct {
	InteractionType string         `json:"interaction_type" validate:"required,max=50"`
	InteractionData map[string]any `json:"interaction_data"`
	Success         *bool          `json:"success"`
}

func (r InteractionRequest) Input() usecase.InteractionInput {
	return usecase.InteractionInput{
		InteractionType: r.InteractionType,
		InteractionData: r.InteractionData,
		Success:         r.Success,
	}
}
