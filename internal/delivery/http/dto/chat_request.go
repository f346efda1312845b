package dto

import "sandy/internal/usecase"

type ConversationRequest struct {
	MessageType *string         `json:"message_type" validate:"omitempty,oneof=user assistant"`
	MessageText *string         `json:"message_text"`
	ContextData *map[string]any `json:"context_data"`
}

func (r ConversationRequest) Input() usecase.ConversationInput {
	return usecase.ConversationInput{
		MessageType: r.MessageType,
		MessageText: r.MessageText,
		ContextData: r.ContextData,
	}
}
