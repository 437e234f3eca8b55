package dto

import (
	"time"
)

type AskRequest struct {
	Question       string `json:"question" validate:"required"`
	ConversationId string `json:"conversation_id,omitempty"`
	UserId         string `json:"user_id,omitempty"`
}

type SourceDTO struct {
	Id             string  `json:"id"`
	Similarity     float64 `json:"similarity"`
	ContentPreview string  `json:"content"`
	Source         string  `json:"source"`
}

type AskResponse struct {
	ConversationId  string      `json:"conversation_id"`
	Answer          string      `json:"answer"`
	Sources         []SourceDTO `json:"sources"`
	ModelIdentifier string      `json:"model"`
	Comparison      bool        `json:"comparison"`
}

type ConversationSummaryResponse struct {
	Id           string     `json:"id"`
	Title        string     `json:"title"`
	MessageCount int64      `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ConversationMessageResponse struct {
	Id        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Sources   []SourceDTO `json:"sources,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type ConversationHistoryResponse struct {
	Id       string                        `json:"id"`
	Title    string                        `json:"title"`
	Messages []ConversationMessageResponse `json:"messages"`
}

type RenameConversationRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}
