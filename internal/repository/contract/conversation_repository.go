package contract

import (
	"context"
	"time"

	"askalma-be/internal/entity"
	"askalma-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ConversationSummary pairs a conversation with its message count for
// listing and search endpoints.
type ConversationSummary struct {
	Conversation *entity.Conversation
	MessageCount int64
}

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	// Touch bumps updated_at without rewriting the row's other columns.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	// ListWithCounts returns the most recently updated conversations, newest
	// first. A nil userId lists across all users.
	ListWithCounts(ctx context.Context, userId *string, limit int) ([]*ConversationSummary, error)
	// SearchWithCounts matches the query against conversation titles and
	// message content, case-insensitively.
	SearchWithCounts(ctx context.Context, userId, query string, limit int) ([]*ConversationSummary, error)
}
