package history

import (
	"context"

	"askalma-be/internal/constant"
	"askalma-be/internal/pkg/logger"
	"askalma-be/internal/repository/specification"
	"askalma-be/internal/repository/unitofwork"

	"askalma-be/pkg/llm"

	"github.com/google/uuid"
)

// Loader fetches the recent turns of a conversation for LLM context.
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewLoader(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Loader {
	return &Loader{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// LoadHistory returns up to maxMessages of the most recent turns, oldest
// first. A nil conversation id, an unknown conversation, or a store failure
// all degrade to an empty history; prompts are still built without it.
func (l *Loader) LoadHistory(ctx context.Context, conversationId *uuid.UUID, maxMessages int) []llm.Message {
	if conversationId == nil || maxMessages <= 0 {
		return []llm.Message{}
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: *conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: maxMessages},
	)
	if err != nil {
		l.logger.Warn("history", "Failed to load conversation history", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"error":           err.Error(),
		})
		return []llm.Message{}
	}

	// Query is newest-first; reverse into chronological order.
	result := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		role := msg.Role
		if role != constant.MessageRoleAssistant {
			role = constant.MessageRoleUser
		}
		result = append(result, llm.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return result
}
