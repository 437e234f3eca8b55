package events

import "time"

const ChatAnsweredEventType = "chat.answered"

// NewChatAnsweredEvent signals that a question was answered and the turn
// persisted. Downstream consumers use it for analytics.
func NewChatAnsweredEvent(conversationId, model string, passageCount int, comparison bool) Event {
	return BaseEvent{
		Type: ChatAnsweredEventType,
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"model":           model,
			"passage_count":   passageCount,
			"comparison":      comparison,
		},
		OccurredAt: time.Now(),
	}
}
