package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	Title     string
	UserId    *string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	Metadata       MessageMetadata
	CreatedAt      time.Time
}

// MessageMetadata is the typed shape of the messages.metadata JSON column.
// Assistant messages record the passages used to generate the answer so the
// UI can reconstruct sources without re-running retrieval.
type MessageMetadata struct {
	Passages []PassageRef `json:"passages,omitempty"`
}

type PassageRef struct {
	Id         string  `json:"id"`
	Similarity float64 `json:"similarity"`
}
