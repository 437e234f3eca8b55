package model

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile rows are owned by the profile API; this service reads them to
// bias retrieval and personalize prompts.
type UserProfile struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       string    `gorm:"type:text;not null;uniqueIndex"`
	School       string    `gorm:"type:text"`
	AcademicYear string    `gorm:"type:text"`
	Major        string    `gorm:"type:text"`
	Minors       []string  `gorm:"type:jsonb;serializer:json"`
	ClassesTaken []string  `gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
