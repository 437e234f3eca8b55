package model

import (
	"github.com/pgvector/pgvector-go"
)

// Document is a corpus passage with its precomputed embedding. Rows are
// written by the ingestion pipeline; this service only reads them.
type Document struct {
	Id             string          `gorm:"type:text;primaryKey"` // content hash
	Content        string          `gorm:"type:text;not null"`
	Source         string          `gorm:"type:text;not null;index"`
	Embedding      pgvector.Vector `gorm:"type:vector(1536)"`
	EmbeddingModel string          `gorm:"type:text"`
}

func (Document) TableName() string {
	return "documents"
}
