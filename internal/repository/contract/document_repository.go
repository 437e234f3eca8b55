package contract

import (
	"context"

	"askalma-be/internal/entity"
)

// SearchFilter narrows a vector search before ranking. Zero values mean no
// constraint.
type SearchFilter struct {
	// SourcePattern is an ILIKE pattern applied to the source column
	// (school bias from the user profile).
	SourcePattern string
	// Contains keeps only passages whose content or source contains this
	// substring, case-insensitively (entity scoping in comparison mode).
	Contains string
	// IncludeSources restricts results to sources matching any pattern.
	IncludeSources []string
	// ExcludeSources drops results whose source matches any pattern.
	ExcludeSources []string
}

type DocumentRepository interface {
	// SearchSimilar returns up to topK passages ranked by cosine similarity
	// to the query embedding, filtered before ranking.
	SearchSimilar(ctx context.Context, embedding []float32, topK int, filter SearchFilter) ([]*entity.Passage, error)
}
