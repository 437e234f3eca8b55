package entity

// Passage is a retrievable unit of source text. The Id is a stable content
// hash assigned by the ingestion pipeline, so identical content retrieved by
// different sub-queries deduplicates to one entry.
type Passage struct {
	Id             string
	Content        string
	Source         string
	Similarity     float64
	EmbeddingModel string
}
