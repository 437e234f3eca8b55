package implementation

import (
	"context"

	"askalma-be/internal/entity"
	"askalma-be/internal/mapper"
	"askalma-be/internal/model"
	"askalma-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

// SearchSimilar ranks documents by cosine similarity. pgvector's <=> operator
// is cosine distance, so 1 - distance gives the similarity score.
func (r *DocumentRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, topK int, filter contract.SearchFilter) ([]*entity.Passage, error) {
	if topK <= 0 {
		return []*entity.Passage{}, nil
	}

	type result struct {
		model.Document
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, 1 - (embedding <=> ?) as similarity", queryVector)

	if filter.SourcePattern != "" {
		query = query.Where("source ILIKE ?", filter.SourcePattern)
	}
	if filter.Contains != "" {
		pattern := "%" + filter.Contains + "%"
		query = query.Where("content ILIKE ? OR source ILIKE ?", pattern, pattern)
	}
	if len(filter.IncludeSources) > 0 {
		clause := "source ILIKE ?"
		args := []interface{}{filter.IncludeSources[0]}
		for _, pattern := range filter.IncludeSources[1:] {
			clause += " OR source ILIKE ?"
			args = append(args, pattern)
		}
		query = query.Where(clause, args...)
	}
	for _, pattern := range filter.ExcludeSources {
		query = query.Where("source NOT ILIKE ?", pattern)
	}

	err := query.
		Order("similarity DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	passages := make([]*entity.Passage, len(results))
	for i, res := range results {
		doc := res.Document
		passages[i] = r.mapper.ToPassage(&doc, res.Similarity)
	}
	return passages, nil
}
