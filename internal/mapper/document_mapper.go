package mapper

import (
	"askalma-be/internal/entity"
	"askalma-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

// ToPassage converts a document row plus its query-time similarity into the
// read-only passage the retrieval layer works with.
func (m *DocumentMapper) ToPassage(d *model.Document, similarity float64) *entity.Passage {
	if d == nil {
		return nil
	}
	return &entity.Passage{
		Id:             d.Id,
		Content:        d.Content,
		Source:         d.Source,
		Similarity:     similarity,
		EmbeddingModel: d.EmbeddingModel,
	}
}
