package retrieve

import (
	"context"
	"sort"

	"askalma-be/internal/constant"
	"askalma-be/internal/entity"
	"askalma-be/internal/pkg/logger"
	"askalma-be/internal/repository/contract"

	"askalma-be/pkg/embedding"
)

// Searcher is the slice of the document store the retriever needs.
type Searcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, topK int, filter contract.SearchFilter) ([]*entity.Passage, error)
}

// Retriever turns questions into ranked, deduplicated passage sets. In
// comparison mode it splits the budget between the two entities so neither
// crowds the other out of the top-K.
type Retriever struct {
	searcher Searcher
	embedder embedding.EmbeddingProvider
	logger   logger.ILogger

	// PrioritySources are tried first in single mode; older bulletins only
	// fill slots the priority sources leave open.
	PrioritySources []string
}

func NewRetriever(searcher Searcher, embedder embedding.EmbeddingProvider, log logger.ILogger) *Retriever {
	return &Retriever{
		searcher:        searcher,
		embedder:        embedder,
		logger:          log,
		PrioritySources: constant.PrioritySourcePatterns,
	}
}

// RetrieveSingle answers the default path: embed the question and query the
// store directly, preferring priority sources and backfilling from the rest
// of the corpus.
func (r *Retriever) RetrieveSingle(ctx context.Context, question string, topK int, filter contract.SearchFilter) ([]*entity.Passage, error) {
	if topK <= 0 {
		return []*entity.Passage{}, nil
	}

	vector, err := r.embedder.Generate(ctx, question)
	if err != nil {
		return nil, err
	}

	priorityFilter := filter
	priorityFilter.IncludeSources = r.PrioritySources
	passages, err := r.searcher.SearchSimilar(ctx, vector, topK, priorityFilter)
	if err != nil {
		return nil, err
	}

	if len(passages) < topK && len(r.PrioritySources) > 0 {
		fallbackFilter := filter
		fallbackFilter.ExcludeSources = r.PrioritySources
		fallback, err := r.searcher.SearchSimilar(ctx, vector, topK-len(passages), fallbackFilter)
		if err != nil {
			return nil, err
		}
		passages = append(passages, fallback...)
	}

	passages = dedupeById(passages)
	sortBySimilarity(passages)
	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

// RetrieveComparison gives each entity a budget of floor(topK/2) passages
// scoped to documents mentioning it, then merges the two lists. An entity
// absent from the corpus simply leaves its slots unfilled.
func (r *Retriever) RetrieveComparison(ctx context.Context, entity1, entity2 string, topK int, filter contract.SearchFilter) ([]*entity.Passage, error) {
	perEntity := topK / 2
	if perEntity <= 0 {
		return []*entity.Passage{}, nil
	}

	var combined []*entity.Passage
	for _, name := range []string{entity1, entity2} {
		passages, err := r.retrieveForEntity(ctx, name, perEntity, filter)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("retriever", "Entity retrieval complete", map[string]interface{}{
			"entity": name,
			"count":  len(passages),
		})
		combined = append(combined, passages...)
	}

	combined = dedupeById(combined)
	sortBySimilarity(combined)
	return combined, nil
}

func (r *Retriever) retrieveForEntity(ctx context.Context, name string, budget int, filter contract.SearchFilter) ([]*entity.Passage, error) {
	query := name + " " + constant.ComparisonQuerySuffix
	vector, err := r.embedder.Generate(ctx, query)
	if err != nil {
		return nil, err
	}

	entityFilter := filter
	entityFilter.Contains = name
	return r.searcher.SearchSimilar(ctx, vector, budget, entityFilter)
}

// dedupeById keeps the first occurrence of each passage id.
func dedupeById(passages []*entity.Passage) []*entity.Passage {
	seen := make(map[string]bool, len(passages))
	result := make([]*entity.Passage, 0, len(passages))
	for _, p := range passages {
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		result = append(result, p)
	}
	return result
}

func sortBySimilarity(passages []*entity.Passage) {
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Similarity > passages[j].Similarity
	})
}
