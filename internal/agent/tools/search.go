package tools

import (
	"context"
	"strings"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

const DefaultSearchLimit = 5

// Retriever bundles the corpus queries with query embedding. All methods
// degrade to empty results on remote failure; retrieval never aborts a turn.
type Retriever struct {
	corpus   model.CorpusRepository
	embedder model.Embedder
	limit    int
}

func NewRetriever(corpus model.CorpusRepository, embedder model.Embedder, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Retriever{corpus: corpus, embedder: embedder, limit: limit}
}

// VectorSearch embeds the query and runs an exact similarity search.
// Blank queries are rejected before any remote call is made.
func (r *Retriever) VectorSearch(ctx context.Context, query string) []model.RetrievedDocument {
	if strings.TrimSpace(query) == "" {
		logx.Warn().Msg("vector search received blank query")
		return nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logx.Error().Err(err).Msg("failed to generate query embedding")
		return nil
	}

	docs, err := r.corpus.VectorSearch(ctx, embedding, r.limit)
	if err != nil {
		logx.Error().Err(err).Msg("vector search failed")
		return nil
	}
	return docs
}

// TextSearch runs a keyword search over the corpus.
func (r *Retriever) TextSearch(ctx context.Context, query string) ([]model.RetrievedDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return r.corpus.TextSearch(ctx, query, r.limit)
}

// HybridSearch combines vector and text search, tags each result's origin,
// deduplicates by exact text (vector results win) and truncates to the limit.
// It never fails harder than its vector-only component: a text-search error
// degrades to the vector results alone.
func (r *Retriever) HybridSearch(ctx context.Context, query string) []model.RetrievedDocument {
	vectorDocs := r.VectorSearch(ctx, query)

	textDocs, err := r.TextSearch(ctx, query)
	if err != nil {
		logx.Error().Err(err).Msg("hybrid search text component failed, falling back to vector results")
		return tagSearchType(vectorDocs, model.SearchTypeVector)
	}

	seen := make(map[string]struct{}, len(vectorDocs)+len(textDocs))
	combined := make([]model.RetrievedDocument, 0, len(vectorDocs)+len(textDocs))

	for _, doc := range vectorDocs {
		if _, ok := seen[doc.Text]; ok {
			continue
		}
		seen[doc.Text] = struct{}{}
		doc.SearchType = model.SearchTypeVector
		combined = append(combined, doc)
	}
	for _, doc := range textDocs {
		if _, ok := seen[doc.Text]; ok {
			continue
		}
		seen[doc.Text] = struct{}{}
		doc.SearchType = model.SearchTypeText
		combined = append(combined, doc)
	}

	if len(combined) > r.limit {
		combined = combined[:r.limit]
	}
	return combined
}

func tagSearchType(docs []model.RetrievedDocument, st model.SearchType) []model.RetrievedDocument {
	for i := range docs {
		docs[i].SearchType = st
	}
	return docs
}
