package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

type fakeCorpus struct {
	vectorDocs []model.RetrievedDocument
	vectorErr  error
	textDocs   []model.RetrievedDocument
	textErr    error
}

func (f *fakeCorpus) VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]model.RetrievedDocument, error) {
	return f.vectorDocs, f.vectorErr
}

func (f *fakeCorpus) TextSearch(ctx context.Context, query string, limit int) ([]model.RetrievedDocument, error) {
	return f.textDocs, f.textErr
}

func doc(text string, score float64) model.RetrievedDocument {
	return model.RetrievedDocument{Text: text, Score: score}
}

func TestVectorSearchBlankQuerySkipsRemoteCalls(t *testing.T) {
	emb := &fakeEmbedder{}
	r := NewRetriever(&fakeCorpus{}, emb, 5)

	assert.Nil(t, r.VectorSearch(context.Background(), "   "))
	assert.Zero(t, emb.calls)
}

func TestVectorSearchEmbeddingFailureDegradesToEmpty(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	r := NewRetriever(&fakeCorpus{vectorDocs: []model.RetrievedDocument{doc("a", 0.9)}}, emb, 5)

	assert.Nil(t, r.VectorSearch(context.Background(), "anything"))
}

func TestVectorSearchCorpusFailureDegradesToEmpty(t *testing.T) {
	corpus := &fakeCorpus{vectorErr: errors.New("connection reset")}
	r := NewRetriever(corpus, &fakeEmbedder{}, 5)

	assert.Nil(t, r.VectorSearch(context.Background(), "anything"))
}

func TestHybridSearchDeduplicatesWithVectorPriority(t *testing.T) {
	corpus := &fakeCorpus{
		vectorDocs: []model.RetrievedDocument{doc("shared", 0.95), doc("only vector", 0.8)},
		textDocs:   []model.RetrievedDocument{doc("shared", 2.1), doc("only text", 1.4)},
	}
	r := NewRetriever(corpus, &fakeEmbedder{}, 5)

	got := r.HybridSearch(context.Background(), "query")
	require.Len(t, got, 3)

	assert.Equal(t, "shared", got[0].Text)
	assert.Equal(t, model.SearchTypeVector, got[0].SearchType)
	assert.Equal(t, 0.95, got[0].Score)

	assert.Equal(t, "only vector", got[1].Text)
	assert.Equal(t, model.SearchTypeVector, got[1].SearchType)

	assert.Equal(t, "only text", got[2].Text)
	assert.Equal(t, model.SearchTypeText, got[2].SearchType)
}

func TestHybridSearchTextFailureFallsBackToVectorResults(t *testing.T) {
	corpus := &fakeCorpus{
		vectorDocs: []model.RetrievedDocument{doc("a", 0.9), doc("b", 0.8)},
		textErr:    errors.New("no text index"),
	}
	r := NewRetriever(corpus, &fakeEmbedder{}, 5)

	got := r.HybridSearch(context.Background(), "query")
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, model.SearchTypeVector, d.SearchType)
	}
}

func TestHybridSearchTruncatesToLimit(t *testing.T) {
	corpus := &fakeCorpus{
		vectorDocs: []model.RetrievedDocument{doc("v1", 0.9), doc("v2", 0.8)},
		textDocs:   []model.RetrievedDocument{doc("t1", 2.0), doc("t2", 1.9)},
	}
	r := NewRetriever(corpus, &fakeEmbedder{}, 3)

	got := r.HybridSearch(context.Background(), "query")
	require.Len(t, got, 3)
	assert.Equal(t, "v1", got[0].Text)
	assert.Equal(t, "v2", got[1].Text)
	assert.Equal(t, "t1", got[2].Text)
}
