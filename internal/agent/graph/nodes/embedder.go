package nodes

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// maxEmbeddingInputChars keeps query text within provider input limits.
const maxEmbeddingInputChars = 8000

// GeminiEmbedder generates fixed-length query embeddings via the Gemini API.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

func NewGeminiEmbedder(client *genai.Client, cfg model.EmbeddingConfig) *GeminiEmbedder {
	return &GeminiEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text for embedding")
	}
	if len(text) > maxEmbeddingInputChars {
		logx.Warn().Int("max_chars", maxEmbeddingInputChars).Int("orig_chars", len(text)).
			Msg("embedding input truncated")
		text = text[:maxEmbeddingInputChars]
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("embed content: empty response")
	}
	return resp.Embeddings[0].Values, nil
}

func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

var _ model.Embedder = (*GeminiEmbedder)(nil)
