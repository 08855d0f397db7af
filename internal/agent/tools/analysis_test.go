package tools

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

type fakeChatModel struct {
	reply string
	err   error
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func TestAnalyzeCountsWordsAndRunes(t *testing.T) {
	a := NewDocumentAnalyzer(&fakeChatModel{reply: "Main topics: revenue growth."})

	got := a.Analyze(context.Background(), "Revenue grew 20% year over year.")

	assert.Equal(t, "Main topics: revenue growth.", got.Analysis)
	assert.Equal(t, 6, got.WordCount)
	assert.Equal(t, 32, got.CharCount)
	assert.Empty(t, got.Error)
}

func TestAnalyzeModelFailure(t *testing.T) {
	a := NewDocumentAnalyzer(&fakeChatModel{err: errors.New("deadline exceeded")})

	got := a.Analyze(context.Background(), "some document")

	assert.Equal(t, "Analysis failed: deadline exceeded", got.Error)
	assert.Empty(t, got.Analysis)
	assert.Zero(t, got.WordCount)
}
