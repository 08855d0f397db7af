package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

const analysisInstruction = "Analyze the following document and extract key information including: main topics, key facts, important numbers, and summary."

// DocumentAnalyzer delegates summarization and extraction to the utility
// model with a fixed analytical instruction.
type DocumentAnalyzer struct {
	model einomodel.BaseChatModel
}

func NewDocumentAnalyzer(cm einomodel.BaseChatModel) *DocumentAnalyzer {
	return &DocumentAnalyzer{model: cm}
}

// Analyze returns the model's analysis plus local word/char counts. A remote
// failure is reported in the Error field, never raised.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, documentText string) model.DocumentAnalysis {
	messages := []*schema.Message{
		schema.SystemMessage(analysisInstruction),
		schema.UserMessage(fmt.Sprintf("Analyze this document:\n\n%s", documentText)),
	}

	out, err := a.model.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Msg("document analysis generation failed")
		return model.DocumentAnalysis{Error: fmt.Sprintf("Analysis failed: %v", err)}
	}

	return model.DocumentAnalysis{
		Analysis:  out.Content,
		WordCount: len(strings.Fields(documentText)),
		CharCount: utf8.RuneCountInString(documentText),
	}
}
