package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

func TestParseSelectionStructured(t *testing.T) {
	sel := ParseSelection(`{"tool": "calculator_tool", "input": "15 * 23 + 45"}`, "calculate 15 * 23 + 45")

	assert.Equal(t, model.ToolCalculator, sel.Tool)
	assert.Equal(t, "15 * 23 + 45", sel.Input)
}

func TestParseSelectionCodeFence(t *testing.T) {
	raw := "```json\n{\"tool\": \"vector_search_tool\", \"input\": \"atlas pricing\"}\n```"
	sel := ParseSelection(raw, "tell me about atlas pricing")

	assert.Equal(t, model.ToolVectorSearch, sel.Tool)
	assert.Equal(t, "atlas pricing", sel.Input)
}

func TestParseSelectionNestedInputObject(t *testing.T) {
	sel := ParseSelection(`{"tool": "web_search_tool", "input": {"query": "capital of France"}}`, "whatever")

	assert.Equal(t, model.ToolWebSearch, sel.Tool)
	assert.Equal(t, "capital of France", sel.Input)
}

func TestParseSelectionEmptyInputFallsBackToUserText(t *testing.T) {
	sel := ParseSelection(`{"tool": "hybrid_search_tool", "input": ""}`, "latest mongodb earnings")

	assert.Equal(t, model.ToolHybridSearch, sel.Tool)
	assert.Equal(t, "latest mongodb earnings", sel.Input)
}

func TestParseSelectionTextualFallback(t *testing.T) {
	raw := "I think the best choice here is calculator_tool."
	sel := ParseSelection(raw, "what is 2+2?")

	assert.Equal(t, model.ToolCalculator, sel.Tool)
	assert.Equal(t, "what is 2+2?", sel.Input)
}

func TestParseSelectionUnrecognizedDefaultsToNone(t *testing.T) {
	sel := ParseSelection("no idea", "hello there")

	assert.Equal(t, model.ToolNone, sel.Tool)
}

func TestApplyOverridesWebToVectorForDomainQueries(t *testing.T) {
	sel := model.ToolSelection{Tool: model.ToolWebSearch, Input: "What was MongoDB's latest acquisition?"}

	got := ApplyOverrides(sel, "What was MongoDB's latest acquisition?")

	assert.Equal(t, model.ToolVectorSearch, got.Tool)
	assert.Equal(t, sel.Input, got.Input)
}

func TestApplyOverridesNoneToWebForGeneralKnowledge(t *testing.T) {
	sel := model.ToolSelection{Tool: model.ToolNone, Input: ""}

	got := ApplyOverrides(sel, "What is the capital of France?")

	assert.Equal(t, model.ToolWebSearch, got.Tool)
	assert.Equal(t, "What is the capital of France?", got.Input)
}

func TestApplyOverridesLeavesOtherSelectionsAlone(t *testing.T) {
	sel := model.ToolSelection{Tool: model.ToolCalculator, Input: "2+2"}

	got := ApplyOverrides(sel, "calculate 2+2 for my mongodb database")

	assert.Equal(t, model.ToolCalculator, got.Tool)
}

func TestHeuristicSelect(t *testing.T) {
	tests := []struct {
		input string
		want  model.Tool
	}{
		{input: "how do I create a vector index in atlas?", want: model.ToolVectorSearch},
		{input: "which team won the world cup?", want: model.ToolWebSearch},
		{input: "thanks, that was helpful", want: model.ToolNone},
	}

	for _, tt := range tests {
		got := HeuristicSelect(tt.input)
		assert.Equal(t, tt.want, got.Tool, tt.input)
		assert.Equal(t, tt.input, got.Input)
	}
}
