package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// basic safety limit to avoid pathological model outputs
const maxContentLen = 64 * 1024

// domainKeywords marks utterances with knowledge-base affinity. A model
// choice of web search is overridden to vector search when one matches.
var domainKeywords = []string{
	"mongodb", "atlas", "vector", "database", "search",
	"acquisition", "revenue", "earnings", "financial",
}

// generalKnowledgeKeywords marks utterances that want a factual lookup.
// A model choice of no tool is overridden to web search when one matches.
var generalKnowledgeKeywords = []string{
	"country", "plays", "football", "soccer", "team", "club", "sport",
	"movie", "actor", "city", "capital", "population", "president",
	"prime minister", "cook", "recipe", "weather", "time", "explain",
	"how to", "what is", "who is", "where is", "when is", "why is",
}

// rawSelection is the structured two-field result requested from the model.
// Input is left raw because models occasionally nest an object there.
type rawSelection struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// ParseSelection turns the selector model's raw response into a ToolSelection.
// It attempts a strict structured decode first and degrades to ordered
// keyword matching over the raw text; it never fails. The returned selection
// honours the invariant that Input is non-empty whenever Tool != none.
func ParseSelection(raw string, userInput string) model.ToolSelection {
	if len(raw) > maxContentLen {
		logx.Warn().Int("orig_len", len(raw)).Int("max_len", maxContentLen).
			Msg("selector response truncated due to size limit")
		raw = raw[:maxContentLen]
	}

	sel, ok := parseStructured(raw, userInput)
	if !ok {
		sel = matchToolName(raw, userInput)
	}

	if sel.Tool != model.ToolNone && strings.TrimSpace(sel.Input) == "" {
		sel.Input = userInput
	}
	return sel
}

// parseStructured decodes the strict {"tool","input"} shape. Markdown code
// fences around the object are tolerated.
func parseStructured(raw, userInput string) (model.ToolSelection, bool) {
	var rs rawSelection
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &rs); err != nil {
		return model.ToolSelection{}, false
	}

	tool, ok := knownTool(rs.Tool)
	if !ok {
		return model.ToolSelection{}, false
	}

	return model.ToolSelection{Tool: tool, Input: normalizeInput(rs.Input, userInput)}, true
}

// normalizeInput flattens whatever the model put in "input" into text: a
// plain string is kept, a nested object yields its query/input sub-field
// when present, anything else is stringified.
func normalizeInput(raw json.RawMessage, userInput string) string {
	if len(raw) == 0 {
		return userInput
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if q, ok := obj["query"].(string); ok {
			return q
		}
		if in, ok := obj["input"].(string); ok {
			return in
		}
		return fmt.Sprint(obj)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return fmt.Sprint(v)
	}
	return userInput
}

// matchToolName is the textual fallback: the first tool whose name appears
// as a substring of the raw response wins; otherwise no tool.
func matchToolName(raw, userInput string) model.ToolSelection {
	for _, tool := range model.AllTools {
		if strings.Contains(raw, string(tool)) {
			return model.ToolSelection{Tool: tool, Input: userInput}
		}
	}
	return model.ToolSelection{Tool: model.ToolNone, Input: userInput}
}

// ApplyOverrides corrects the model's choice on the two most error-prone
// boundaries. Domain questions routed to web search come back to vector
// search, and plain factual questions the model left tool-less go to web
// search.
func ApplyOverrides(sel model.ToolSelection, userInput string) model.ToolSelection {
	lowered := strings.ToLower(userInput)

	if sel.Tool == model.ToolWebSearch && containsAny(lowered, domainKeywords) {
		logx.Debug().Str("tool", string(sel.Tool)).
			Msg("overriding web search with vector search for knowledge-base query")
		sel.Tool = model.ToolVectorSearch
	}

	if sel.Tool == model.ToolNone && containsAny(lowered, generalKnowledgeKeywords) {
		logx.Debug().Msg("overriding no-tool selection with web search for general knowledge query")
		sel.Tool = model.ToolWebSearch
		if strings.TrimSpace(sel.Input) == "" {
			sel.Input = userInput
		}
	}

	return sel
}

// HeuristicSelect is the degraded path when the selector model call itself
// fails: selection from the keyword sets alone, defaulting to no tool.
func HeuristicSelect(userInput string) model.ToolSelection {
	lowered := strings.ToLower(userInput)

	switch {
	case containsAny(lowered, domainKeywords):
		return model.ToolSelection{Tool: model.ToolVectorSearch, Input: userInput}
	case containsAny(lowered, generalKnowledgeKeywords):
		return model.ToolSelection{Tool: model.ToolWebSearch, Input: userInput}
	default:
		return model.ToolSelection{Tool: model.ToolNone, Input: userInput}
	}
}

func knownTool(name string) (model.Tool, bool) {
	name = strings.TrimSpace(name)
	if name == string(model.ToolNone) {
		return model.ToolNone, true
	}
	for _, tool := range model.AllTools {
		if name == string(tool) {
			return tool, true
		}
	}
	return "", false
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
