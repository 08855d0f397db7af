package model

// SearchType tags how a retrieved document was found.
type SearchType string

const (
	SearchTypeVector SearchType = "vector"
	SearchTypeText   SearchType = "text"
)

// RetrievedDocument is a corpus chunk returned by a retrieval tool. It lives
// for a single turn: produced by a tool, consumed by the synthesizer, dropped.
type RetrievedDocument struct {
	Text       string         `bson:"text" json:"text"`
	Metadata   map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	SearchType SearchType     `bson:"-" json:"search_type,omitempty"`
	Score      float64        `bson:"score,omitempty" json:"score,omitempty"`
}

// Tool enumerates the capabilities the selector can choose from.
type Tool string

const (
	ToolVectorSearch     Tool = "vector_search_tool"
	ToolCalculator       Tool = "calculator_tool"
	ToolWebSearch        Tool = "web_search_tool"
	ToolDocumentAnalysis Tool = "document_analysis_tool"
	ToolHybridSearch     Tool = "hybrid_search_tool"
	ToolNone             Tool = "none"
)

// AllTools lists every selectable capability in fallback-matching order.
var AllTools = []Tool{
	ToolVectorSearch,
	ToolCalculator,
	ToolWebSearch,
	ToolDocumentAnalysis,
	ToolHybridSearch,
}

// ToolSelection is the selector's decision for one turn.
// Invariant: Input is never empty when Tool != ToolNone; a blank or malformed
// model input is replaced with the original user utterance.
type ToolSelection struct {
	Tool  Tool   `json:"tool"`
	Input string `json:"input"`
}

// ToolOutcome carries a dispatched tool's result to the synthesizer.
// Exactly one shape is populated: retrieved documents (vector/hybrid),
// search text (web), or a direct answer that skips the response model
// (calculator result, document-analysis prompt, empty-retrieval notice).
type ToolOutcome struct {
	Tool       Tool
	Docs       []RetrievedDocument
	SearchText string
	Direct     string
}

// DocumentAnalysis is the result of the document analysis tool.
type DocumentAnalysis struct {
	Analysis  string `json:"analysis,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
	CharCount int    `json:"char_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ToolSpec describes one catalog entry of the static capability catalog.
type ToolSpec struct {
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}
