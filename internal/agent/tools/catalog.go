package tools

import (
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

// AvailableTools returns the static capability catalog consumed by the
// selector prompt and the presentation layers. No I/O.
func AvailableTools() map[string]model.ToolSpec {
	return map[string]model.ToolSpec{
		string(model.ToolVectorSearch): {
			Description: "Search for semantically similar documents using vector embeddings",
			Parameters:  []string{"query", "limit (optional)"},
		},
		string(model.ToolCalculator): {
			Description: "Perform mathematical calculations",
			Parameters:  []string{"mathematical_expression"},
		},
		string(model.ToolWebSearch): {
			Description: "Search the web for current information",
			Parameters:  []string{"search_query"},
		},
		string(model.ToolDocumentAnalysis): {
			Description: "Analyze and extract key information from documents",
			Parameters:  []string{"document_text"},
		},
		string(model.ToolHybridSearch): {
			Description: "Combine vector and text search for comprehensive results",
			Parameters:  []string{"query", "limit (optional)"},
		},
	}
}
