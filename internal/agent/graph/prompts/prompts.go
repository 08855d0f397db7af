package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

//go:embed template/selector_prompt.txt
var selectorSystemPrompt string

//go:embed template/vector_prompt.txt
var vectorSystemPrompt string

//go:embed template/web_prompt.txt
var webSystemPrompt string

//go:embed template/hybrid_prompt.txt
var hybridSystemPrompt string

// GeneralSystemPrompt is the minimal instruction for turns that need no tool.
const GeneralSystemPrompt = "You are a helpful AI assistant. Respond to the user's prompt based on the conversation history."

// RenderSelectorSystem renders the tool-selection system prompt with the
// capability catalog inlined as JSON.
func RenderSelectorSystem(ctx context.Context, catalog map[string]model.ToolSpec) (string, error) {
	catalogJSON, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool catalog: %w", err)
	}

	// Render known tokens only; the template body contains JSON braces that
	// must not be treated as format directives.
	content := strings.NewReplacer(
		"{available_tools}", string(catalogJSON),
	).Replace(selectorSystemPrompt)

	return renderSystem(ctx, content)
}

// RenderVectorSystem renders the retrieval-grounded answer instruction with
// the numbered document blocks inlined.
func RenderVectorSystem(ctx context.Context, contextText string) (string, error) {
	content := strings.NewReplacer("{context}", contextText).Replace(vectorSystemPrompt)
	return renderSystem(ctx, content)
}

// RenderWebSystem embeds the search text verbatim into the answer instruction.
func RenderWebSystem(ctx context.Context, searchResults string) (string, error) {
	content := strings.NewReplacer("{search_results}", searchResults).Replace(webSystemPrompt)
	return renderSystem(ctx, content)
}

// RenderHybridSystem renders the reconciliation instruction with the
// partitioned semantic/keyword sections inlined.
func RenderHybridSystem(ctx context.Context, contextText string) (string, error) {
	content := strings.NewReplacer("{context}", contextText).Replace(hybridSystemPrompt)
	return renderSystem(ctx, content)
}

// renderSystem wraps the prepared content through the Eino prompt component
// using a messages placeholder, which both validates the result and emits
// prompt callbacks for observers.
func renderSystem(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("system prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
