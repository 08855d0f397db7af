package nodes

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/memories"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/parsers"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/prompts"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/tools"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// Graph node names.
const (
	NodeContextLoader     = "ContextLoader"
	NodeToolSelector      = "ToolSelector"
	NodeVectorSearch      = "VectorSearchTool"
	NodeCalculator        = "CalculatorTool"
	NodeWebSearch         = "WebSearchTool"
	NodeDocumentAnalysis  = "DocumentAnalysisTool"
	NodeHybridSearch      = "HybridSearchTool"
	NodeNoTool            = "NoTool"
	NodeOutcomeRouter     = "OutcomeRouter"
	NodeDirectAnswer      = "DirectAnswer"
	NodeResponseAssembler = "ResponseAssembler"
	NodeResponseChatModel = "ResponseChatModel"
)

// Fixed user-visible strings for paths that never reach the response model.
const (
	noKnowledgeBaseResultsMsg = "I couldn't find relevant information in the knowledge base to answer your question."
	noHybridResultsMsg        = "I couldn't find relevant information to answer your question."
	documentRequestMsg        = "Please provide a document to analyze. You can paste the text content here."
)

// NewContextLoaderPreHandler resets per-turn state and records the session.
func NewContextLoaderPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.SessionID = in.SessionID
		s.UserInput = in.Query
		s.History = nil
		s.Summary = ""
		s.Preferences = nil
		s.Selection = nil
		s.Outcome = nil
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewContextLoaderNode creates the node that persists the inbound turn and
// gathers conversation context. The transcript is loaded before the inbound
// turn is written, so the current utterance never appears twice in prompts.
// Persistence and derived-memory failures are logged and degrade to empty
// context; they never block the turn.
func NewContextLoaderNode(mm *memories.Manager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (model.QueryInput, error) {
		history, err := mm.History(ctx, input.SessionID, 0)
		if err != nil {
			logx.Error().Err(err).Str("session_id", input.SessionID).
				Msg("failed to load session history, continuing with empty context")
			history = nil
		}

		if err := mm.AppendTurn(ctx, input.SessionID, model.RoleUser, input.Query, nil); err != nil {
			logx.Error().Err(err).Str("session_id", input.SessionID).
				Msg("failed to persist user turn, continuing from in-memory value")
		}

		summary := mm.Summary(ctx, history)
		preferences := mm.Preferences(ctx, history)

		err = compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.History = history
			s.Summary = summary
			s.Preferences = preferences
			return nil
		})
		if err != nil {
			return model.QueryInput{}, fmt.Errorf("failed to access state: %w", err)
		}

		return input, nil
	})
}

// NewToolSelectorNode creates the capability-selection node. The selector
// model is called once at low temperature; its structured answer goes through
// the parser and the deterministic overrides. A transport failure degrades to
// keyword-only selection, never to an error.
func NewToolSelectorNode(selector einomodel.BaseChatModel, catalog map[string]model.ToolSpec, maxTurns int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) (model.ToolSelection, error) {
		var history []model.ChatTurn
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			history = s.History
			return nil
		})
		if err != nil {
			return model.ToolSelection{}, fmt.Errorf("failed to access state: %w", err)
		}

		systemPrompt, err := prompts.RenderSelectorSystem(ctx, catalog)
		if err != nil {
			return model.ToolSelection{}, fmt.Errorf("render selector system prompt: %w", err)
		}

		messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
		messages = append(messages, toSchemaMessages(trimTail(history, maxTurns))...)
		messages = append(messages, schema.UserMessage(input.Query))

		out, err := selector.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(err).Str("session_id", input.SessionID).
				Msg("selector model call failed, degrading to keyword heuristics")
			return parsers.HeuristicSelect(input.Query), nil
		}

		selection := parsers.ParseSelection(out.Content, input.Query)
		return parsers.ApplyOverrides(selection, input.Query), nil
	})
}

// NewToolSelectorPostHandler stores the decision in state and logs it.
func NewToolSelectorPostHandler() func(context.Context, model.ToolSelection, *model.AppState) (model.ToolSelection, error) {
	return func(ctx context.Context, out model.ToolSelection, s *model.AppState) (model.ToolSelection, error) {
		s.Selection = &out
		logx.Debug().
			Str("session_id", s.SessionID).
			Str("tool", string(out.Tool)).
			Str("tool_input", out.Input).
			Msg("Tool selected")
		return out, nil
	}
}

// NewSelectionCondition routes the selection to the matching tool node.
func NewSelectionCondition() func(context.Context, model.ToolSelection) (string, error) {
	return func(ctx context.Context, sel model.ToolSelection) (string, error) {
		switch sel.Tool {
		case model.ToolVectorSearch:
			return NodeVectorSearch, nil
		case model.ToolCalculator:
			return NodeCalculator, nil
		case model.ToolWebSearch:
			return NodeWebSearch, nil
		case model.ToolDocumentAnalysis:
			return NodeDocumentAnalysis, nil
		case model.ToolHybridSearch:
			return NodeHybridSearch, nil
		default:
			return NodeNoTool, nil
		}
	}
}

// NewVectorSearchNode retrieves semantically similar documents. An empty
// result becomes a fixed notice that skips the response model.
func NewVectorSearchNode(retriever *tools.Retriever) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, sel model.ToolSelection) (model.ToolOutcome, error) {
		docs := retriever.VectorSearch(ctx, sel.Input)
		if len(docs) == 0 {
			return model.ToolOutcome{Tool: sel.Tool, Direct: noKnowledgeBaseResultsMsg}, nil
		}
		return model.ToolOutcome{Tool: sel.Tool, Docs: docs}, nil
	})
}

// NewHybridSearchNode combines vector and keyword retrieval.
func NewHybridSearchNode(retriever *tools.Retriever) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, sel model.ToolSelection) (model.ToolOutcome, error) {
		docs := retriever.HybridSearch(ctx, sel.Input)
		if len(docs) == 0 {
			return model.ToolOutcome{Tool: sel.Tool, Direct: noHybridResultsMsg}, nil
		}
		return model.ToolOutcome{Tool: sel.Tool, Docs: docs}, nil
	})
}

// NewCalculatorNode evaluates the expression; the result text is the final
// answer with no further generation.
func NewCalculatorNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, sel model.ToolSelection) (model.ToolOutcome, error) {
		return model.ToolOutcome{Tool: sel.Tool, Direct: tools.Calculate(sel.Input)}, nil
	})
}

// NewWebSearchNode runs the placeholder web lookup.
func NewWebSearchNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, sel model.ToolSelection) (model.ToolOutcome, error) {
		return model.ToolOutcome{Tool: sel.Tool, SearchText: tools.WebSearch(sel.Input)}, nil
	})
}

// NewDocumentAnalysisNode short-circuits with a request for document text.
// The analysis tool needs an explicit document payload the conversational
// turn does not carry; presentation layers call it directly instead.
func NewDocumentAnalysisNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, sel model.ToolSelection) (model.ToolOutcome, error) {
		return model.ToolOutcome{Tool: sel.Tool, Direct: documentRequestMsg}, nil
	})
}

// NewNoToolNode passes the turn straight to general conversation.
func NewNoToolNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, sel model.ToolSelection) (model.ToolOutcome, error) {
		return model.ToolOutcome{Tool: model.ToolNone}, nil
	})
}

// NewOutcomeRouterNode is the junction all tool nodes feed into.
func NewOutcomeRouterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, outcome model.ToolOutcome) (model.ToolOutcome, error) {
		return outcome, nil
	})
}

// NewOutcomeRouterPostHandler stores the outcome in state and logs it.
func NewOutcomeRouterPostHandler() func(context.Context, model.ToolOutcome, *model.AppState) (model.ToolOutcome, error) {
	return func(ctx context.Context, out model.ToolOutcome, s *model.AppState) (model.ToolOutcome, error) {
		s.Outcome = &out
		logx.Debug().
			Str("session_id", s.SessionID).
			Str("tool", string(out.Tool)).
			Int("documents", len(out.Docs)).
			Bool("direct", out.Direct != "").
			Msg("Tool outcome ready")
		return out, nil
	}
}

// NewDirectAnswerCondition routes outcomes that already hold the final text
// (calculator results, document requests, empty-retrieval notices) straight
// to the direct answer node; everything else goes through synthesis.
func NewDirectAnswerCondition() func(context.Context, model.ToolOutcome) (string, error) {
	return func(ctx context.Context, outcome model.ToolOutcome) (string, error) {
		if outcome.Direct != "" {
			return NodeDirectAnswer, nil
		}
		return NodeResponseAssembler, nil
	}
}

// NewDirectAnswerNode wraps a precomputed answer as the assistant message.
func NewDirectAnswerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, outcome model.ToolOutcome) (*schema.Message, error) {
		return schema.AssistantMessage(outcome.Direct, nil), nil
	})
}

// NewResponseAssemblerNode builds the final-generation conversation: rolling
// summary, prior transcript, current utterance, and the capability-specific
// system instruction placed by the supplement-don't-override rule.
func NewResponseAssemblerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, outcome model.ToolOutcome) ([]*schema.Message, error) {
		var (
			history   []model.ChatTurn
			summary   string
			userInput string
		)
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			history = s.History
			summary = s.Summary
			userInput = s.UserInput
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		var conversation []*schema.Message
		if summary != "" && summary != memories.NoHistorySummary {
			conversation = append(conversation,
				schema.SystemMessage(fmt.Sprintf("Previous conversation summary: %s", summary)))
		}
		conversation = append(conversation, toSchemaMessages(history)...)
		conversation = append(conversation, schema.UserMessage(userInput))

		instruction, err := buildInstruction(ctx, outcome)
		if err != nil {
			return nil, err
		}

		return placeSystemInstruction(conversation, instruction), nil
	})
}

// buildInstruction renders the capability-specific system instruction.
func buildInstruction(ctx context.Context, outcome model.ToolOutcome) (string, error) {
	switch outcome.Tool {
	case model.ToolVectorSearch:
		return prompts.RenderVectorSystem(ctx, renderNumberedDocs(outcome.Docs))
	case model.ToolWebSearch:
		return prompts.RenderWebSystem(ctx, outcome.SearchText)
	case model.ToolHybridSearch:
		return prompts.RenderHybridSystem(ctx, renderHybridSections(outcome.Docs))
	default:
		return prompts.GeneralSystemPrompt, nil
	}
}

// renderNumberedDocs concatenates retrieved documents as numbered blocks.
func renderNumberedDocs(docs []model.RetrievedDocument) string {
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("Document %d:\n%s", i+1, doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// renderHybridSections partitions results by origin into two labelled
// sections, numbering each independently.
func renderHybridSections(docs []model.RetrievedDocument) string {
	var vectorDocs, textDocs []model.RetrievedDocument
	for _, doc := range docs {
		if doc.SearchType == model.SearchTypeText {
			textDocs = append(textDocs, doc)
		} else {
			vectorDocs = append(vectorDocs, doc)
		}
	}

	var b strings.Builder
	if len(vectorDocs) > 0 {
		b.WriteString("Semantic Search Results:\n")
		b.WriteString(renderNumberedDocs(vectorDocs))
	}
	if len(textDocs) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Keyword Search Results:\n")
		b.WriteString(renderNumberedDocs(textDocs))
	}
	return b.String()
}

// NewAnswerPersistHandler persists the outgoing assistant message and logs
// usage cost when the provider reports it. Attached as post-handler to every
// terminal node; a persistence failure is logged, the answer still returned.
func NewAnswerPersistHandler(mm *memories.Manager, modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, s *model.AppState) (*schema.Message, error) {
		if out == nil {
			return out, nil
		}

		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			s.TotalCostUSD += totalC
			logx.Debug().
				Str("session_id", s.SessionID).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", s.TotalCostUSD).
				Msg("LLM usage")
		}

		if strings.TrimSpace(out.Content) != "" {
			if err := mm.AppendTurn(ctx, s.SessionID, model.RoleAssistant, out.Content, nil); err != nil {
				logx.Error().Err(err).Str("session_id", s.SessionID).
					Msg("failed to persist assistant turn")
			}
		}

		return out, nil
	}
}
