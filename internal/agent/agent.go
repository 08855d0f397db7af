// Package agent wires the retrieval tools, memory store, and the response
// graph into one conversational agent.
package agent

import (
	"context"
	"fmt"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/analytics"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/memories"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/nodes"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/tools"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// Config holds everything needed to compose the agent end-to-end.
type Config struct {
	APIKey  string
	BaseURL string

	Selector  model.SelectorModelConfig
	Response  model.ResponseModelConfig
	Utility   model.UtilityModelConfig
	Embedding model.EmbeddingConfig
	Memory    model.MemoryConfig
	Retrieval model.RetrievalConfig

	MemoryRepo model.MemoryRepository
	CorpusRepo model.CorpusRepository
}

// Agent is the public facade over the response graph and its side services.
type Agent struct {
	runner   graph.Runner
	memories *memories.Manager
	analyzer *analytics.Analyzer
	document *tools.DocumentAnalyzer
	catalog  map[string]model.ToolSpec
}

// New composes chat models, memory, retrieval, and the response graph.
func New(ctx context.Context, cfg Config) (*Agent, error) {
	if cfg.MemoryRepo == nil {
		return nil, fmt.Errorf("memory repo is nil")
	}
	if cfg.CorpusRepo == nil {
		return nil, fmt.Errorf("corpus repo is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Selector:  &cfg.Selector,
		Response:  &cfg.Response,
		Utility:   &cfg.Utility,
		Embedding: &cfg.Embedding,
	})
	if err != nil {
		return nil, err
	}

	mm := memories.NewManager(cfg.MemoryRepo, cms.Utility, cfg.Memory)
	retriever := tools.NewRetriever(cfg.CorpusRepo, cms.Embedder, cfg.Retrieval.Limit)
	catalog := tools.AvailableTools()

	runner, err := graph.BuildGraph(ctx, &graph.GraphConfig{
		ChatModels:       cms,
		Memories:         mm,
		Retriever:        retriever,
		Catalog:          catalog,
		SelectorMaxTurns: cfg.Memory.SelectorMaxTurns,
	})
	if err != nil {
		return nil, err
	}

	return &Agent{
		runner:   runner,
		memories: mm,
		analyzer: analytics.NewAnalyzer(cms.Utility),
		document: tools.NewDocumentAnalyzer(cms.Utility),
		catalog:  catalog,
	}, nil
}

// GenerateResponse runs one conversational turn. Failures inside the graph
// degrade to an error notice that is persisted as the assistant turn, so the
// transcript stays consistent with what the user saw.
func (a *Agent) GenerateResponse(ctx context.Context, sessionID, query string) string {
	answer, err := a.runner.Invoke(ctx, model.QueryInput{
		SessionID: sessionID,
		Query:     query,
	})
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("response generation failed")
		answer = fmt.Sprintf("Error generating response: %v", err)
		if perr := a.memories.AppendTurn(ctx, sessionID, model.RoleAssistant, answer, nil); perr != nil {
			logx.Error().Err(perr).Str("session_id", sessionID).Msg("failed to persist error notice")
		}
	}
	return answer
}

// SessionHistory returns the ordered transcript of a session; limit <= 0
// means the whole transcript.
func (a *Agent) SessionHistory(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	return a.memories.History(ctx, sessionID, limit)
}

// ClearSessionMemory removes every stored record of the session and reports
// whether anything was deleted.
func (a *Agent) ClearSessionMemory(ctx context.Context, sessionID string) (bool, error) {
	return a.memories.Clear(ctx, sessionID)
}

// StoreImportantFacts records facts worth keeping for the session.
func (a *Agent) StoreImportantFacts(ctx context.Context, sessionID string, facts []string) error {
	return a.memories.StoreFacts(ctx, sessionID, facts)
}

// ImportantFacts returns the session's stored facts, oldest first.
func (a *Agent) ImportantFacts(ctx context.Context, sessionID string) ([]string, error) {
	return a.memories.Facts(ctx, sessionID)
}

// StoreLongTermMemory records a note retrievable across sessions by kind.
func (a *Agent) StoreLongTermMemory(ctx context.Context, sessionID, kind, content string) error {
	return a.memories.StoreLongTerm(ctx, sessionID, kind, content)
}

// LongTermMemories returns persistent notes of the given kind, newest first.
func (a *Agent) LongTermMemories(ctx context.Context, kind string, limit int) ([]model.SessionMemoryRecord, error) {
	return a.memories.LongTerm(ctx, kind, limit)
}

// AnalyzeContext reports statistics and topical insight for the session.
func (a *Agent) AnalyzeContext(ctx context.Context, sessionID string) (analytics.ContextAnalysis, error) {
	turns, err := a.memories.History(ctx, sessionID, 0)
	if err != nil {
		return analytics.ContextAnalysis{}, err
	}
	return a.analyzer.AnalyzeContext(ctx, turns), nil
}

// AnalyzeDocument summarizes an explicit document payload.
func (a *Agent) AnalyzeDocument(ctx context.Context, text string) model.DocumentAnalysis {
	return a.document.Analyze(ctx, text)
}

// AvailableTools returns the capability catalog shown to users and to the
// selector model.
func (a *Agent) AvailableTools() map[string]model.ToolSpec {
	return a.catalog
}
