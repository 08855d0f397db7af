package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/memories"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/nodes"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/graph/observers"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/tools"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (string, error)
}

// GraphConfig holds all components needed to build the graph.
type GraphConfig struct {
	ChatModels       *nodes.ChatModels
	Memories         *memories.Manager
	Retriever        *tools.Retriever
	Catalog          map[string]model.ToolSpec
	SelectorMaxTurns int
}

// GraphBuilder handles the construction of the agent response graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, model.QueryInput{
		SessionID: in.SessionID,
		Query:     in.Query,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

// BuildGraph constructs and compiles the agent graph, returning a Runner.
func BuildGraph(ctx context.Context, config *GraphConfig) (Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Selector == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.Memories == nil {
		return nil, fmt.Errorf("memory manager is nil")
	}
	if config.Retriever == nil {
		return nil, fmt.Errorf("retriever is nil")
	}
	if config.Catalog == nil {
		config.Catalog = tools.AvailableTools()
	}
	if config.SelectorMaxTurns <= 0 {
		config.SelectorMaxTurns = 5
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Agent graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	persist := nodes.NewAnswerPersistHandler(b.config.Memories, b.config.ChatModels.ResponseModelName)

	b.graph.AddLambdaNode(nodes.NodeContextLoader,
		nodes.NewContextLoaderNode(b.config.Memories),
		compose.WithStatePreHandler(nodes.NewContextLoaderPreHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeToolSelector,
		nodes.NewToolSelectorNode(b.config.ChatModels.Selector, b.config.Catalog, b.config.SelectorMaxTurns),
		compose.WithStatePostHandler(nodes.NewToolSelectorPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeVectorSearch, nodes.NewVectorSearchNode(b.config.Retriever))
	b.graph.AddLambdaNode(nodes.NodeHybridSearch, nodes.NewHybridSearchNode(b.config.Retriever))
	b.graph.AddLambdaNode(nodes.NodeCalculator, nodes.NewCalculatorNode())
	b.graph.AddLambdaNode(nodes.NodeWebSearch, nodes.NewWebSearchNode())
	b.graph.AddLambdaNode(nodes.NodeDocumentAnalysis, nodes.NewDocumentAnalysisNode())
	b.graph.AddLambdaNode(nodes.NodeNoTool, nodes.NewNoToolNode())

	b.graph.AddLambdaNode(nodes.NodeOutcomeRouter,
		nodes.NewOutcomeRouterNode(),
		compose.WithStatePostHandler(nodes.NewOutcomeRouterPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeDirectAnswer,
		nodes.NewDirectAnswerNode(),
		compose.WithStatePostHandler(persist),
	)

	b.graph.AddLambdaNode(nodes.NodeResponseAssembler,
		nodes.NewResponseAssemblerNode(),
	)

	b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
		b.config.ChatModels.Response,
		compose.WithStatePostHandler(persist),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeContextLoader},
		{nodes.NodeContextLoader, nodes.NodeToolSelector},
		{nodes.NodeVectorSearch, nodes.NodeOutcomeRouter},
		{nodes.NodeHybridSearch, nodes.NodeOutcomeRouter},
		{nodes.NodeCalculator, nodes.NodeOutcomeRouter},
		{nodes.NodeWebSearch, nodes.NodeOutcomeRouter},
		{nodes.NodeDocumentAnalysis, nodes.NodeOutcomeRouter},
		{nodes.NodeNoTool, nodes.NodeOutcomeRouter},
		{nodes.NodeResponseAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeDirectAnswer, compose.END},
		{nodes.NodeResponseChatModel, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches.
func (b *GraphBuilder) addBranches() error {
	selectionBranch := compose.NewGraphBranch(
		nodes.NewSelectionCondition(),
		map[string]bool{
			nodes.NodeVectorSearch:     true,
			nodes.NodeHybridSearch:     true,
			nodes.NodeCalculator:       true,
			nodes.NodeWebSearch:        true,
			nodes.NodeDocumentAnalysis: true,
			nodes.NodeNoTool:           true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeToolSelector, selectionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool selection branch")
		return fmt.Errorf("error adding tool selection branch: %w", err)
	}

	answerBranch := compose.NewGraphBranch(
		nodes.NewDirectAnswerCondition(),
		map[string]bool{
			nodes.NodeDirectAnswer:      true,
			nodes.NodeResponseAssembler: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeOutcomeRouter, answerBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding answer branch")
		return fmt.Errorf("error adding answer branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
