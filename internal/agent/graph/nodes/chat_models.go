package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey    string
	BaseURL   string
	Selector  *model.SelectorModelConfig
	Response  *model.ResponseModelConfig
	Utility   *model.UtilityModelConfig
	Embedding *model.EmbeddingConfig
}

// ChatModels holds the three generation models and the query embedder, all
// sharing one provider client. Selector runs near-deterministic, Response
// with phrasing freedom, Utility for summaries/preferences/analysis.
type ChatModels struct {
	Selector          einomodel.BaseChatModel
	Response          einomodel.BaseChatModel
	Utility           einomodel.BaseChatModel
	Embedder          model.Embedder
	SelectorModelName string
	ResponseModelName string
	UtilityModelName  string
}

// NewChatModels creates the chat models and embedder with the given configuration.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	selectorModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Selector.Model,
		Temperature: &config.Selector.Temperature,
		MaxTokens:   &config.Selector.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating selector model")
		return nil, fmt.Errorf("error creating selector model: %w", err)
	}

	responseModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Response.Model,
		Temperature: &config.Response.Temperature,
		MaxTokens:   &config.Response.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	utilityModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Utility.Model,
		Temperature: &config.Utility.Temperature,
		MaxTokens:   &config.Utility.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating utility model")
		return nil, fmt.Errorf("error creating utility model: %w", err)
	}

	return &ChatModels{
		Selector:          selectorModel,
		Response:          responseModel,
		Utility:           utilityModel,
		Embedder:          NewGeminiEmbedder(client, *config.Embedding),
		SelectorModelName: config.Selector.Model,
		ResponseModelName: config.Response.Model,
		UtilityModelName:  config.Utility.Model,
	}, nil
}
