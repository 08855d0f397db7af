package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/analytics"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/repo"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/core"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
	pkgmongo "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/mongo"
	pkgredis "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent console,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Mongo pkgmongo.Config `envconfig:"MONGODB"`
	Redis pkgredis.Config `envconfig:"REDIS"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Selector  model.SelectorModelConfig
	Response  model.ResponseModelConfig
	Utility   model.UtilityModelConfig
	Embedding model.EmbeddingConfig
	Memory    model.MemoryConfig
	Retrieval model.RetrievalConfig

	// Redis session TTL, e.g. "24h"; zero keeps sessions forever.
	SessionTTL string `envconfig:"SESSION_TTL" default:"24h"`
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(core.ParseEnvironment(cfg.Environment))

	mongoClient, err := cfg.Mongo.New(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()

	db := mongoClient.Database(cfg.Mongo.Database)
	corpusRepo := repo.NewMongoCorpusRepository(db.Collection(cfg.Mongo.CorpusCollection))

	var memoryRepo model.MemoryRepository
	switch cfg.Memory.Backend {
	case "redis":
		ttl, err := time.ParseDuration(cfg.SessionTTL)
		if err != nil {
			log.Fatalf("Invalid SESSION_TTL '%s': %v", cfg.SessionTTL, err)
		}
		rdb, err := cfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		memoryRepo = repo.NewRedisMemoryRepository(rdb, ttl)
	case "memory":
		memoryRepo = repo.NewInMemoryRepository()
	default:
		memoryRepo = repo.NewMongoMemoryRepository(db.Collection(cfg.Mongo.MemoryCollection))
	}

	ag, err := agent.New(ctx, agent.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Selector:   cfg.Selector,
		Response:   cfg.Response,
		Utility:    cfg.Utility,
		Embedding:  cfg.Embedding,
		Memory:     cfg.Memory,
		Retrieval:  cfg.Retrieval,
		MemoryRepo: memoryRepo,
		CorpusRepo: corpusRepo,
	})
	if err != nil {
		log.Fatalf("Failed to build agent: %v", err)
	}

	runConsole(ctx, ag)
}

func runConsole(ctx context.Context, ag *agent.Agent) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("AI Agent with Tool Selection")
	fmt.Print("Session ID (blank for a new session): ")

	var sessionID string
	if scanner.Scan() {
		sessionID = strings.TrimSpace(scanner.Text())
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	fmt.Printf("Session: %s\n", sessionID)
	fmt.Println("Type 'help' for commands, 'quit' to exit.")
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit":
			fmt.Println("Goodbye!")
			return
		case "help":
			printHelp(ag)
			continue
		case "clear":
			cleared, err := ag.ClearSessionMemory(ctx, sessionID)
			if err != nil {
				fmt.Printf("Failed to clear session memory: %v\n", err)
			} else if cleared {
				fmt.Println("Session memory cleared.")
			} else {
				fmt.Println("No session memory to clear.")
			}
			continue
		case "status":
			printStatus(ctx, ag, sessionID)
			continue
		}

		fmt.Println("Processing...")
		answer := ag.GenerateResponse(ctx, sessionID, input)
		fmt.Printf("\nAgent: %s\n", answer)
	}
}

func printHelp(ag *agent.Agent) {
	fmt.Println("Commands:")
	fmt.Println("  help    show this message")
	fmt.Println("  status  show conversation statistics")
	fmt.Println("  clear   clear session memory")
	fmt.Println("  quit    exit")
	fmt.Println("\nAvailable tools:")

	catalog := ag.AvailableTools()
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-22s %s\n", name, catalog[name].Description)
	}
}

func printStatus(ctx context.Context, ag *agent.Agent, sessionID string) {
	analysis, err := ag.AnalyzeContext(ctx, sessionID)
	if err != nil {
		fmt.Printf("Failed to analyze conversation: %v\n", err)
		return
	}
	if analysis.Status == analytics.StatusNoHistory {
		fmt.Println("No conversation history yet.")
		return
	}

	fmt.Printf("Messages: %d total (%d user, %d assistant)\n",
		analysis.TotalMessages, analysis.UserMessages, analysis.AssistantMessages)
	if len(analysis.MainTopics) > 0 {
		fmt.Printf("Main topics: %s\n", strings.Join(analysis.MainTopics, ", "))
	}
	if analysis.MostCommonQuestion != "" {
		fmt.Printf("Most common question type: %s\n", analysis.MostCommonQuestion)
	}
}
