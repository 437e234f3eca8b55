package bootstrap

import (
	"context"
	"log"
	"time"

	"askalma-be/internal/config"
	"askalma-be/internal/controller"
	"askalma-be/internal/pkg/logger"
	"askalma-be/internal/repository/memory"
	"askalma-be/internal/repository/unitofwork"
	"askalma-be/internal/service"
	"askalma-be/pkg/embedding"
	"askalma-be/pkg/llm/factory"

	pktNats "askalma-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController         controller.IChatController
	ConversationController controller.IConversationController

	// Shared infrastructure, exposed for shutdown
	Logger        logger.ILogger
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		var err error
		embeddingProvider, err = embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.EmbeddingModel)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
		}
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (embedding cache disabled)", err)
	} else {
		embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb, 24*time.Hour)
	}

	profileCache := memory.NewProfileCache(time.Duration(cfg.Retrieval.ProfileCacheTTLSec) * time.Second)

	// 4. Services
	var publisher service.EventPublisher
	if natsPub != nil {
		publisher = natsPub
	}

	chatService := service.NewChatService(
		uowFactory,
		embeddingProvider,
		llmProvider,
		profileCache,
		publisher,
		sysLogger,
		cfg.Retrieval,
		time.Duration(cfg.Ai.RequestTimeoutSec)*time.Second,
	)
	conversationService := service.NewConversationService(uowFactory, sysLogger)

	// 5. Controllers
	return &Container{
		ChatController:         controller.NewChatController(chatService),
		ConversationController: controller.NewConversationController(conversationService),

		Logger:        sysLogger,
		NatsPublisher: natsPub,
	}
}
