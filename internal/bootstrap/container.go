package bootstrap

import (
	"log"

	"bookchat-be/internal/config"
	"bookchat-be/internal/controller"
	"bookchat-be/internal/pkg/logger"
	"bookchat-be/internal/repository/contract"
	"bookchat-be/internal/repository/file"
	"bookchat-be/internal/repository/implementation"
	"bookchat-be/internal/repository/memory"
	"bookchat-be/internal/service"
	"bookchat-be/pkg/books"
	"bookchat-be/pkg/embedding"
	"bookchat-be/pkg/embedding/jina"
	"bookchat-be/pkg/llm/factory"
	"bookchat-be/pkg/rag/history"
	"bookchat-be/pkg/wiki"

	pktNats "bookchat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController
	BookController controller.IBookController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// NATS connection, closed on shutdown
	NatsPublisher *pktNats.Publisher
}

// NewContainer wires the dependency graph. db may be nil when the file
// vectorstore backend is configured.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Vector Index Backend
	var corpusRepo contract.CorpusRepository
	if cfg.Vectorstore.Backend == "pgvector" {
		if db == nil {
			log.Fatalf("[FATAL] pgvector backend requires a database connection")
		}
		corpusRepo = implementation.NewBookChunkRepository(db)
		log.Printf("[INFO] Using Vectorstore Backend: PGVECTOR")
	} else {
		repo, err := file.NewCorpusRepository(cfg.Vectorstore.RootDir)
		if err != nil {
			log.Fatalf("[FATAL] Failed to open file vectorstore at %s: %v", cfg.Vectorstore.RootDir, err)
		}
		corpusRepo = repo
		log.Printf("[INFO] Using Vectorstore Backend: FILE (%s)", cfg.Vectorstore.RootDir)
	}

	// 4. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// External collaborators
	wikiFetcher := wiki.NewClient()
	booksClient := books.NewClient(cfg.Keys.GoogleBooks)
	metadataCache := memory.NewMetadataCache()

	// Chatty preparation logs go to their own file
	consumerLogger := logger.NewIsolatedLogger("logs/consumer.log")

	// 6. Services
	corpusService := service.NewCorpusService(
		corpusRepo,
		embeddingProvider,
		natsPub,
		sysLogger,
		cfg.Ai.ChunkSize,
	)

	bookService := service.NewBookService(booksClient, metadataCache, sysLogger)

	chatService := service.NewChatService(
		corpusService,
		bookService,
		wikiFetcher,
		llmProvider,
		history.NewCompressor(llmProvider),
		sysLogger,
		cfg.Ai.TopK,
	)

	publisherService := service.NewPublisherService(cfg.Keys.PrepareTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.PrepareTopic,
		corpusService,
		wikiFetcher,
		consumerLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService, publisherService, sysLogger),
		BookController:  controller.NewBookController(bookService),
		ConsumerService: consumerService,
		NatsPublisher:   natsPub,
	}
}
