package bootstrap

import (
	"context"
	"errors"
	"log"
	"strings"

	"storyspark-be/internal/config"
	"storyspark-be/internal/controller"
	"storyspark-be/internal/handler"
	"storyspark-be/internal/mapper"
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/internal/repository/memory"
	"storyspark-be/internal/service"
	"storyspark-be/internal/websocket"
	"storyspark-be/pkg/events"
	"storyspark-be/pkg/generation"
	"storyspark-be/pkg/llm/factory"

	pktNats "storyspark-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const APIPrefix = "/api"

type Container struct {
	// Controllers
	SessionController    controller.ISessionController
	GenerationController controller.IGenerationController

	// Background Services (Exposed for main.go to run)
	ConsumerService   service.IConsumerService
	GenerationService service.IGenerationService

	// WebSockets
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub

	Sessions *memory.SessionRepository
	Previews *memory.PreviewRepository
	Logger   logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	rdb     *redis.Client
}

// NewContainer wires the application with the model backend selected in cfg.
func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// Initialize LLM Provider based on Config
	baseURL := cfg.Ai.GeminiBaseURL
	if strings.EqualFold(cfg.Ai.LLMProvider, "ollama") {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  baseURL,
		APIKey:   cfg.Keys.GoogleGemini,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	model := cfg.Ai.LLMModel
	if model == "" {
		model = "provider default"
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, model)

	return NewContainerWithModel(cfg, generation.NewLLMClient(llmProvider), sysLogger)
}

// NewContainerWithModel wires the application around an existing model
// client. NATS and Redis are only used when their URLs are configured.
func NewContainerWithModel(cfg *config.Config, model generation.ModelClient, sysLogger logger.ILogger) *Container {
	// 1. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	publisherService := service.NewPublisherService(pubSub, service.EventTopic)

	// 2. Infrastructure
	var exporter events.Publisher
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			exporter = pub
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 3. Storage
	previews := memory.NewPreviewRepository()
	sessions := memory.NewSessionRepository(cfg.Session.TTL, func(sessionID string) {
		err := publisherService.Publish(context.Background(), events.NewEvent(events.SessionEnded, map[string]interface{}{
			events.SessionIDKey: sessionID,
		}))
		if err != nil {
			sysLogger.Warn("Container", "Failed to publish session end", map[string]interface{}{"error": err.Error()})
		}
	})

	// 4. Services
	sessionMapper := mapper.NewSessionMapper(APIPrefix)
	orchestrator := generation.NewOrchestrator(model, publisherService, sysLogger)

	sessionService := service.NewSessionService(sessions, previews, sessionMapper, cfg.Session.Secret, sysLogger)
	generationService := service.NewGenerationService(sessions, orchestrator, sessionMapper, cfg.Session.GenerationTimeout, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		service.EventTopic,
		sessions,
		sessionMapper,
		wsHub, // Hub implements SessionNotifier
		exporter,
		wsLogger,
	)

	// 5. Controllers
	return &Container{
		SessionController:    controller.NewSessionController(sessionService),
		GenerationController: controller.NewGenerationController(generationService),

		ConsumerService:   consumerService,
		GenerationService: generationService,

		StatusHandler: handler.NewStatusHandler(sessionService, wsHub, cfg.Session.Secret, wsLogger),
		WebSocketHub:  wsHub,

		Sessions: sessions,
		Previews: previews,
		Logger:   sysLogger,

		pubSub:  pubSub,
		natsPub: natsPub,
		rdb:     rdb,
	}
}

// Start runs the hub and the event consumer until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Shutdown waits for running generations, then closes the event bus and
// external connections.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if err := c.GenerationService.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.pubSub.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
