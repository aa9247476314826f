package bootstrap

import (
	"context"
	"fmt"

	"idea-contract-be/internal/config"
	"idea-contract-be/internal/controller"
	"idea-contract-be/internal/handler"
	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/internal/pkg/mailer"
	"idea-contract-be/internal/pkg/serverutils"
	"idea-contract-be/internal/repository/contract"
	"idea-contract-be/internal/repository/memory"
	"idea-contract-be/internal/repository/rediscache"
	"idea-contract-be/internal/repository/unitofwork"
	"idea-contract-be/internal/service"
	"idea-contract-be/internal/websocket"
	"idea-contract-be/pkg/ai/categorization"
	"idea-contract-be/pkg/ai/drafting"
	"idea-contract-be/pkg/ai/scoring"
	"idea-contract-be/pkg/events"
	"idea-contract-be/pkg/llm/factory"
	pktNats "idea-contract-be/pkg/nats"
	"idea-contract-be/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DraftingController controller.IDraftingController
	ContractController controller.IContractController
	HealthController   controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets
	SessionHandler *handler.SessionHandler
	WebSocketHub   *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every component. A nil db disables the contract catalog;
// unreachable Redis or NATS degrade to single-instance operation without events.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	workflowLogger := logger.NewIsolatedLogger(cfg.App.WorkflowLogPath)
	c := &Container{Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	var pinger controller.Pinger
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		if sqlDB, err := db.DB(); err == nil {
			pinger = sqlDB
		}
	} else {
		sysLogger.Warn("Bootstrap", "No database configured, contract catalog disabled", nil)
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.App.BaseURL,
		)
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. LLM collaborators
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.LLMAPIKey)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	assistant := drafting.NewAssistant(llmProvider)
	scorer := scoring.NewService(llmProvider, cfg.Ai.ScoringModel, workflowLogger)
	categorizer := categorization.NewService(llmProvider, cfg.Ai.CategorizationModel, workflowLogger)

	var defaultSections []workflow.Section
	if cfg.Workflow.CatalogFile != "" {
		defaultSections, err = workflow.LoadCatalogFile(cfg.Workflow.CatalogFile)
		if err != nil {
			return nil, err
		}
		sysLogger.Info("Bootstrap", "Loaded section catalog", map[string]interface{}{
			"file":     cfg.Workflow.CatalogFile,
			"sections": len(defaultSections),
		})
	}

	engine := workflow.NewEngine(workflow.Dependencies{
		Structurer: assistant,
		Catalog:    workflow.NewCatalogBuilder(categorizer, defaultSections, cfg.Workflow.DefaultDepartment, workflowLogger),
		Questioner: assistant,
		Drafter:    assistant,
		Reviewer:   scorer,
		Reviser:    assistant,
	}, workflow.Options{
		MaxQuestionAttempts: cfg.Workflow.MaxQuestionAttempts,
		PassScore:           cfg.Workflow.ReviewPassScore,
		MaxReviewIterations: cfg.Workflow.MaxReviewIterations,
		Department:          cfg.Workflow.DefaultDepartment,
	}, workflowLogger)

	// 4. Infrastructure
	// NATS
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS publisher unavailable, events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, pktNats.WithErrorHandler(func(subject string, err error) {
		sysLogger.Error("NATS", "Event handling failed", map[string]interface{}{"subject": subject, "error": err.Error()})
	}))
	if err != nil {
		sysLogger.Warn("Bootstrap", "NATS subscriber unavailable, notifications disabled", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	rdb := connectRedis(ctx, cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var sessions contract.SessionRepository
	switch {
	case cfg.Workflow.SessionStore == "redis" && rdb != nil:
		sessions = rediscache.NewSessionRepository(rdb, cfg.Workflow.SessionTTL)
	case cfg.Workflow.SessionStore == "redis":
		return nil, fmt.Errorf("session store redis requested but %s is unreachable", cfg.App.RedisURL)
	default:
		sessions = memory.NewSessionRepository(cfg.Workflow.SessionTTL)
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, logger.NewIsolatedLogger("logs/websocket.log"))

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.ScoringTopic, pubSub)
	contractService := service.NewContractService(
		uowFactory,
		scorer,
		categorizer,
		publisherService,
		eventPublisher,
		cfg.Workflow.DefaultDepartment,
		sysLogger,
	)
	draftingService := service.NewDraftingService(engine, sessions, contractService, eventPublisher, wsHub, sysLogger)

	c.ConsumerService = service.NewScoringConsumer(pubSub, cfg.Keys.ScoringTopic, contractService, sysLogger)
	if natsSub != nil {
		c.NotificationService = service.NewNotificationService(natsSub, emailService, cfg.SMTP.NotifyEmail, wsHub, sysLogger)
	}

	// 6. Controllers
	c.DraftingController = controller.NewDraftingController(draftingService)
	c.ContractController = controller.NewContractController(contractService, serverutils.NewJwtMiddleware(cfg.Keys.JwtSecret))
	c.HealthController = controller.NewHealthController(pinger)
	c.SessionHandler = handler.NewSessionHandler(wsHub, sysLogger)
	c.WebSocketHub = wsHub

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Bootstrap", "Redis unavailable, running single instance", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
