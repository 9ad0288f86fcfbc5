package container

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/tripwise/app/db"
	"github.com/FACorreiaa/tripwise/config"
	"github.com/FACorreiaa/tripwise/internal/api/activity"
	"github.com/FACorreiaa/tripwise/internal/api/auth"
	"github.com/FACorreiaa/tripwise/internal/api/booking"
	"github.com/FACorreiaa/tripwise/internal/api/catalog"
	"github.com/FACorreiaa/tripwise/internal/api/establishment"
	generativeAI "github.com/FACorreiaa/tripwise/internal/api/generative_ai"
	"github.com/FACorreiaa/tripwise/internal/api/island"
	llmInteraction "github.com/FACorreiaa/tripwise/internal/api/llm_interaction"
	"github.com/FACorreiaa/tripwise/internal/api/report"
	"github.com/FACorreiaa/tripwise/internal/api/user"
	"github.com/FACorreiaa/tripwise/internal/api/visit"
	"github.com/FACorreiaa/tripwise/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client

	UserService    user.UserService
	LLMService     llmInteraction.LlmInteractionService
	CatalogService *catalog.Service

	AuthHandler          *auth.AuthHandler
	UserHandler          *user.HandlerImpl
	IslandHandler        *island.HandlerImpl
	EstablishmentHandler *establishment.HandlerImpl
	ActivityHandler      *activity.HandlerImpl
	VisitHandler         *visit.HandlerImpl
	BookingHandler       *booking.HandlerImpl
	LLMHandler           *llmInteraction.LlmInteractionHandler
	ReportHandler        *report.HandlerImpl
}

// NewContainer opens the database pool and wires every repository, service
// and handler. Migrations are expected to have run already.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, Pool: pool}

	cache, err := c.newCatalogCache(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Repositories
	userRepo := user.NewPostgresUserRepo(pool, logger)
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	islandRepo := island.NewIslandRepository(pool, logger)
	establishmentRepo := establishment.NewEstablishmentRepository(pool, logger)
	activityRepo := activity.NewActivityRepository(pool, logger)
	visitRepo := visit.NewVisitRepository(pool, logger)
	bookingRepo := booking.NewBookingRepository(pool, logger)

	// Services
	catalogService := catalog.NewCatalogService(cache, islandRepo, establishmentRepo, logger)
	authService := auth.NewAuthService(authRepo, cfg.JWT, logger)
	userService := user.NewUserService(userRepo, logger)
	islandService := island.NewIslandService(islandRepo, establishmentRepo, activityRepo, catalogService, logger)
	establishmentService := establishment.NewEstablishmentService(establishmentRepo, islandRepo, catalogService, logger)
	activityService := activity.NewActivityService(activityRepo, islandRepo, logger)
	visitService := visit.NewVisitService(visitRepo, islandRepo, logger)
	bookingService := booking.NewBookingService(bookingRepo, establishmentRepo, logger)
	reportService := report.NewReportService(userRepo, establishmentRepo, bookingRepo, visitService, logger)

	assembler := llmInteraction.NewContextAssembler(islandRepo, establishmentRepo, visitRepo)
	llmService := llmInteraction.NewLlmInteractionService(c.newOracle(ctx), assembler, islandRepo, catalogService,
		llmInteraction.TripLimits{MaxDays: cfg.LLM.MaxTripDays, MaxPeople: cfg.LLM.MaxTripPeople}, logger)

	c.UserService = userService
	c.LLMService = llmService
	c.CatalogService = catalogService

	// Handlers
	c.AuthHandler = auth.NewAuthHandler(authService, logger)
	c.UserHandler = user.NewHandlerImpl(userService, logger)
	c.IslandHandler = island.NewHandlerImpl(islandService, logger)
	c.EstablishmentHandler = establishment.NewHandlerImpl(establishmentService, logger)
	c.ActivityHandler = activity.NewHandlerImpl(activityService, logger)
	c.VisitHandler = visit.NewHandlerImpl(visitService, logger)
	c.BookingHandler = booking.NewHandlerImpl(bookingService, logger)
	c.LLMHandler = llmInteraction.NewLLMHandler(llmService, logger)
	c.ReportHandler = report.NewHandlerImpl(reportService, logger)

	return c, nil
}

func (c *Container) newCatalogCache(ctx context.Context) (catalog.Cache, error) {
	switch c.Config.Cache.Backend {
	case "", "memory":
		return catalog.NewMemoryCache(c.Config.Cache.TTL), nil
	case "redis":
		rc := c.Config.Repositories.Redis
		client, err := catalog.NewRedisClient(ctx, net.JoinHostPort(rc.Host, rc.Port), rc.Password, rc.DB)
		if err != nil {
			c.Logger.Error("Failed to connect to redis", slog.Any("error", err))
			return nil, err
		}
		c.Redis = client
		c.Logger.Info("Catalog cache backed by redis", slog.String("host", rc.Host))
		return catalog.NewRedisCache(client, c.Config.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Config.Cache.Backend)
	}
}

// newOracle never fails: without a usable client the API still serves the
// catalogue and chat requests report the model error in their reply.
func (c *Container) newOracle(ctx context.Context) generativeAI.Oracle {
	client, err := generativeAI.NewAIClient(ctx, c.Config.LLM, c.Logger)
	if err != nil {
		c.Logger.Warn("Language model disabled", slog.Any("error", err))
		return generativeAI.UnavailableOracle{Err: err}
	}
	return client
}

// RouterConfig exposes the handlers in the shape the router expects.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		Logger:               c.Logger,
		JWT:                  c.Config.JWT,
		AuthHandler:          c.AuthHandler,
		UserHandler:          c.UserHandler,
		IslandHandler:        c.IslandHandler,
		EstablishmentHandler: c.EstablishmentHandler,
		ActivityHandler:      c.ActivityHandler,
		VisitHandler:         c.VisitHandler,
		BookingHandler:       c.BookingHandler,
		LLMHandler:           c.LLMHandler,
		ReportHandler:        c.ReportHandler,
		AllowedOrigins:       c.Config.Server.AllowedOrigins,
		AssistantRateLimit:   c.Config.LLM.RequestsPerMinute,
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close redis client", slog.Any("error", err))
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
