package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/config"
	"portfolio-catalog/internal/db"
	"portfolio-catalog/internal/handler"
	applog "portfolio-catalog/internal/logger"
	"portfolio-catalog/internal/middleware"
	"portfolio-catalog/internal/repository"
	"portfolio-catalog/internal/service"
	"portfolio-catalog/internal/service/auth"
	"portfolio-catalog/internal/service/inquiry"
	"portfolio-catalog/internal/storage"
)

// Uploads are capped at 100MB per video plus a 5MB thumbnail and form fields.
const bodyLimit = 110 * 1024 * 1024

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := applog.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var database *sqlx.DB
	if cfg.CatalogDriver == "postgres" || cfg.ChangefeedDriver == "postgres" {
		var err error
		database, err = db.Init(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close(database)

		if cfg.MigrateOnStart {
			if err := db.RunMigrations(database.DB); err != nil {
				return err
			}
		}
	}

	redisClient, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		if cfg.ChangefeedDriver == "redis" {
			return fmt.Errorf("connect redis: %w", err)
		}
		log.Warn("redis unavailable, inquiry rate limiting disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	feed, publisher, err := newChangefeed(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}

	repos, err := repository.NewRepositories(cfg.CatalogDriver, database, publisher, log)
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	var limiter inquiry.RateLimiter
	if redisClient != nil {
		limiter = inquiry.NewRedisRateLimiter(redisClient, cfg.InquiryRateLimit, cfg.InquiryRateWindow)
	}

	services := service.NewServices(repos, feed, store, limiter, cfg, log)
	services.Galleries.Start(ctx)
	defer services.Galleries.Close()

	handlers := handler.NewHandlers(ctx, services, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	// Real client IP behind Cloudflare or a reverse proxy.
	app.Use(middleware.RequestInfo())
	app.Use(middleware.Metrics())

	setupRoutes(app, handlers, services.Auth)

	if mem, ok := store.(*storage.MemoryStore); ok {
		serveMemoryObjects(app, mem)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("shutdown incomplete", "error", err)
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"catalog", cfg.CatalogDriver,
		"changefeed", cfg.ChangefeedDriver,
		"storage", cfg.StorageDriver,
	)
	return app.Listen(":" + cfg.Port)
}

// newChangefeed selects the change notification backend. Background relays run
// until ctx is cancelled.
func newChangefeed(ctx context.Context, cfg *config.Config, redisClient *redis.Client, log *slog.Logger) (changefeed.Feed, changefeed.Publisher, error) {
	switch cfg.ChangefeedDriver {
	case "postgres":
		feed, err := changefeed.NewPostgresFeed(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		go func() {
			if err := feed.Run(ctx); err != nil {
				log.Error("postgres change feed stopped", "error", err)
			}
		}()
		return feed, changefeed.NopPublisher{}, nil
	case "redis":
		feed := changefeed.NewRedisFeed(redisClient, log)
		go func() {
			if err := feed.Run(ctx); err != nil {
				log.Error("redis change feed stopped", "error", err)
			}
		}()
		return feed, feed, nil
	case "memory":
		hub := changefeed.NewHub(log)
		return hub, hub, nil
	default:
		return nil, nil, fmt.Errorf("unknown changefeed driver %q", cfg.ChangefeedDriver)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	media := v1.Group("/media")
	media.Get("/", h.Media.List)
	media.Get("/stream", h.Stream.Stream)
	media.Get("/:id", h.Media.Get)

	v1.Post("/inquiries", h.Inquiry.Create)
	v1.Post("/auth/login", h.Auth.Login)

	admin := v1.Group("/admin", middleware.AdminRequired(authService))

	adminMedia := admin.Group("/media")
	adminMedia.Get("/", h.AdminMedia.List)
	adminMedia.Post("/", h.AdminMedia.Upload)
	adminMedia.Post("/links", h.AdminMedia.AddLink)
	adminMedia.Patch("/:id", h.AdminMedia.Update)
	adminMedia.Delete("/:id", h.AdminMedia.Delete)
}

// serveMemoryObjects makes URLs returned by the in-memory store resolvable in local runs.
func serveMemoryObjects(app *fiber.App, store *storage.MemoryStore) {
	app.Get("/objects/*", func(c *fiber.Ctx) error {
		obj, ok := store.Get(c.Params("*"))
		if !ok {
			return middleware.NotFound("Object not found")
		}
		c.Set(fiber.HeaderContentType, obj.ContentType)
		return c.Send(obj.Data)
	})
}
