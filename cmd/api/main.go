package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/koruflicks/support-service/internal/access"
	httptransport "github.com/koruflicks/support-service/internal/api/http"
	"github.com/koruflicks/support-service/internal/api/http/handlers"
	"github.com/koruflicks/support-service/internal/config"
	"github.com/koruflicks/support-service/internal/identity"
	"github.com/koruflicks/support-service/internal/mail"
	"github.com/koruflicks/support-service/internal/observability"
	"github.com/koruflicks/support-service/internal/persistence"
	"github.com/koruflicks/support-service/internal/repository"
	"github.com/koruflicks/support-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	replyRepo := repository.NewReplyRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	verifier := identity.NewJWTVerifier(cfg.Auth.JWTSecret, identity.NewRedisRevocationStore(redis.Client))
	resolver := identity.NewResolver(verifier, logger)
	authMiddleware := identity.NewMiddleware(verifier, cfg.Auth.TokenHeader)
	evaluator := access.NewEvaluator(userRepo, redis.Client, logger)

	mailer := mail.NewSMTPMailer(cfg.SMTP, cfg.Notification, logger)
	notifier := service.NewNotificationService(mailer, cfg.Notification, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		ReplyRepo:  replyRepo,
		Access:     evaluator,
		Notifier:   notifier,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	ticketsHandler := handlers.NewTicketsHandler(ticketService, resolver, cfg.Auth.TokenHeader)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Tickets: ticketsHandler,
		Auth:    authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
