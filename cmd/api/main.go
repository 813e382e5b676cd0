package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nysenate/audit-utils/internal/api/http"
	"github.com/nysenate/audit-utils/internal/api/http/handlers"
	"github.com/nysenate/audit-utils/internal/auth"
	"github.com/nysenate/audit-utils/internal/config"
	"github.com/nysenate/audit-utils/internal/directory"
	"github.com/nysenate/audit-utils/internal/fields"
	"github.com/nysenate/audit-utils/internal/observability"
	"github.com/nysenate/audit-utils/internal/persistence"
	"github.com/nysenate/audit-utils/internal/reporting"
	"github.com/nysenate/audit-utils/internal/repository"
	"github.com/nysenate/audit-utils/internal/requestcode"
	"github.com/nysenate/audit-utils/internal/tracking"
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

	loc, err := time.LoadLocation(cfg.Reporting.TimeZone)
	if err != nil {
		logger.Fatal("invalid reporting time zone", zap.String("zone", cfg.Reporting.TimeZone), zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	mapping := fields.Mapping{
		EmployeeID:     cfg.Fields.EmployeeID,
		TargetSystem:   cfg.Fields.TargetSystem,
		AccountAction:  cfg.Fields.AccountAction,
		EmployeeName:   cfg.Fields.EmployeeName,
		EmployeeUID:    cfg.Fields.EmployeeUID,
		EmployeeEmail:  cfg.Fields.EmployeeEmail,
		EmployeePhone:  cfg.Fields.EmployeePhone,
		EmployeeStatus: cfg.Fields.EmployeeStatus,
		EmployeeOffice: cfg.Fields.EmployeeOffice,
	}
	if err := mapping.Validate(); err != nil {
		logger.Warn("custom-field configuration incomplete", zap.Error(err))
	}

	mapper := requestcode.New(cfg.Reporting.RequestCodeOverrides)

	store := repository.NewIssueStore(pg.PoolHandle())
	trackingSvc := tracking.NewService(store, mapping, mapper)

	essClient := directory.NewClient(cfg.Directory, logger)
	source := directory.NewCachedSource(essClient, redis.Client, cfg.Redis.SearchCacheTTL(), logger)

	dailyAgg := reporting.NewDailyAggregator(source, trackingSvc, loc, logger)
	weeklyAgg := reporting.NewWeeklyAggregator(store, mapping, mapper, loc, logger)
	monthlyAgg := reporting.NewMonthlyAggregator(store, trackingSvc, mapping, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Reports:        handlers.NewReportsHandler(dailyAgg, weeklyAgg, monthlyAgg, loc, logger),
		Employees:      handlers.NewEmployeesHandler(source, mapping, logger),
		Settings:       handlers.NewSettingsHandler(mapping, mapper),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
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
