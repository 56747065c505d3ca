package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/disaster_routing_system/internal/config"
	"github.com/shenikar/disaster_routing_system/internal/credibility"
	v1 "github.com/shenikar/disaster_routing_system/internal/handler/http/v1"
	"github.com/shenikar/disaster_routing_system/internal/ingest"
	"github.com/shenikar/disaster_routing_system/internal/observability"
	"github.com/shenikar/disaster_routing_system/internal/repository"
	"github.com/shenikar/disaster_routing_system/internal/routing"
	"github.com/shenikar/disaster_routing_system/internal/service"
	"github.com/shenikar/disaster_routing_system/internal/telemetry"
	"github.com/shenikar/disaster_routing_system/pkg/logger"
	"github.com/shenikar/disaster_routing_system/pkg/postgres"
	redisclient "github.com/shenikar/disaster_routing_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/disaster_routing_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Disaster Routing System API
// @version 1.0
// @description Consolidates raw disaster signals into incidents and selects safe routes around them.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Метрики Prometheus
	metrics := observability.NewMetrics()

	// Инициализация издателя телеметрии решений
	decisionPublisher := telemetry.NewRedisDecisionPublisher(redisClient)

	// Инициализация и запуск воркера доставки телеметрии
	telemetryWorker := telemetry.NewWorker(redisClient, log, cfg)
	telemetryWorker.Start(ctx)

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient)
	signalRepo := repository.NewSignalRepository(dbpool)

	// Оценщик достоверности: LLM, если задан ключ, иначе таблица весов
	var scorer credibility.SourceScorer = credibility.NewDeterministicScorer()
	if cfg.GeminiAPIKey != "" {
		geminiScorer, err := credibility.NewGeminiScorer(ctx, cfg.GeminiAPIKey, cfg.PromptVersion, log)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Gemini scorer, falling back to deterministic")
		} else {
			scorer = geminiScorer
			log.Info("Gemini credibility scorer enabled")
		}
	}

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentRepo, signalRepo, log, cfg, decisionPublisher, metrics, nil)
	osrmClient := routing.NewOSRMClient(cfg.OSRMBaseURL, 10*time.Second)
	routeService := service.NewRouteService(incidentRepo, osrmClient, log, cfg, decisionPublisher, metrics)

	// Фоновая загрузка внешних лент
	if cfg.IngestEnabled {
		sources := []ingest.Source{
			ingest.NewNOAAClient("", cfg.IngestNOAAArea, cfg.IngestHTTPTimeout),
			ingest.NewUSGSClient("", cfg.IngestUSGSMinMag, cfg.IngestHTTPTimeout),
		}
		ingestWorker := ingest.NewWorker(sources, incidentService, log, cfg.IngestInterval, metrics, nil)
		ingestWorker.Start(ctx)
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, routeService, scorer, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	if len(cfg.APIKeys) > 0 {
		api.Use(v1.APIKeyAuthMiddleware(cfg, log))
	}
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Метрики Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
