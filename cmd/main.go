package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/match-engine/config"
	"github.com/Dosada05/match-engine/db"
	"github.com/Dosada05/match-engine/handlers"
	"github.com/Dosada05/match-engine/locker"
	"github.com/Dosada05/match-engine/repositories"
	api "github.com/Dosada05/match-engine/routes"
	"github.com/Dosada05/match-engine/rules"
	"github.com/Dosada05/match-engine/services"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Механизм блокировок: без Redis создание матчей идёт по
	// деградированному пути без аренды.
	var matchLocker locker.Locker = locker.Unavailable()
	if cfg.RedisAddr != "" {
		redisLocker, err := locker.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisLocker.Close(); err != nil {
				logger.Error("failed to close Redis connection", slog.Any("error", err))
			}
		}()
		matchLocker = redisLocker
		logger.Info("Redis locker initialized", slog.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR is not set, match creation will run without distributed locking")
	}

	// Инициализация репозиториев
	transactor := repositories.NewSQLTransactor(dbConn)
	eventTeamRepo := repositories.NewPostgresEventTeamRepository(dbConn)
	templateRepo := repositories.NewPostgresTemplateRepository(dbConn)
	configRepo := repositories.NewPostgresMatchConfigRepository(dbConn)
	teamMatchRepo := repositories.NewPostgresTeamMatchRepository(dbConn)
	playerMatchRepo := repositories.NewPostgresPlayerMatchRepository(dbConn)
	setRepo := repositories.NewPostgresMatchSetRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	registry := rules.NewRegistry()
	templateService := services.NewTemplateService(transactor, templateRepo, configRepo)
	matchService := services.NewMatchService(
		transactor,
		eventTeamRepo,
		templateRepo,
		configRepo,
		teamMatchRepo,
		playerMatchRepo,
		setRepo,
		participantRepo,
		registry,
		matchLocker,
		cfg.LockAcquireTimeout,
		cfg.LockTTL,
		logger,
	)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP и маршрутизатора
	matchHandler := handlers.NewMatchHandler(matchService)
	templateHandler := handlers.NewTemplateHandler(templateService)

	router := chi.NewRouter()
	api.SetupRoutes(router, matchHandler, templateHandler)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
	}
	logger.Info("application exited")
}
