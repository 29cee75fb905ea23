package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"storytime-server/internal/config"
	"storytime-server/internal/database"
	delivery "storytime-server/internal/delivery/http"
	"storytime-server/internal/repository"
	"storytime-server/internal/service"
	"storytime-server/pkg/ai"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		// В production .env может не использоваться
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	// Инициализация логгера
	initLogger()

	// Загрузка конфигурации; отсутствие API ключа - фатальная ошибка старта
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Инициализация соединения с БД
	log.Info().Msg("connecting to database...")
	ctx := context.Background()
	dbPool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbPool.Close()
	log.Info().Msg("database connection established")

	// Применяем миграции
	if err := database.RunMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	log.Info().Msg("database migrations applied")

	// Инициализация AI клиента
	aiClient, err := ai.New(ai.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		SpeechModel: cfg.AI.SpeechModel,
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     cfg.AI.TimeoutSeconds,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AI client")
	}

	// Инициализация репозиториев и сервисов
	storyRepo := repository.NewPgStoryRepository(dbPool)
	userRepo := repository.NewPgUserRepository(dbPool)
	settingsRepo := repository.NewPgSettingsRepository(dbPool)

	storyService := service.NewStoryService(storyRepo, aiClient)
	userService := service.NewUserService(userRepo, settingsRepo)

	handlers := delivery.New(storyService, userService, !cfg.IsProduction())

	// Настройка маршрутов
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		delivery.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	apiRouter := router.PathPrefix(cfg.Server.BasePath).Subrouter()
	apiRouter.Use(loggingMiddleware)
	handlers.RegisterRoutes(apiRouter)

	// Настройка CORS: запросы разрешены с любого origin,
	// preflight завершается пустым 200 ответом
	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("env", cfg.Env).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	gracefulShutdown(server)
}

// initLogger настраивает глобальный логгер
func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Caller().Logger()

	// В режиме разработки используем более читаемый вывод
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	}

	logLevel := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		logLevel = lvl
	}
	zerolog.SetGlobalLevel(logLevel)
}

// loggingMiddleware внедряет логгер в контекст запроса и логирует обращения
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctxWithLogger := log.Logger.WithContext(r.Context())
		next.ServeHTTP(w, r.WithContext(ctxWithLogger))
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// gracefulShutdown обеспечивает плавное завершение работы сервера
func gracefulShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped gracefully")
}
