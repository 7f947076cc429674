package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"socialconnect-server/config"
	_ "socialconnect-server/docs"
	"socialconnect-server/internal/handler"
	"socialconnect-server/internal/metrics"
	"socialconnect-server/internal/notifier"
	"socialconnect-server/internal/ports"
	"socialconnect-server/internal/ratelimit"
	"socialconnect-server/internal/repository"
	"socialconnect-server/internal/security"
	"socialconnect-server/internal/service"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title SocialConnect Auth API
// @version 1.0
// @description Регистрация, аутентификация и управление сессиями SocialConnect

// @host localhost:8080

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.Server.Addr)

	userRepo := repository.NewUserRepository(db)
	jwtRepo := repository.NewJWTRepository(db)
	usedTokenRepo := repository.NewUsedTokenRepository(db)
	registryRepo := repository.NewTokenRegistryRepository(redisClient)

	mailer, closeMailer := setupMailer(cfg)
	defer closeMailer()

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	jwtService := security.NewJWTService(&cfg.JWT)
	authService := service.NewAuthenticationService(jwtRepo, cfg, jwtService, userRepo, usedTokenRepo, registryRepo, mailer)
	userService := service.NewUserService(userRepo, jwtRepo)
	uploadService := service.NewUploadService(s3Service, cfg.S3Config.PresignDuration())

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	handler.Routes{
		Auth:     handler.NewAuthenticationHandler(authService),
		Users:    handler.NewUserHandler(userService, uploadService),
		Health:   handler.NewHealthHandler(db, redisClient),
		Verifier: jwtService,
		Limiter:  ratelimit.NewRedisLimiter(redisClient.Client, cfg.RateLimit.Limit, cfg.RateLimit.WindowDuration(), ""),
	}.Register(router)

	runServer(ctx, srv)
}

// setupMailer : Kafka, если заданы брокеры, иначе письма только пишутся в лог
func setupMailer(cfg *config.AppConfig) (ports.Mailer, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Println("KAFKA_BROKERS не заданы: письма будут только записываться в лог")
		return notifier.LogMailer{}, func() {}
	}

	mailer := notifier.NewKafkaMailer(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic)
	return mailer, func() {
		if err := mailer.Close(); err != nil {
			log.Printf("Ошибка при закрытии Kafka writer: %v", err)
		}
	}
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
