package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Server         ServerConfig        `yaml:"server"`
	DatabaseConfig DatabaseConfig      `yaml:"databaseConfig"`
	RedisConfig    RedisConfig         `yaml:"redisConfig"`
	S3Config       S3Config            `yaml:"s3Config"`
	JWT            JWTConfig           `yaml:"jwt"`
	Tokens         TokenLifetimeConfig `yaml:"tokens"`
	Kafka          KafkaConfig         `yaml:"kafka"`
	RateLimit      RateLimitConfig     `yaml:"rateLimit"`
}

// LoadConfig : читает config.yaml (если он есть), затем .env и переменные окружения.
// Переменные окружения имеют приоритет над файлом
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("файл конфигурации %s не найден, используются переменные окружения", path)
	default:
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	applyEnv(&cfg)

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.JWT.SecretKey, "JWT_SECRET")
	setString(&cfg.JWT.AccessTokenTTL, "JWT_ACCESS_TOKEN_EXPIRY")
	setString(&cfg.JWT.RefreshTokenTTL, "JWT_REFRESH_TOKEN_EXPIRY")
	setString(&cfg.DatabaseConfig.DSN, "DATABASE_URL")
	setString(&cfg.RedisConfig.Addr, "REDIS_ADDR")
	setString(&cfg.RedisConfig.Password, "REDIS_PASSWORD")
	setString(&cfg.Server.Addr, "SERVER_ADDR")
	setString(&cfg.Server.AppURL, "APP_URL")
	setString(&cfg.S3Config.Bucket, "S3_BUCKET")
	setString(&cfg.S3Config.Region, "S3_REGION")
	setString(&cfg.S3Config.Endpoint, "S3_ENDPOINT")

	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.RedisConfig.DB = db
		}
	}

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok && v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
}

func applyDefaults(cfg *AppConfig) error {
	setDefault(&cfg.Server.Addr, ":8080")
	setDefault(&cfg.Server.AppURL, "http://localhost:3000")
	setDefault(&cfg.JWT.AccessTokenTTL, "30m")
	setDefault(&cfg.JWT.RefreshTokenTTL, "7d")
	setDefault(&cfg.Tokens.PasswordResetMaxAge, "1h")
	setDefault(&cfg.Tokens.EmailVerificationMaxAge, "24h")
	setDefault(&cfg.RedisConfig.Addr, "localhost:6379")
	setDefault(&cfg.Kafka.EmailTopic, "auth.emails")
	setDefault(&cfg.S3Config.PresignTTL, "15m")
	setDefault(&cfg.RateLimit.Window, "1m")

	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 10
	}

	if cfg.JWT.SecretKey == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("не удалось сгенерировать секрет подписи: %w", err)
		}
		cfg.JWT.SecretKey = secret
		log.Println("JWT_SECRET не задан: сгенерирован временный секрет, токены не переживут перезапуск")
	}

	return nil
}

// PresignDuration : срок жизни pre-signed URL, 15 минут при ошибке разбора
func (c *S3Config) PresignDuration() time.Duration {
	d, err := time.ParseDuration(c.PresignTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

func (c *RateLimitConfig) WindowDuration() time.Duration {
	d, err := time.ParseDuration(c.Window)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

func setString(target *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*target = v
	}
}

func setDefault(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
