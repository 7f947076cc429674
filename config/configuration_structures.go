package config

type ServerConfig struct {
	Addr   string `yaml:"addr"`
	AppURL string `yaml:"app_url"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	PublicURLBase string `yaml:"public_url_base"`
	Local         bool   `yaml:"local"`
	// PresignTTL : срок жизни pre-signed URL в формате time.ParseDuration
	PresignTTL string `yaml:"presign_ttl"`
}

// JWTConfig : срок жизни токенов задаётся строкой вида <число><m|h|d>
type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// TokenLifetimeConfig : окна жизни одноразовых self-encoded токенов
type TokenLifetimeConfig struct {
	PasswordResetMaxAge     string `yaml:"password_reset_max_age"`
	EmailVerificationMaxAge string `yaml:"email_verification_max_age"`
}

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	EmailTopic string   `yaml:"email_topic"`
}

type RateLimitConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}
