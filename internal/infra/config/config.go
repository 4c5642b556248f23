package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"

	ProofStorageMemory = "memory"
	ProofStorageS3     = "s3"
)

// Config aggregates application configuration values loaded from the
// environment and an optional .env file.
type Config struct {
	Env      string
	HTTPAddr string

	DataBackend string
	PostgresDSN string
	MongoURI    string
	MongoDB     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	IdempotencyTTL     time.Duration

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool
	ProofStorage     string

	TelegramBotToken    string
	TelegramChannelID   int64
	TelegramAPIEndpoint string

	JWTSecret  string
	SessionTTL time.Duration
	// AdminIDs are the Telegram user ids allowed to edit site settings.
	AdminIDs []int64

	CatalogFixtures        string
	CatalogRefreshInterval time.Duration
	SubmitRatePerMinute    int
	RequireAgeConfirmation bool

	SiteURL            string
	SupportContact     string
	PaymentDestination string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATA_BACKEND", BackendMemory)
	v.SetDefault("MONGO_DB", "storefront")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OUTBOX_POLL_INTERVAL", "500ms")
	v.SetDefault("RETRY_BACKOFF", "1s,5s,30s")
	v.SetDefault("IDEMP_TTL", "168h")
	v.SetDefault("S3_ENDPOINT", "http://localhost:9000")
	v.SetDefault("S3_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_SECRET_KEY", "minioadmin")
	v.SetDefault("S3_BUCKET", "storefront-proofs")
	v.SetDefault("S3_USE_SSL", "false")
	v.SetDefault("PROOF_STORAGE", ProofStorageMemory)
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("CATALOG_FIXTURES", "data/profiles.json")
	v.SetDefault("CATALOG_REFRESH_INTERVAL", "0s")
	v.SetDefault("SUBMIT_RATE_PER_MINUTE", 6)
	v.SetDefault("REQUIRE_AGE_CONFIRMATION", "true")
	v.SetDefault("SITE_URL", "http://localhost:8080")
}

// Load parses configuration from the current environment. A .env file in the
// working directory is read when present.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	defaults(v)
	_ = v.ReadInConfig()
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:                 v.GetString("APP_ENV"),
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		DataBackend:         strings.ToLower(strings.TrimSpace(v.GetString("DATA_BACKEND"))),
		PostgresDSN:         v.GetString("POSTGRES_DSN"),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDB:             v.GetString("MONGO_DB"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		KafkaTopicPrefix:    v.GetString("KAFKA_TOPIC_PREFIX"),
		S3Endpoint:          v.GetString("S3_ENDPOINT"),
		S3PublicEndpoint:    v.GetString("S3_PUBLIC_ENDPOINT"),
		S3AccessKey:         v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:         v.GetString("S3_SECRET_KEY"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		ProofStorage:        strings.ToLower(strings.TrimSpace(v.GetString("PROOF_STORAGE"))),
		TelegramBotToken:    v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramAPIEndpoint: v.GetString("TELEGRAM_API_ENDPOINT"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		CatalogFixtures:     v.GetString("CATALOG_FIXTURES"),
		SiteURL:             v.GetString("SITE_URL"),
		SupportContact:      v.GetString("SUPPORT_CONTACT"),
		PaymentDestination:  v.GetString("PAYMENT_DESTINATION"),
	}
	if brokers := v.GetString("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	for _, raw := range strings.Split(v.GetString("ADMIN_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", raw, err)
		}
		cfg.AdminIDs = append(cfg.AdminIDs, id)
	}

	var err error
	if cfg.RedisDB, err = parseInt(v, "REDIS_DB"); err != nil {
		return Config{}, err
	}
	if cfg.SubmitRatePerMinute, err = parseInt(v, "SUBMIT_RATE_PER_MINUTE"); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(v.GetString("TELEGRAM_CHANNEL_ID")); raw != "" {
		if cfg.TelegramChannelID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_CHANNEL_ID: %w", err)
		}
	}
	for key, dst := range map[string]*time.Duration{
		"OUTBOX_POLL_INTERVAL":     &cfg.OutboxPollInterval,
		"IDEMP_TTL":                &cfg.IdempotencyTTL,
		"SESSION_TTL":              &cfg.SessionTTL,
		"CATALOG_REFRESH_INTERVAL": &cfg.CatalogRefreshInterval,
	} {
		if *dst, err = parseDuration(v, key); err != nil {
			return Config{}, err
		}
	}
	for key, dst := range map[string]*bool{
		"S3_USE_SSL":               &cfg.S3UseSSL,
		"REQUIRE_AGE_CONFIRMATION": &cfg.RequireAgeConfirmation,
	} {
		if *dst, err = parseBool(v, key); err != nil {
			return Config{}, err
		}
	}
	for _, raw := range strings.Split(v.GetString("RETRY_BACKOFF"), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	switch cfg.DataBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required for DATA_BACKEND=postgres")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required for DATA_BACKEND=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
	}
	if cfg.ProofStorage != ProofStorageMemory && cfg.ProofStorage != ProofStorageS3 {
		return Config{}, fmt.Errorf("unknown PROOF_STORAGE %q", cfg.ProofStorage)
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChannelID == 0 {
		return Config{}, fmt.Errorf("TELEGRAM_CHANNEL_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return cfg, nil
}

// Default is the configuration main falls back to when Load fails.
func Default() Config {
	v := viper.New()
	defaults(v)
	cfg, err := load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Production reports whether the app runs outside local development.
func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "local", "test":
		return false
	}
	return true
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := v.GetString(key)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "f", "false", "no", "n", "off":
		return false, nil
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
