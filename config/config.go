package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every setting the pipeline needs. It is built once at
// process start and passed down explicitly; core packages never read the
// environment themselves.
type Config struct {
	Kafka      KafkaConfig
	Postgres   PostgresConfig
	Valkey     ValkeyConfig
	Naver      NaverConfig
	Browser    BrowserConfig
	DeadLetter DeadLetterConfig

	MaxRetries int
	RetryDelay time.Duration
}

type KafkaConfig struct {
	Broker  string
	GroupID string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// DSN renders the pool connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

type ValkeyConfig struct {
	Address  string
	Password string
	UseTLS   bool
}

type NaverConfig struct {
	ClientID     string
	ClientSecret string
}

type BrowserConfig struct {
	// RemoteURL points at the Selenium grid, e.g. http://localhost:4444/wd/hub.
	RemoteURL   string
	PageTimeout time.Duration
	// PoolSize caps concurrent browser sessions.
	PoolSize int
}

type DeadLetterConfig struct {
	Table    string
	Endpoint string
	Region   string
}

// Load builds the Config from the environment.
func Load() Config {
	return Config{
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:29092"),
			GroupID: getEnv("KAFKA_CONSUMER_GROUP_ID", "naverflow-ingest"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "news"),
		},
		Valkey: ValkeyConfig{
			Address:  getEnv("VALKEY_INIT_ADDRESS", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			UseTLS:   os.Getenv("VALKEY_TLS") == "true",
		},
		Naver: NaverConfig{
			ClientID:     os.Getenv("NAVER_CLIENT_ID"),
			ClientSecret: os.Getenv("NAVER_CLIENT_SECRET"),
		},
		Browser: BrowserConfig{
			RemoteURL:   getEnv("WEBDRIVER_URL", "http://localhost:4444/wd/hub"),
			PageTimeout: getDuration("BROWSER_TIMEOUT_SECONDS", 20*time.Second),
			PoolSize:    getInt("BROWSER_POOL_SIZE", 4),
		},
		DeadLetter: DeadLetterConfig{
			Table:    getEnv("DEADLETTER_TABLE", "IngestDeadLetters"),
			Endpoint: os.Getenv("AWS_ENDPOINT"),
			Region:   getEnv("AWS_REGION", "ap-northeast-2"),
		},
		MaxRetries: getInt("MAX_RETRIES", 3),
		RetryDelay: getDuration("RETRY_DELAY_SECONDS", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	secs, err := strconv.Atoi(os.Getenv(key))
	if err != nil || secs <= 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
