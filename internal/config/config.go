// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the bootstrap.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds configuration knobs for the HTTP server, the document store,
// the optional cache and the lifecycle event dispatcher.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	StaticDir       string
	MaxBodyBytes    int64

	StoreDriver           string
	MongoURI              string
	MongoDatabase         string
	MongoConnectTimeout   time.Duration
	MongoSelectionTimeout time.Duration
	SeedSampleData        bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers            []string
	KafkaTopic              string
	EventWorkers            int
	EventQueueBuffer        int
	EventQueueHighWatermark int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func listenv(key string) []string {
	v := getenv(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadEnv reads .env.local into the process environment when APP_ENV is
// "local". Variables already set in the environment win.
func LoadEnv() error {
	if os.Getenv("APP_ENV") != "local" {
		return nil
	}
	return godotenv.Load(getenv("ENV_FILE", ".env.local"))
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":"+getenv("PORT", "3000")),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		StaticDir:       getenv("STATIC_DIR", "./web"),
		MaxBodyBytes:    int64(atoienv("MAX_BODY_BYTES", 50<<20)),

		StoreDriver:           strings.ToLower(getenv("STORE_DRIVER", StoreMongo)),
		MongoURI:              getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getenv("MONGODB_DB", "ecommerce"),
		MongoConnectTimeout:   durenvms("MONGODB_CONNECT_TIMEOUT_MS", 10000),
		MongoSelectionTimeout: durenvms("MONGODB_SERVER_SELECTION_TIMEOUT_MS", 5000),
		SeedSampleData:        boolenv("SEED_SAMPLE_DATA", true),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       atoienv("REDIS_DB", 0),
		CacheTTL:      durenvs("CACHE_TTL_SECONDS", 300),

		KafkaBrokers:            listenv("KAFKA_BROKERS"),
		KafkaTopic:              getenv("KAFKA_TOPIC", "catalog.products"),
		EventWorkers:            atoienv("EVENT_WORKERS", 2),
		EventQueueBuffer:        atoienv("EVENT_QUEUE_BUFFER", 128),
		EventQueueHighWatermark: atoienv("EVENT_QUEUE_HIGH_WATERMARK", 5000),
	}
}
