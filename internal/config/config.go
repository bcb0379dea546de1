package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultStoreURL = "mongodb://localhost:27017/mern_crud_demo"

type Config struct {
	Env  string
	Port int

	// StoreURL selects the backend by scheme: mongodb://, postgres://, memory://
	StoreURL     string
	StoreTimeout time.Duration

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	RateLimit       int
	RateLimitWindow time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEndpoint    string
	OTelServiceName string
	OTelSampleRatio float64
}

// LoadDotEnv reads .env when present. Real environment variables win.
func LoadDotEnv(files ...string) {
	err := godotenv.Load(files...)

	if err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}
}

func Load() Config {
	return Config{
		Env:                getEnv("APP_ENV", "dev"),
		Port:               getEnvInt("PORT", 5000),
		StoreURL:           storeURL(),
		StoreTimeout:       getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RateLimit:          getEnvInt("RATE_LIMIT", 120),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		OTelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelServiceName:    getEnv("OTEL_SERVICE_NAME", "usershub-api"),
		OTelSampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
	}
}

// STORE_URL, then the MONGODB_URI name older deployments used
func storeURL() string {
	if v := getEnv("STORE_URL", ""); v != "" {
		return v
	}

	return getEnv("MONGODB_URI", defaultStoreURL)
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)

		if err != nil {
			slog.Warn("invalid number in env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil || d <= 0 {
			slog.Warn("invalid duration in env, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
