// ABOUTME: This file handles configuration management for the SurfSense client
// ABOUTME: Loads environment variables and validates backend and storage settings

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Storage backend names accepted by SURFSENSE_TOKEN_STORE.
const (
	StoreMemory     = "memory"
	StoreFile       = "file"
	StoreKubernetes = "kubernetes"
	StoreRedis      = "redis"
)

// Config holds all configuration for the SurfSense client.
type Config struct {
	// Service configuration
	ServiceName string
	LogLevel    string

	// Backend API configuration
	Backend BackendConfig

	// Auth endpoint configuration
	Auth AuthConfig

	// CSRF double-submit configuration
	CSRF CSRFConfig

	// Credential storage configuration
	Storage StorageConfig

	// Client-side rate limiting configuration
	RateLimit RateLimitConfig

	// Kubernetes configuration
	Kubernetes KubernetesConfig
}

// BackendConfig holds SurfSense backend settings.
type BackendConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// AuthConfig holds authentication endpoint settings.
type AuthConfig struct {
	LoginPath     string
	RefreshPath   string
	LogoutPath    string
	RefreshBuffer time.Duration
}

// CSRFConfig holds double-submit cookie settings.
type CSRFConfig struct {
	CookieName  string
	HeaderName  string
	ReissuePath string
}

// StorageConfig holds credential persistence settings.
type StorageConfig struct {
	Backend       string
	EnvFilePath   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// RateLimitConfig holds client-side throttle settings.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// KubernetesConfig holds Kubernetes integration settings.
type KubernetesConfig struct {
	InCluster       bool
	Namespace       string
	TokenSecretName string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnvOrDefault("SERVICE_NAME", "surfsense-client"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),

		Backend: BackendConfig{
			BaseURL: os.Getenv("SURFSENSE_BACKEND_URL"),
		},

		Auth: AuthConfig{
			LoginPath:   getEnvOrDefault("SURFSENSE_LOGIN_PATH", "/auth/jwt/login"),
			RefreshPath: getEnvOrDefault("SURFSENSE_REFRESH_PATH", "/auth/jwt/refresh"),
			LogoutPath:  getEnvOrDefault("SURFSENSE_LOGOUT_PATH", "/auth/jwt/logout"),
		},

		CSRF: CSRFConfig{
			CookieName:  getEnvOrDefault("SURFSENSE_CSRF_COOKIE", "surfsense_csrf_token"),
			HeaderName:  getEnvOrDefault("SURFSENSE_CSRF_HEADER", "X-CSRF-Token"),
			ReissuePath: getEnvOrDefault("SURFSENSE_CSRF_PATH", "/auth/csrf"),
		},

		Storage: StorageConfig{
			Backend:       getEnvOrDefault("SURFSENSE_TOKEN_STORE", StoreMemory),
			EnvFilePath:   getEnvOrDefault("SURFSENSE_ENV_FILE", ".surfsense.env"),
			RedisAddr:     getEnvOrDefault("SURFSENSE_REDIS_ADDR", "localhost:6379"),
			RedisPassword: os.Getenv("SURFSENSE_REDIS_PASSWORD"),
			KeyPrefix:     getEnvOrDefault("SURFSENSE_STORAGE_PREFIX", "surfsense"),
		},

		Kubernetes: KubernetesConfig{
			InCluster:       getEnvOrDefault("KUBERNETES_IN_CLUSTER", "false") == "true",
			Namespace:       getEnvOrDefault("KUBERNETES_NAMESPACE", "surfsense"),
			TokenSecretName: getEnvOrDefault("SURFSENSE_TOKEN_SECRET_NAME", "surfsense-client-token"),
		},
	}

	// Parse integer configurations
	if redisDB := os.Getenv("SURFSENSE_REDIS_DB"); redisDB != "" {
		if val, err := strconv.Atoi(redisDB); err == nil {
			cfg.Storage.RedisDB = val
		}
	}

	// Parse duration configurations
	if timeout := os.Getenv("SURFSENSE_REQUEST_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			cfg.Backend.RequestTimeout = duration
		} else {
			cfg.Backend.RequestTimeout = 30 * time.Second
		}
	} else {
		cfg.Backend.RequestTimeout = 30 * time.Second
	}

	if buffer := os.Getenv("SURFSENSE_REFRESH_BUFFER"); buffer != "" {
		if bufferSeconds, err := strconv.Atoi(buffer); err == nil {
			cfg.Auth.RefreshBuffer = time.Duration(bufferSeconds) * time.Second
		} else {
			cfg.Auth.RefreshBuffer = 5 * time.Minute
		}
	} else {
		cfg.Auth.RefreshBuffer = 5 * time.Minute
	}

	// Parse rate limit configurations
	cfg.RateLimit.Enabled = getEnvOrDefault("SURFSENSE_RATE_LIMIT_ENABLED", "false") == "true"
	if rps := os.Getenv("SURFSENSE_RATE_LIMIT_RPS"); rps != "" {
		if val, err := strconv.ParseFloat(rps, 64); err == nil && val > 0 {
			cfg.RateLimit.RequestsPerSecond = val
		} else {
			cfg.RateLimit.RequestsPerSecond = 10
		}
	} else {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	if burst := os.Getenv("SURFSENSE_RATE_LIMIT_BURST"); burst != "" {
		if val, err := strconv.Atoi(burst); err == nil && val > 0 {
			cfg.RateLimit.Burst = val
		} else {
			cfg.RateLimit.Burst = 20
		}
	} else {
		cfg.RateLimit.Burst = 20
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. The backend URL is not required
// here: the pipeline reports an unset base origin as a typed configuration
// error on first use, so commands that never touch the network still run.
func (c *Config) Validate() error {
	if c.Backend.BaseURL != "" {
		parsed, err := url.Parse(c.Backend.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("SURFSENSE_BACKEND_URL must be an absolute URL, got %q", c.Backend.BaseURL)
		}
	}

	switch c.Storage.Backend {
	case StoreMemory, StoreFile, StoreKubernetes, StoreRedis:
	default:
		return fmt.Errorf("SURFSENSE_TOKEN_STORE must be one of memory, file, kubernetes, redis, got %q", c.Storage.Backend)
	}

	if c.Storage.Backend == StoreFile && c.Storage.EnvFilePath == "" {
		return fmt.Errorf("SURFSENSE_ENV_FILE is required for the file token store")
	}

	if c.Storage.Backend == StoreKubernetes && c.Kubernetes.TokenSecretName == "" {
		return fmt.Errorf("SURFSENSE_TOKEN_SECRET_NAME is required for the kubernetes token store")
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
