package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	PostgresURL string `env:"POSTGRES_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:""`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	MaxBodySize int64  `env:"MAX_BODY_SIZE_BYTES" envDefault:"65536"` // 64KB
	TrackerURL  string `env:"TRACKER_URL" envDefault:"/tracker.js"`

	CollectorAddr string `env:"COLLECTOR_ADDR" envDefault:":8080"`
	DashboardAddr string `env:"DASHBOARD_ADDR" envDefault:":8081"`
	AdminAddr     string `env:"ADMIN_ADDR" envDefault:":9091"`

	// Global token bucket for the open /api/track endpoint.
	TrackRateLimit float64 `env:"TRACK_RATE_LIMIT" envDefault:"200"`
	TrackRateBurst int     `env:"TRACK_RATE_BURST" envDefault:"400"`

	WALPath        string `env:"WAL_PATH" envDefault:"./wal"`
	WALSegmentSize int64  `env:"WAL_SEGMENT_SIZE_BYTES" envDefault:"104857600"`   // 100MB
	WALMaxDiskSize int64  `env:"WAL_MAX_DISK_SIZE_BYTES" envDefault:"1073741824"` // 1GB

	ActiveWindow      time.Duration `env:"ACTIVE_WINDOW" envDefault:"5m"`
	StoreHealthPeriod time.Duration `env:"STORE_HEALTH_PERIOD" envDefault:"5s"`
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
