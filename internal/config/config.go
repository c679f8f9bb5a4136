package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all dashboard settings, populated from environment variables.
type Config struct {
	SightingsCSV    string
	DashboardOutput string // empty disables the file
	HTTPAddr        string // empty builds, writes, and exits
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional block publishing.
	KafkaBrokers []string
	KafkaTopic   string

	// Rendered chart size in pixels.
	ChartWidth  int
	ChartHeight int
}

// KafkaEnabled reports whether blocks are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first; variables
// already in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	width, err := parsePositiveInt("CHART_WIDTH", 1024)
	if err != nil {
		return nil, err
	}
	height, err := parsePositiveInt("CHART_HEIGHT", 480)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SightingsCSV:    sharedcfg.EnvOrDefault("SIGHTINGS_CSV", "data/Central_Park_Squirrel_Data.csv"),
		DashboardOutput: envOrDefaultAllowEmpty("DASHBOARD_OUTPUT", "dashboard.html"),
		HTTPAddr:        envOrDefaultAllowEmpty("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "squirrel-dashboard-blocks"),
		ChartWidth:      width,
		ChartHeight:     height,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.SightingsCSV == "" {
		return nil, errors.New("SIGHTINGS_CSV is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.DashboardOutput == "" && cfg.HTTPAddr == "" && !cfg.KafkaEnabled() {
		return nil, errors.New("no output configured: set DASHBOARD_OUTPUT, HTTP_ADDR, or KAFKA_BROKERS")
	}

	return cfg, nil
}

// envOrDefaultAllowEmpty treats a variable set to "" as an explicit value.
func envOrDefaultAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
