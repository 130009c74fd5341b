package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	dbUserEmptyError     = errors.New("DB User is Empty")
	dbNameEmptyError     = errors.New("DB Name is Empty")
	envLoadError         = errors.New(".env load Error")
	invalidDriverError   = errors.New("LAST_RUN_DRIVER must be sqlite, postgres or none")
	invalidNumberError   = errors.New("invalid numeric value")
	trackerURLEmptyError = errors.New("TRACKER_URL is Empty")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"

	defaultReportsConfig = "reports.yaml"
)

type AppConfig struct {
	Env        string
	Port       string
	LogLevel   string
	WebBaseURL string
}

type TrackerConfig struct {
	URL   string
	Token string
	RPS   float64
	Burst int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	Password string
	User     string
	URL      string
}

// LastRunConfig где хранить время последнего запуска отчетов
type LastRunConfig struct {
	Driver     string
	SQLitePath string
}

type SlackConfig struct {
	WebhookURL string
}

type Config struct {
	App           AppConfig
	Tracker       TrackerConfig
	Database      DatabaseConfig
	LastRun       LastRunConfig
	Slack         SlackConfig
	ReportsConfig string
}

// LoadConfig читает .env, если он есть, и окружение процесса
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", envLoadError, err)
	}
	return fromEnv()
}

// ReportsPath путь к файлу отчетов без остальной конфигурации: трекер для него не нужен
func ReportsPath() (string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", envLoadError, err)
	}
	return getEnv("REPORTS_CONFIG", defaultReportsConfig), nil
}

func fromEnv() (*Config, error) {
	rps, err := getEnvFloat("TRACKER_RPS", 5)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("TRACKER_BURST", 1)
	if err != nil {
		return nil, err
	}

	c := &Config{
		App: AppConfig{
			Env:        getEnv("APP_ENV", "dev"),
			Port:       getEnv("APP_PORT", "8080"),
			LogLevel:   getEnv("LOG_LEVEL", ""),
			WebBaseURL: getEnv("WEB_BASE_URL", ""),
		},
		Tracker: TrackerConfig{
			URL:   getEnv("TRACKER_URL", ""),
			Token: getEnv("TRACKER_API_TOKEN", ""),
			RPS:   rps,
			Burst: burst,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			Name:     getEnv("DATABASE_NAME", "postgres"),
			Password: getEnv("DATABASE_PASSWORD", "postgres"),
			User:     getEnv("DATABASE_USER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
		},
		LastRun: LastRunConfig{
			Driver:     getEnv("LAST_RUN_DRIVER", DriverSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "reviewpulse.db"),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		},
		ReportsConfig: getEnv("REPORTS_CONFIG", defaultReportsConfig),
	}

	if c.Tracker.URL == "" {
		return nil, trackerURLEmptyError
	}

	switch c.LastRun.Driver {
	case DriverSQLite, DriverNone:
	case DriverPostgres:
		// URL базы нужен только для postgres
		if err := makeDbUrl(c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", invalidDriverError, c.LastRun.Driver)
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", invalidNumberError, key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", invalidNumberError, key, v)
	}
	return n, nil
}

func makeDbUrl(cfg *Config) error {
	if cfg.Database.URL == "" {
		if cfg.Database.User == "" {
			return dbUserEmptyError
		}
		if cfg.Database.Name == "" {
			return dbNameEmptyError
		}
		cfg.Database.URL = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
		)
	}
	return nil
}
