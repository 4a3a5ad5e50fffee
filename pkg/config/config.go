package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	SendGrid SendGridConfig

	Journey JourneyConfig

	// DashboardSessionSecret signs the dashboard session tokens (HS256).
	DashboardSessionSecret string

	// DashboardAllowedOrigins is a comma-separated allowlist of origins allowed
	// to call the club-scoped endpoints from a browser. Example:
	//   https://dashboard.yourapp.com,http://localhost:8501
	DashboardAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string

	// Dynamic template IDs for the two journey events.
	TemplatePreArrival string
	TemplatePostPlay   string
}

type JourneyConfig struct {
	// PreArrivalDays is how many days before the play date the welcome email goes out.
	PreArrivalDays int
	// PostPlayDays is how many days after the play date the thank-you email goes out.
	PostPlayDays int

	// ResortName is the course name used when a booking has none recorded.
	ResortName string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "teemail"),
			User:     env("DB_USER", "teemail"),
			Password: env("DB_PASSWORD", "teemail"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		SendGrid: SendGridConfig{
			APIKey:             os.Getenv("SENDGRID_API_KEY"),
			FromEmail:          os.Getenv("FROM_EMAIL"),
			FromName:           env("FROM_NAME", "Streamsong Golf Resort"),
			TemplatePreArrival: os.Getenv("SENDGRID_TEMPLATE_PRE_ARRIVAL"),
			TemplatePostPlay:   os.Getenv("SENDGRID_TEMPLATE_POST_PLAY"),
		},
		Journey: JourneyConfig{
			PreArrivalDays: envInt("PRE_ARRIVAL_DAYS", 3),
			PostPlayDays:   envInt("POST_PLAY_DAYS", 2),
			ResortName:     env("RESORT_NAME", "Golf Resort"),
		},

		DashboardSessionSecret:  os.Getenv("DASHBOARD_SESSION_SECRET"),
		DashboardAllowedOrigins: envList("DASHBOARD_ALLOWED_ORIGINS", "http://localhost:8501"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
