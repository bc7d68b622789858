package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

type Config struct {
	Port        string
	DatabaseURL string
	SQLitePath  string
	SnapshotKey string
	JWTSecret   string
	LayoutPath  string
	TaxRate     decimal.Decimal

	// CutoffHour and CutoffMinute come from ATTENDANCE_CUTOFF (HH:MM).
	CutoffHour     int
	CutoffMinute   int
	Location       *time.Location
	LateOrderAfter time.Duration

	// Language and Currency format money on the dashboard.
	Language language.Tag
	Currency currency.Unit

	AMQPURL     string
	NATSURL     string
	CORSOrigins []string
}

// Load reads the configuration from the environment. Malformed values are
// logged and replaced by their defaults.
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8081"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "cboy_pos.db"),
		SnapshotKey: getEnv("SNAPSHOT_KEY", "cboy_pos_v3"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		LayoutPath:  getEnv("LAYOUT_PATH", ""),
		AMQPURL:     getEnv("AMQP_URL", ""),
		NATSURL:     getEnv("NATS_URL", ""),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	rate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.08"))
	if err != nil || rate.IsNegative() {
		log.Printf("WARN: invalid TAX_RATE, using 0.08: %v", err)
		rate = decimal.RequireFromString("0.08")
	}
	cfg.TaxRate = rate

	cfg.CutoffHour, cfg.CutoffMinute, err = parseClock(getEnv("ATTENDANCE_CUTOFF", "06:00"))
	if err != nil {
		log.Printf("WARN: invalid ATTENDANCE_CUTOFF, using 06:00: %v", err)
		cfg.CutoffHour, cfg.CutoffMinute = 6, 0
	}

	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		log.Printf("WARN: invalid TIMEZONE, using local time: %v", err)
		cfg.Location = time.Local
	}

	cfg.LateOrderAfter, err = time.ParseDuration(getEnv("LATE_ORDER_AFTER", "20m"))
	if err != nil || cfg.LateOrderAfter <= 0 {
		log.Printf("WARN: invalid LATE_ORDER_AFTER, using 20m: %v", err)
		cfg.LateOrderAfter = 20 * time.Minute
	}

	cfg.Language, err = language.Parse(getEnv("LANGUAGE", "en-US"))
	if err != nil {
		log.Printf("WARN: invalid LANGUAGE, using en-US: %v", err)
		cfg.Language = language.AmericanEnglish
	}

	cfg.Currency, err = currency.ParseISO(getEnv("CURRENCY", "USD"))
	if err != nil {
		log.Printf("WARN: invalid CURRENCY, using USD: %v", err)
		cfg.Currency = currency.USD
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
