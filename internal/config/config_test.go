package config

import (
	"testing"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("port: got %q, want 8081", cfg.Port)
	}
	if cfg.SnapshotKey != "cboy_pos_v3" {
		t.Errorf("snapshot key: got %q", cfg.SnapshotKey)
	}
	if cfg.TaxRate.String() != "0.08" {
		t.Errorf("tax rate: got %s", cfg.TaxRate)
	}
	if cfg.CutoffHour != 6 || cfg.CutoffMinute != 0 {
		t.Errorf("cutoff: got %02d:%02d", cfg.CutoffHour, cfg.CutoffMinute)
	}
	if cfg.LateOrderAfter != 20*time.Minute {
		t.Errorf("late after: got %v", cfg.LateOrderAfter)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
	if cfg.Language != language.AmericanEnglish || cfg.Currency != currency.USD {
		t.Errorf("locale: got %v %v", cfg.Language, cfg.Currency)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("TAX_RATE", "0.11")
	t.Setenv("ATTENDANCE_CUTOFF", "07:30")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LATE_ORDER_AFTER", "15m")
	t.Setenv("CORS_ORIGINS", "https://pos.example.com, ")
	t.Setenv("LANGUAGE", "id")
	t.Setenv("CURRENCY", "IDR")

	cfg := Load()

	if cfg.TaxRate.String() != "0.11" {
		t.Errorf("tax rate: got %s", cfg.TaxRate)
	}
	if cfg.CutoffHour != 7 || cfg.CutoffMinute != 30 {
		t.Errorf("cutoff: got %02d:%02d", cfg.CutoffHour, cfg.CutoffMinute)
	}
	if cfg.Location != time.UTC {
		t.Errorf("location: got %v", cfg.Location)
	}
	if cfg.LateOrderAfter != 15*time.Minute {
		t.Errorf("late after: got %v", cfg.LateOrderAfter)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://pos.example.com" {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
	if cfg.Language != language.Indonesian || cfg.Currency != currency.IDR {
		t.Errorf("locale: got %v %v", cfg.Language, cfg.Currency)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("TAX_RATE", "eight")
	t.Setenv("ATTENDANCE_CUTOFF", "6am")
	t.Setenv("LATE_ORDER_AFTER", "-5m")
	t.Setenv("CURRENCY", "dollars")

	cfg := Load()

	if cfg.TaxRate.String() != "0.08" {
		t.Errorf("tax rate: got %s", cfg.TaxRate)
	}
	if cfg.CutoffHour != 6 {
		t.Errorf("cutoff hour: got %d", cfg.CutoffHour)
	}
	if cfg.LateOrderAfter != 20*time.Minute {
		t.Errorf("late after: got %v", cfg.LateOrderAfter)
	}
	if cfg.Currency != currency.USD {
		t.Errorf("currency: got %v", cfg.Currency)
	}
}
