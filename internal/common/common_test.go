package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "file:tbc.db")
	t.Setenv("DICTIONARY_WATCH", "true")
	t.Setenv("INGEST_WORKERS", "8")
	t.Setenv("OPERATOR_CACHE_TTL", "90s")
	t.Setenv("OPENAI_RPS", "not-a-number")

	cfg := LoadConfig()
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "file:tbc.db" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if !cfg.Dictionary.Watch || cfg.Ingest.Workers != 8 || cfg.Ingest.OperatorCacheTTL != 90*time.Second {
		t.Errorf("typed getters not applied: %+v %+v", cfg.Dictionary, cfg.Ingest)
	}
	if cfg.LLM.RequestsPerSecond != 2 {
		t.Errorf("expected default rps on parse failure, got %v", cfg.LLM.RequestsPerSecond)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Dictionary: DictionaryConfig{Path: "data/operators_dict.json"},
			Database:   DatabaseConfig{Driver: "postgres", DSN: "postgres://localhost/tbc"},
			Server:     ServerConfig{GRPCAddr: ":8080"},
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dictionary", func(c *Config) { c.Dictionary.Path = " " }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }},
		{"inbox without owner", func(c *Config) { c.Ingest.InboxDir = "/var/inbox" }},
		{"missing addr", func(c *Config) { c.Server.GRPCAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("x: %w", ErrValidation), codes.InvalidArgument},
		{ErrInvalidInput, codes.InvalidArgument},
		{ErrNotFound, codes.NotFound},
		{ErrDuplicate, codes.AlreadyExists},
		{ErrUnauthorized, codes.Unauthenticated},
		{ErrForbidden, codes.PermissionDenied},
		{ErrDictionaryFormat, codes.FailedPrecondition},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
	}
	for _, tt := range tests {
		if got := status.Code(ToStatus(tt.err)); got != tt.want {
			t.Errorf("ToStatus(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
	if ToStatus(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestValidatorAggregates(t *testing.T) {
	zero := decimal.Zero
	v := NewValidator().
		Field("date_time", "05.04.2024", Required, ISODateTime).
		Field("amount", &zero, Required, PositiveDecimal).
		Field("currency", "uzs", CurrencyCode).
		Field("card_number", "*4455", MaskedCard)

	err := v.Error()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := "date_time: invalid date format; amount: must be greater than zero; currency: must be 3 uppercase letters (ISO 4217)"
	if err.Error() != want {
		t.Errorf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
	if NewValidator().Field("x", "ok", Required).Error() != nil {
		t.Error("expected nil error when nothing fails")
	}
}

func TestParseISODateTime(t *testing.T) {
	for _, s := range []string{"2024-04-05T14:30:00", "2024-04-05T14:30", "2024-04-05 14:30:00", "2024-04-05", "2024-04-05T14:30:00Z"} {
		if _, err := ParseISODateTime(s); err != nil {
			t.Errorf("%q: %v", s, err)
		}
	}
	if _, err := ParseISODateTime("05.04.2024"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
