package openai

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/llm"
)

// Config for the OpenAI client.
type Config struct {
	APIKey            string
	BaseURL           string  // default https://api.openai.com/v1
	Model             string  // e.g. "gpt-4o-mini"
	Temperature       float32 // 0..2
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables limiting
	LenientOptional   bool    // sanitize and re-validate replies that fail the schema
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	defaultOps []string
	schema     map[string]any
	compiled   *jsonschema.Schema
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	ops := constants.OperationStrings()
	schema := llm.BuildReceiptJSONSchema(ops)
	compiled, err := llm.CompileSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		defaultOps: ops,
		schema:     schema,
		compiled:   compiled,
	}, nil
}
