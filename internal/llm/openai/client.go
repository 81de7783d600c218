package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/llm"
)

// ExtractFields implements llm.FieldExtractor using JSON-mode chat/completions.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ReceiptFields, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"allowed_operations", len(req.AllowedOperations),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("llm.extract.rate_limited", "req_id", rid, "error", err)
		return llm.ReceiptFields{}, nil, fmt.Errorf("rate limiter: %w", err)
	}

	schemaMap, compiled, err := c.schemaFor(req.AllowedOperations)
	if err != nil {
		return llm.ReceiptFields{}, nil, err
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schemaMap)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ReceiptFields{}, raw, fmt.Errorf("openai: %w", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return llm.ReceiptFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid)
		return llm.ReceiptFields{}, raw, fmt.Errorf("no choices in openai response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := llm.ValidateJSON(compiled, content); err != nil {
		if !c.cfg.LenientOptional {
			c.logger.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
			return llm.ReceiptFields{}, content, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, changes, sErr := llm.NormalizeAndSanitizeJSON(content, c.logger)
		if sErr != nil {
			c.logger.Error("llm.extract.sanitize_failed", "req_id", rid, "error", sErr)
			return llm.ReceiptFields{}, content, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateJSON(compiled, cleaned); vErr != nil {
			c.logger.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", vErr)
			return llm.ReceiptFields{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.logger.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "changes", changes)
		content = cleaned
	}

	var out llm.ReceiptFields
	if err := json.Unmarshal(content, &out); err != nil {
		c.logger.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return llm.ReceiptFields{}, content, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"operation", out.OperationType,
		"amount", out.Amount,
		"currency", out.Currency,
		"operator", out.Operator,
		"not_receipt", out.Error != "",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func (c *Client) schemaFor(ops []string) (map[string]any, *jsonschema.Schema, error) {
	if len(ops) == 0 || slices.Equal(ops, c.defaultOps) {
		return c.schema, c.compiled, nil
	}
	schemaMap := llm.BuildReceiptJSONSchema(ops)
	compiled, err := llm.CompileSchema(schemaMap)
	if err != nil {
		return nil, nil, err
	}
	return schemaMap, compiled, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
