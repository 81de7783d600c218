package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/enrich"
	"github.com/joseph-ayodele/tbcparser/internal/extract"
	"github.com/joseph-ayodele/tbcparser/internal/ingest"
	"github.com/joseph-ayodele/tbcparser/internal/llm"
	"github.com/joseph-ayodele/tbcparser/internal/llm/openai"
	"github.com/joseph-ayodele/tbcparser/internal/pipeline"
)

// llmparse runs the rules and the LLM extractor on the same receipt file and prints
// both results, repeating the LLM call to check its stability.
func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llmparse <receipt.txt|receipt.pdf> [times]")
		os.Exit(2)
	}
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	doc, err := ingest.ReadDocument(os.Args[1])
	if err != nil {
		logger.Error("read receipt", "path", os.Args[1], "error", err)
		os.Exit(1)
	}
	dict, err := dictionary.New(cfg.Dictionary.Path, logger)
	if err != nil {
		logger.Error("load dictionary", "error", err)
		os.Exit(1)
	}
	merger := enrich.NewMerger(dict, logger)

	client, err := openai.NewClient(openai.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		LenientOptional:   true,
	}, logger)
	if err != nil {
		logger.Error("create llm client", "error", err)
		os.Exit(1)
	}

	rules := pipeline.New(logger, extract.NewRules(logger), merger)
	viaLLM := pipeline.New(logger, llm.NewExtractor(client, constants.DefaultCurrency, logger), merger)

	ctx := context.Background()
	if r, err := rules.ParseDraft(ctx, doc.Text, nil); err == nil {
		printJSON("rules", r, pipeline.Validate(r))
	}

	for i := 1; i <= times; i++ {
		runCtx, cancel := context.WithTimeout(ctx, cfg.LLM.Timeout+5*time.Second)
		start := time.Now()
		r, err := viaLLM.ParseDraft(runCtx, doc.Text, nil)
		cancel()
		if err != nil {
			logger.Error("llmparse.run.error", "iter", i, "error", err)
			continue
		}
		logger.Info("llmparse.run.ok", "iter", i, "elapsed_ms", time.Since(start).Milliseconds())
		printJSON(fmt.Sprintf("llm #%d", i), r, pipeline.Validate(r))
	}
}

func printJSON(label string, r any, validationErr error) {
	b, _ := json.MarshalIndent(r, "", "  ")
	fmt.Printf("== %s ==\n%s\n", label, b)
	if validationErr != nil {
		fmt.Printf("validation: %v\n", validationErr)
	}
}
