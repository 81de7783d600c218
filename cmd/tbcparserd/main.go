package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/async"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/enrich"
	"github.com/joseph-ayodele/tbcparser/internal/export"
	"github.com/joseph-ayodele/tbcparser/internal/extract"
	"github.com/joseph-ayodele/tbcparser/internal/ingest"
	"github.com/joseph-ayodele/tbcparser/internal/llm"
	"github.com/joseph-ayodele/tbcparser/internal/llm/openai"
	"github.com/joseph-ayodele/tbcparser/internal/pipeline"
	"github.com/joseph-ayodele/tbcparser/internal/receipts"
	repo "github.com/joseph-ayodele/tbcparser/internal/repository"
	"github.com/joseph-ayodele/tbcparser/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dict, err := dictionary.New(cfg.Dictionary.Path, logger)
	if err != nil {
		logger.Error("failed to load operator dictionary", "path", cfg.Dictionary.Path, "error", err)
		os.Exit(1)
	}

	db, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	users := repo.NewUserRepository(db, logger)
	operators := repo.NewOperatorRepository(db, logger)
	transactions := repo.NewTransactionRepository(db, logger)

	// Rules always run; with an API key the LLM goes first and rules catch its failures.
	var extractor extract.Extractor = extract.NewRules(logger)
	parsedBy := "rules"
	if cfg.LLM.APIKey != "" {
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
			logger.Error("failed to create llm client", "error", err)
			os.Exit(1)
		}
		extractor = extract.NewFallback(llm.NewExtractor(client, constants.DefaultCurrency, logger), extractor, logger)
		parsedBy = "llm"
		logger.Info("llm extractor enabled", "model", cfg.LLM.Model)
	}

	pipe := pipeline.New(logger, extractor, enrich.NewMerger(dict, logger))
	receiptSvc := receipts.NewService(pipe, users, operators, transactions, receipts.Options{
		OperatorCacheTTL: cfg.Ingest.OperatorCacheTTL,
		ParsedBy:         parsedBy,
	}, logger)
	exportSvc := export.NewService(receiptSvc, logger)

	if cfg.Dictionary.Watch {
		go func() {
			err := dictionary.Watch(ctx, dict, cfg.Dictionary.Debounce, func(_ dictionary.ReloadResult, err error) {
				if err == nil {
					receiptSvc.FlushOperatorCache()
				}
			})
			if err != nil {
				logger.Error("dictionary watcher stopped", "error", err)
			}
		}()
	}

	var queue *async.ProcessorQueue
	if cfg.Ingest.InboxDir != "" {
		ingestor := ingest.NewFSIngestor(receiptSvc, logger,
			ingest.WithReader(ingest.Reader{Pdftotext: cfg.Ingest.Pdftotext, Logger: logger}))
		queue = async.NewProcessorQueue(ingestor, logger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
		)
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Ingest.InboxDir},
			InitialScan: true,
			Debounce:    cfg.Dictionary.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to watch inbox", "dir", cfg.Ingest.InboxDir, "error", err)
			os.Exit(1)
		}
		owner := ingest.Owner{TelegramID: cfg.Ingest.InboxTelegramID, Username: cfg.Ingest.InboxUsername}
		go func() {
			for path := range events {
				if err := queue.Enqueue(ctx, async.Job{Path: path, Owner: owner}); err != nil {
					logger.Warn("inbox enqueue failed", "path", path, "error", err)
				}
			}
		}()
		go func() {
			for err := range errs {
				logger.Warn("inbox watcher error", "error", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.UnaryLogging(logger)))
	server.RegisterReceiptParserServer(grpcServer,
		server.NewParserServer(receiptSvc, dict, exportSvc, cfg.Admin.DictionaryToken, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	logger.Info("tbcparserd listening",
		"addr", cfg.Server.GRPCAddr,
		"dictionary_entries", dict.Size(),
		"dictionary_version", dict.Version(),
		"inbox", cfg.Ingest.InboxDir)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	if queue != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		queue.Shutdown(shutdownCtx)
		cancel()
	}
	grpcServer.GracefulStop()
}
