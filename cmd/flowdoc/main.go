package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rendis/flowdoc/internal/exporter"
	"github.com/rendis/flowdoc/internal/logging"
	"github.com/rendis/flowdoc/internal/scheduler"
	"github.com/rendis/flowdoc/internal/selector"
	"github.com/rendis/flowdoc/internal/store"
	"github.com/rendis/flowdoc/internal/validation"
	"github.com/rendis/flowdoc/pkg/mcp"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "flowdoc: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if err := runRender(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "flowdoc: %v\n", err)
			os.Exit(1)
		}
	case "version":
		printVersion()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected serve, render, or version)\n", cmd)
		os.Exit(2)
	}
}

// runServe wires the full stack and serves MCP over stdio until the process
// receives SIGINT/SIGTERM or stdin closes.
func runServe() error {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	validator, err := validation.NewJSONSchemaValidator()
	if err != nil {
		return fmt.Errorf("compile schemas: %w", err)
	}
	sel, err := selector.NewSelector()
	if err != nil {
		return fmt.Errorf("init selector: %w", err)
	}
	exp := exporter.New(st, sel, logger)

	sched := scheduler.NewScheduler(st, exp, logger)
	if cfg.Scheduler {
		if err := sched.RecoverMissed(ctx); err != nil {
			logger.Warn("missed job recovery failed", slog.String("error", err.Error()))
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop() }()
	}

	srv := mcp.NewFlowdocServer(mcp.FlowdocServerDeps{
		Store:     st,
		Validator: validator,
		Selector:  sel,
		Exporter:  exp,
		Logger:    logger,
	})

	logger.Info("flowdoc serving MCP on stdio",
		slog.String("db_path", cfg.DBPath),
		slog.Bool("scheduler", cfg.Scheduler),
	)
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newLogger builds the process logger. MCP owns stdout, so logs go to stderr.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}
