package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"todo-api/internal/api"
	"todo-api/internal/config"
	"todo-api/internal/logging"
	"todo-api/internal/store"
)

// serverReady is called with the bound address once the server listens.
// Tests replace it to learn the port.
var serverReady = func(addr string) {}

// newLogger builds the root logger for cfg with console output sent to console.
func newLogger(cfg *config.Config, console io.Writer) (*log.Logger, func(), error) {
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		File:    cfg.Logging.File,
		Quiet:   cfg.Logging.Quiet,
		Console: console,
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { closer.Close() }, nil
}

// runServe starts the HTTP server and blocks until SIGINT, SIGTERM or the
// command context ends.
func (r *RootCommand) runServe(cmd *cobra.Command) error {
	cfg := r.config
	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	printBanner(logger, cfg)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		logger.Error("Failed to open storage", "err", err)
		return err
	}
	defer repo.Close()

	st, err := store.New(ctx, repo, logger.WithPrefix("store"))
	if err != nil {
		logger.Error("Failed to start server", "err", err)
		return err
	}

	handler := api.NewHandler(st, logger.WithPrefix("api"))
	srv := api.NewServer(cfg.Address(), api.Routes(handler, logger.WithPrefix("http")), cfg.Server.ShutdownTimeout, logger)
	if err := srv.Listen(); err != nil {
		logger.Error("Failed to start server", "addr", cfg.Address(), "err", err)
		return err
	}
	serverReady(srv.Addr())

	if err := srv.Serve(ctx); err != nil {
		return err
	}
	logger.Info("Todo API server stopped")
	return nil
}

// printBanner logs the startup summary.
func printBanner(logger *log.Logger, cfg *config.Config) {
	logger.Info("Todo API v" + Version)
	logger.Info("Server URL: " + cfg.URL())
	logger.Info("Storage: " + describeStorage(cfg))
	if cfg.Logging.File != "" {
		logger.Info("Logs: " + cfg.Logging.File)
	}
	logger.Info("Available endpoints:")
	logger.Info("  POST /tasks                 - Create new task")
	logger.Info("  GET  /tasks                 - Get all tasks")
	logger.Info("  POST /tasks/{id}/complete   - Mark task as completed")
	logger.Info("Press Ctrl+C to stop the server")
	logger.Info(strings.Repeat("=", 50))

	logger.Debug("Configuration details",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"shutdown_timeout", cfg.Server.ShutdownTimeout,
		"backend", cfg.Storage.Backend,
		"log_level", cfg.Logging.Level,
		"log_format", cfg.Logging.Format,
	)
}

// describeStorage names the storage location and, when it exists, its size.
func describeStorage(cfg *config.Config) string {
	desc := cfg.Storage.Path + " (" + cfg.Storage.Backend
	if info, err := os.Stat(cfg.Storage.Path); err == nil {
		desc += ", " + humanize.Bytes(uint64(info.Size()))
	} else {
		desc += ", not created yet"
	}
	return desc + ")"
}
