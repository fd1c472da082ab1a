package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"todo-api/internal/config"
	"todo-api/internal/store"
)

// StatsCommand prints task counts for the configured storage
type StatsCommand struct {
	config       *config.Config
	errorHandler *ErrorHandler
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(cfg *config.Config) *StatsCommand {
	return &StatsCommand{
		config:       cfg,
		errorHandler: NewErrorHandler(),
	}
}

// Execute loads the task set and writes a summary to out. Log output goes
// to logOut.
func (c *StatsCommand) Execute(ctx context.Context, out, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, closeLog, err := newLogger(c.config, logOut)
	if err != nil {
		return err
	}
	defer closeLog()

	repo, err := config.CreateRepository(c.config)
	if err != nil {
		return c.errorHandler.Handle("open storage", err)
	}
	defer repo.Close()

	st, err := store.New(ctx, repo, logger.WithPrefix("store"))
	if err != nil {
		return c.errorHandler.Handle("load tasks", err)
	}

	writeStats(out, st.Stats(), storageSize(st.Stats().StorageLocation))
	return nil
}

// storageSize returns the size of the storage file, or -1 when it does not exist.
func storageSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

func writeStats(out io.Writer, stats store.Stats, size int64) {
	location := stats.StorageLocation
	if size >= 0 {
		location += " (" + humanize.Bytes(uint64(size)) + ")"
	} else {
		location += " (not created yet)"
	}

	fmt.Fprintf(out, "Storage:   %s\n", location)
	fmt.Fprintf(out, "Tasks:     %s total, %s completed, %s pending\n",
		humanize.Comma(int64(stats.Total)),
		humanize.Comma(int64(stats.Completed)),
		humanize.Comma(int64(stats.Pending)))
	fmt.Fprintf(out, "Next ID:   %d\n", stats.NextID)
}
