package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lorestream/internal/announce"
	"lorestream/internal/deps"
	"lorestream/internal/journal"
	"lorestream/internal/logging"
	"lorestream/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the stream and play the dataset from the resume point",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd.Context(), ctx)
		},
	}
}

func runStream(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("lorestream-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock := flock.New(cfg.LockFile())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another lorestream run holds %s", cfg.LockFile())
	}
	defer func() { _ = lock.Unlock() }()

	statuses := deps.Check(deps.Requirements(cfg))
	for _, status := range statuses {
		if !status.Available && status.Optional {
			logger.Warn("optional dependency unavailable",
				logging.String("name", status.Name), logging.String("detail", status.Detail))
		}
	}
	if missing := deps.Missing(statuses); len(missing) > 0 {
		details := make([]string, 0, len(missing))
		for _, status := range missing {
			details = append(details, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
		return fmt.Errorf("missing required dependencies: %s", strings.Join(details, ", "))
	}

	var store *journal.Store
	if store, err = journal.Open(cfg.JournalFile()); err != nil {
		logger.Warn("session journal unavailable", logging.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	announcer := announce.NewService(cfg, logger)
	defer announcer.Close()

	sessionID := uuid.NewString()
	driver := pipeline.New(cfg, store, announcer, sessionID, logger)
	result := driver.Run(signalCtx)

	if code := result.ExitCode(); code != 0 {
		return exitError{code: code, err: result.Err}
	}
	return nil
}
