package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"swipetodo/internal/notes"
	"swipetodo/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal screen (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI owns the terminal, so logs go to a file instead of stderr.
func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = filepath.Join(cfg.Store.Dir, "todo.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logger, err := newLogger(f)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	svc := notes.NewService(store, logger)
	err = tui.Run(ctx, svc, tui.Options{
		Dark:    tui.ResolveDark(cfg.UI.Theme),
		Timeout: cfg.StoreTimeout(),
		Logger:  logger,
	})
	if ferr := svc.Flush(context.Background()); ferr != nil {
		logger.Error("unsaved notes could not be written", "error", ferr)
		if err == nil {
			err = fmt.Errorf("notes not saved: %w", ferr)
		}
	}
	return err
}
