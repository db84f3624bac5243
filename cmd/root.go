package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhcgn/mbox-stat/config"
	"github.com/dhcgn/mbox-stat/runner"
	"github.com/dhcgn/mbox-stat/stats"
)

const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130 // 128+SIGINT
)

// NewRootCmd returns the mbox-stat command. Every positional argument is a
// mailbox path; the command has no subcommands so that a file named like one
// is still scanned.
func NewRootCmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "mbox-stat [mbox file...]",
		Short:         "Report message and status-flag counts for mbox archives",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd, args)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Debug("starting mbox-stat", "files", len(cfg.Paths), "locale", cfg.Locale.String(), "progress", cfg.Progress)

			return run(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	if err := config.RegisterFlags(rootCmd); err != nil {
		return nil, fmt.Errorf("failed to register CLI flags: %w", err)
	}
	return rootCmd, nil
}

// Execute runs the root command with args and returns the process exit
// code. ctx is expected to be canceled on SIGINT/SIGTERM.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd, err := NewRootCmd()
	if err != nil {
		return ExitCode(err, false, stdout, stderr)
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err = rootCmd.ExecuteContext(ctx)
	return ExitCode(err, ctx.Err() != nil, stdout, stderr)
}

// ExitCode reports err and maps it to an exit code. An interrupted run
// terminates the progress line with a newline instead of printing an error.
func ExitCode(err error, interrupted bool, stdout, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}
	if interrupted && errors.Is(err, context.Canceled) {
		fmt.Fprintln(stdout)
		return ExitInterrupted
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return ExitFailure
}

func run(ctx context.Context, cfg config.Config, out io.Writer, logger *slog.Logger) error {
	r, err := runner.New(cfg, out, logger)
	if err != nil {
		return fmt.Errorf("runner.New: %w", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.Warn("closing result cache", "err", err)
		}
	}()

	if cfg.Verify {
		return r.Verify(ctx)
	}

	reporter := stats.NewReporter(r, logger)
	err = r.Run(ctx)
	reporter.Finish()
	return err
}

func setupLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	// Standard output carries the progress bar and summaries.
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("mbox-stat-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(stderr, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(stderr, opts)
	return slog.New(handler), cleanup, nil
}
