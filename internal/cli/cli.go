package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"rpy-translator/internal/config"
	"rpy-translator/internal/parser"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// options are the flags shared by every command.
type options struct {
	cfg     *config.Config
	mode    string
	workers int
}

// Execute runs the CLI application.
func Execute() {
	cfg := config.Load()
	setupLogging(cfg, os.Stderr)

	if err := NewRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree around cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "rpy-translator",
		Short: "Extract and re-apply translatable text in Ren'Py scripts",
		Long: `Finds dialogue, narration, menu choices, screen text and translation
strings in Ren'Py .rpy files and writes edited text back without touching
the rest of the script.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			_, err := parser.ParseMode(opts.mode)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.mode, "mode", cfg.ParseMode, "Parse mode: auto, direct or translate")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", cfg.WorkerCount, "Number of files parsed concurrently")

	rootCmd.AddCommand(extractCmd(opts))
	rootCmd.AddCommand(applyCmd(opts))
	rootCmd.AddCommand(syncCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))

	return rootCmd
}

func (o *options) parseMode() parser.Mode {
	mode, err := parser.ParseMode(o.mode)
	if err != nil {
		// Rejected in PersistentPreRunE.
		return parser.ModeAuto
	}
	return mode
}

// setupLogging configures the global logger: console output on w, plus a
// rotated JSON file when LOG_FILE is set.
func setupLogging(cfg *config.Config, w *os.File) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()),
	}

	var out io.Writer = console
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			LocalTime:  true,
		})
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openCatalogPool connects to PostgreSQL.
func openCatalogPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return pgPool, nil
}
