package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xaenox/datadonation/internal/bot"
	"github.com/xaenox/datadonation/internal/console"
	"github.com/xaenox/datadonation/internal/flow"
	"github.com/xaenox/datadonation/internal/format"
	"github.com/xaenox/datadonation/internal/storage"
	"github.com/xaenox/datadonation/pkg/config"
	"go.uber.org/zap"
)

func newExtractCmd(opts *options) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the tables derived from a TikTok download",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}
			results, err := pipeline.Extract(args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no TikTok export found in %s", args[0])
			}
			return format.WriteResults(cmd.OutOrStdout(), results, strings.ToLower(formatFlag), a.cfg.Locale)
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "tsv", "output format: tsv, json, or yaml")
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Walk through a donation session on the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}
			store, err := openStorage(ctx, a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			// A file given on the command line answers the first file prompt.
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				in = io.MultiReader(strings.NewReader(args[0]+"\n"), in)
			}
			renderer := console.NewRenderer(in, cmd.OutOrStdout(), a.cfg.Locale)

			script := a.script(flow.NewSessionID(), pipeline)
			if err := flow.Drive(ctx, script, renderer, store); err != nil {
				return err
			}

			state := script.Flow().State()
			a.logger.Info("Session finished", zap.String("session_id", script.SessionID()), zap.Stringer("state", state))
			if state == flow.Done {
				fmt.Fprintln(cmd.OutOrStdout(), "Thank you for your donation.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Your data was not donated.")
			}
			return nil
		},
	}
}

func newBotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Collect donations through a Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Telegram.Token == "" {
				return errors.New("telegram token is not configured (set TELEGRAM_TOKEN)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline, err := a.pipeline()
			if err != nil {
				return err
			}
			store, err := openStorage(ctx, a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			botCfg := bot.Config{
				Token:       a.cfg.Telegram.Token,
				DownloadDir: a.cfg.Telegram.DownloadDir,
				Locale:      a.cfg.Locale,
			}
			b, err := bot.New(botCfg, store, func(sessionID string) *flow.Script {
				return a.script(sessionID, pipeline)
			}, a.logger)
			if err != nil {
				return err
			}

			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (storage.Storage, error) {
	if cfg.UseInMemory {
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}

	logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Host), zap.String("dbname", cfg.DBName))
	store, err := storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
