package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xaenox/datadonation/internal/export"
	"github.com/xaenox/datadonation/internal/extractor"
	"github.com/xaenox/datadonation/internal/flow"
	"github.com/xaenox/datadonation/internal/temporal"
	"github.com/xaenox/datadonation/pkg/config"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "donation: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "donation",
		Short:         "Extract and donate aggregated tables from a TikTok data download",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "config.yaml", "path to the configuration file")
	flags.BoolVar(&opts.debug, "debug", false, "enable development logging")

	root.AddCommand(newExtractCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newBotCmd(opts))
	return root
}

// app is what every subcommand needs: configuration and a logger.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp(opts *options) (*app, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	var (
		logger *zap.Logger
		err    error
	)
	if opts.debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) pipeline() (*extractor.Pipeline, error) {
	policy, err := extractionPolicy(a.cfg.Extraction.Disabled)
	if err != nil {
		return nil, err
	}
	window, err := analysisWindow(a.cfg.Analysis)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Extraction configured",
		zap.Strings("disabled", policy.Excluded),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End))
	return extractor.NewPipeline(export.NewReader(a.logger), policy, window, a.logger), nil
}

// script builds the donation script of one session.
func (a *app) script(sessionID string, pipeline *extractor.Pipeline) *flow.Script {
	cfg := flow.Config{Platform: a.cfg.Platform, MimeTypes: a.cfg.MimeTypes}
	return flow.NewScript(sessionID, flow.NewController(cfg, sessionID, pipeline.Extract, a.logger))
}

func extractionPolicy(disabled []string) (extractor.Policy, error) {
	known := make(map[string]bool, len(extractor.All))
	for _, e := range extractor.All {
		known[e.ID] = true
	}
	// DataMinimization is always applied; config can only exclude more.
	excluded := append([]string{}, extractor.DataMinimization.Excluded...)
	for _, id := range disabled {
		if !known[id] {
			return extractor.Policy{}, fmt.Errorf("extraction.disabled: unknown table %q", id)
		}
		if !extractor.DataMinimization.Excludes(id) {
			excluded = append(excluded, id)
		}
	}
	return extractor.Policy{Name: extractor.DataMinimization.Name, Excluded: excluded}, nil
}

func analysisWindow(a config.AnalysisConfig) (temporal.Window, error) {
	start, end, err := a.Window()
	if err != nil {
		return temporal.Window{}, err
	}
	return temporal.Window{Start: start, End: end}, nil
}
