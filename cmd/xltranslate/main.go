// Package main provides the CLI entry point for xltranslate.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/config"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/credentials"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/provider/anthropic"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/provider/gemini"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/provider/openai"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
)

var (
	configPath string
	verbose    bool
)

// runFlags are the flags of the translate command that override the config file.
type runFlags struct {
	output       string
	mode         string
	font         string
	apiKey       string
	provider     string
	model        string
	batchSize    int
	attempts     int
	keepFormulas bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var flags runFlags

	root := &cobra.Command{
		Use:   "xltranslate [input.xlsx]",
		Short: "Translate the text of Excel workbooks",
		Long: `xltranslate translates cell text, chart text and optionally sheet names
of an .xlsx workbook through an LLM provider and saves a translated copy.

Modes:
  cells     cell text only
  standard  cell text and chart text (default)
  full      cell text, chart text and sheet names`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args[0], flags)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/xltranslate/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every batch")

	root.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: <input><suffix>.xlsx)")
	root.Flags().StringVar(&flags.mode, "mode", "", "Translation mode: cells, standard, full")
	root.Flags().StringVar(&flags.font, "font", "", "Font family applied to translated cells")
	root.Flags().StringVar(&flags.apiKey, "api-key", "", "Provider API key")
	root.Flags().StringVar(&flags.provider, "provider", "", "Provider: openai, anthropic, gemini")
	root.Flags().StringVar(&flags.model, "model", "", "Model name")
	root.Flags().IntVar(&flags.batchSize, "batch-size", 0, "Strings per provider call")
	root.Flags().IntVar(&flags.attempts, "attempts", 0, "Times a failed translation pass is tried")
	root.Flags().BoolVar(&flags.keepFormulas, "keep-formulas", false, "Also translate text produced by formulas")

	root.AddCommand(
		newExtractCmd(),
		newAuthCmd(),
	)
	return root
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// apply overrides cfg with the flags that were set.
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if f.provider != "" && f.provider != cfg.Provider.Name {
		cfg.Provider.Name = f.provider
		if f.model == "" {
			cfg.Provider.Model = config.DefaultModel(f.provider)
		}
	}
	if f.model != "" {
		cfg.Provider.Model = f.model
	}
	if f.mode != "" {
		cfg.Output.Mode = f.mode
	}
	if cmd.Flags().Changed("font") {
		cfg.Output.Font = f.font
	}
	if f.batchSize != 0 {
		cfg.Translate.BatchSize = f.batchSize
	}
	if f.attempts != 0 {
		cfg.Translate.Attempts = f.attempts
	}
	return cfg.Validate()
}

// keyValidator is implemented by providers that can check an API key.
type keyValidator interface {
	translate.Provider
	ValidateKey(ctx context.Context) error
}

func newProvider(ctx context.Context, pc config.ProviderConfig, key, baseURL string) (keyValidator, error) {
	if pc.BaseURL != "" {
		baseURL = pc.BaseURL
	}
	switch pc.Name {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:     key,
			BaseURL:    baseURL,
			Model:      pc.Model,
			MaxRetries: pc.MaxRetries,
		}), nil
	case config.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:     key,
			BaseURL:    baseURL,
			Model:      pc.Model,
			MaxRetries: pc.MaxRetries,
		}), nil
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  key,
			BaseURL: baseURL,
			Model:   pc.Model,
		})
	}
	return nil, fmt.Errorf("unknown provider %q", pc.Name)
}

func runTranslate(cmd *cobra.Command, input string, flags runFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, &cfg); err != nil {
		return err
	}

	key, source := credentials.Resolve(cfg.Provider.Name, flags.apiKey)
	if key == "" {
		return fmt.Errorf("%w for %s: run 'xltranslate auth set --provider %s' or set %s",
			errNoAPIKey, cfg.Provider.Name, cfg.Provider.Name, credentials.EnvAPIKey)
	}
	var baseURL string
	if e := credentials.Get(cfg.Provider.Name); e != nil {
		baseURL = e.BaseURL
	}
	logger := newLogger()
	logger.Debug("resolved api key", "provider", cfg.Provider.Name, "source", source, "key", credentials.MaskKey(key))

	provider, err := newProvider(cmd.Context(), cfg.Provider, key, baseURL)
	if err != nil {
		return err
	}

	bar := newBatchBar()
	engineCfg := cfg.EngineConfig()
	engineCfg.Logger = logger
	engineCfg.OnBatch = bar.observe
	engine, err := translate.New(provider, engineCfg)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = xltranslate.OutputPath(input, cfg.Output.Suffix)
	}
	font := cfg.Output.Font
	opts := xltranslate.Options{
		Mode:         xltranslate.Mode(cfg.Output.Mode),
		Font:         &font,
		Attempts:     cfg.Translate.Attempts,
		KeepFormulas: flags.keepFormulas,
		Logger:       logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := xltranslate.Translate(ctx, engine, input, output, opts)
	bar.finish()
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	return nil
}

var errNoAPIKey = errors.New("no API key")

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, xltranslate.ErrCancelled) {
		return 130
	}
	return 1
}
