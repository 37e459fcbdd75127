package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"korrektor/internal/cli"
	"korrektor/internal/config"
	"korrektor/internal/engine"
	"korrektor/internal/registry"
	"korrektor/pkg/types"
)

type cliOptions struct {
	configPath   string
	modelsDir    string
	model        string
	maxNewTokens int
	serverURL    string
	logLevel     string
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "korrektor",
		Short:         "German grammar and spelling correction on a local causal LM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd.Flags().Changed)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (.yaml/.json/.toml); flags override")
	root.PersistentFlags().StringVar(&opts.modelsDir, "models-dir", "~/models/llm", "Directory to scan for *.gguf model files")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "Model id to use (defaults to the first discovered)")
	root.PersistentFlags().IntVar(&opts.maxNewTokens, "max-new-tokens", 0, "Generation cap per correction (default 100)")
	root.PersistentFlags().StringVar(&opts.serverURL, "server-url", "", "llama.cpp server base URL; when set, inference goes over HTTP instead of in-process")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List discovered GGUF models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			reg, err := registry.LoadDir(cfg.ModelsDir)
			if err != nil {
				return err
			}
			for _, m := range reg {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.Family, m.Quant)
			}
			return nil
		},
	}
	root.AddCommand(modelsCmd)
	return root
}

// loadConfig merges the optional config file with flag overrides. changed
// reports whether a flag was set explicitly on the command line; an explicit
// flag always wins over the file, a default only fills gaps.
func loadConfig(opts *cliOptions, changed func(string) bool) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
	}
	if changed("models-dir") || cfg.ModelsDir == "" {
		cfg.ModelsDir = opts.modelsDir
	}
	if changed("model") || cfg.DefaultModel == "" {
		cfg.DefaultModel = opts.model
	}
	if changed("max-new-tokens") || cfg.MaxNewTokens == 0 {
		cfg.MaxNewTokens = opts.maxNewTokens
	}
	if changed("server-url") || cfg.ServerURL == "" {
		cfg.ServerURL = opts.serverURL
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func runConsole(opts *cliOptions, changed func(string) bool) error {
	log := newLogger(opts.logLevel)

	cfg, err := loadConfig(opts, changed)
	if err != nil {
		return err
	}
	reg, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("loading models from %s: %w", cfg.ModelsDir, err)
	}
	if len(reg) == 0 {
		return fmt.Errorf("no *.gguf models found in %s", cfg.ModelsDir)
	}
	modelID := cfg.DefaultModel
	if modelID == "" {
		modelID = reg[0].ID
	}

	eng := engine.NewWithConfig(engine.EngineConfig{
		Registry:     reg,
		DefaultModel: modelID,
		MaxNewTokens: cfg.MaxNewTokens,
		Temperature:  cfg.Temperature,
		BudgetMB:     cfg.MemBudgetMB,
		MarginMB:     cfg.MemMarginMB,
		CacheTTL:     time.Duration(cfg.CacheTTLSeconds) * time.Second,
	})
	if cfg.ServerURL != "" {
		eng.SetInferenceAdapter(engine.NewLlamaServerAdapter(cfg.ServerURL, "", 120*time.Second, 5*time.Second))
		log.Info().Str("server_url", cfg.ServerURL).Msg("using llama.cpp server adapter")
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("engine close")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Debug().Str("model", modelID).Int("models", len(reg)).Msg("starting console")
	svc := engineCorrector{eng: eng, model: modelID}
	return cli.Run(ctx, svc, modelID, os.Stdin, os.Stdout)
}

// engineCorrector binds the engine to one model for the console loop.
type engineCorrector struct {
	eng   *engine.Engine
	model string
}

func (s engineCorrector) Correct(ctx context.Context, text string) (string, error) {
	resp, err := s.eng.Correct(ctx, types.CorrectRequest{Model: s.model, Text: text})
	if err != nil {
		return "", err
	}
	return resp.Corrected, nil
}
