package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"korrektor/internal/config"
	"korrektor/internal/engine"
	"korrektor/internal/httpapi"
	"korrektor/internal/registry"
)

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("KORREKTOR_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	configPath := flag.String("config", "", "Config file (.yaml/.json/.toml); flags fill unset fields")
	modelsDir := flag.String("models-dir", "~/models/llm", "Directory to scan for *.gguf model files")
	memBudgetMB := flag.Int("mem-budget-mb", 0, "Memory budget in MB for all loaded models (0=unlimited)")
	memMarginMB := flag.Int("mem-margin-mb", 0, "Reserved memory margin in MB to keep free")
	defaultModel := flag.String("default-model", "", "Default model id when request omits model")
	maxNewTokens := flag.Int("max-new-tokens", 0, "Generation cap per correction (default 100)")
	cacheTTL := flag.Int("cache-ttl-seconds", 0, "Correction result cache TTL (0=disabled)")
	serverURL := flag.String("server-url", "", "llama.cpp server base URL; when set, inference goes over HTTP")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	flag.Parse()

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(w).Level(lvl).With().Timestamp().Logger()

	cfg := config.Config{
		Addr:         *addr,
		ModelsDir:    *modelsDir,
		DefaultModel: *defaultModel,
		MaxNewTokens: *maxNewTokens,
		MemBudgetMB:  *memBudgetMB,
		MemMarginMB:  *memMarginMB,
		ServerURL:    *serverURL,
	}
	cfg.CacheTTLSeconds = *cacheTTL
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		cfg = mergeConfig(fileCfg, cfg, setFlags)
	}

	reg, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ModelsDir).Msg("load models")
	}

	eng := engine.NewWithConfig(engine.EngineConfig{
		Registry:     reg,
		BudgetMB:     cfg.MemBudgetMB,
		MarginMB:     cfg.MemMarginMB,
		DefaultModel: cfg.DefaultModel,
		MaxNewTokens: cfg.MaxNewTokens,
		Temperature:  cfg.Temperature,
		CacheTTL:     time.Duration(cfg.CacheTTLSeconds) * time.Second,
	})
	if cfg.ServerURL != "" {
		eng.SetInferenceAdapter(engine.NewLlamaServerAdapter(cfg.ServerURL, os.Getenv("KORREKTOR_SERVER_API_KEY"), 120*time.Second, 5*time.Second))
		log.Info().Str("server_url", cfg.ServerURL).Msg("using llama.cpp server adapter")
	}

	httpapi.SetLogger(log)
	if cfg.CORSEnabled {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, nil, nil)
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(eng)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Int("models", len(reg)).Msg("korrektord listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := eng.Close(); err != nil {
		log.Warn().Err(err).Msg("engine close")
	}
}

// mergeConfig overlays flag values on top of file values. A flag named in
// setFlags was given explicitly and always wins, even when it repeats the
// default; otherwise the flag default only fills fields the file left unset.
func mergeConfig(file, flags config.Config, setFlags map[string]bool) config.Config {
	out := file
	if setFlags["addr"] || out.Addr == "" {
		out.Addr = flags.Addr
	}
	if setFlags["models-dir"] || out.ModelsDir == "" {
		out.ModelsDir = flags.ModelsDir
	}
	if setFlags["default-model"] || out.DefaultModel == "" {
		out.DefaultModel = flags.DefaultModel
	}
	if setFlags["max-new-tokens"] || out.MaxNewTokens == 0 {
		out.MaxNewTokens = flags.MaxNewTokens
	}
	if setFlags["mem-budget-mb"] || out.MemBudgetMB == 0 {
		out.MemBudgetMB = flags.MemBudgetMB
	}
	if setFlags["mem-margin-mb"] || out.MemMarginMB == 0 {
		out.MemMarginMB = flags.MemMarginMB
	}
	if setFlags["cache-ttl-seconds"] || out.CacheTTLSeconds == 0 {
		out.CacheTTLSeconds = flags.CacheTTLSeconds
	}
	if setFlags["server-url"] || out.ServerURL == "" {
		out.ServerURL = flags.ServerURL
	}
	return out
}
