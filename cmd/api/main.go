package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/farmease/farmease-ai/internal/config"
	"github.com/farmease/farmease-ai/internal/handler"
	"github.com/farmease/farmease-ai/internal/mockreply"
	"github.com/farmease/farmease-ai/internal/service/chat"
	"github.com/farmease/farmease-ai/internal/service/llm"
	"github.com/farmease/farmease-ai/internal/service/ratelimit"
	"github.com/farmease/farmease-ai/internal/service/speech"
)

func main() {
	var usage bool
	flag.BoolVar(&usage, "usage", false, "show environment variables")
	flag.Parse()
	if usage {
		_ = config.Usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	sugar := newLogger(cfg != nil && cfg.Server.Debug)
	defer func() { _ = sugar.Sync() }()
	if err != nil {
		sugar.Fatalw("failed to load configuration", "err", err)
	}
	if envErr != nil {
		sugar.Infow("no .env file loaded, using process environment", "err", envErr)
	}

	preset, err := llm.LoadPreset(cfg.LLM.PresetFile)
	if err != nil {
		sugar.Fatalw("failed to load preset", "file", cfg.LLM.PresetFile, "err", err)
	}

	var generator chat.Generator
	if cfg.Server.MockMode {
		sugar.Infow("mock mode enabled, replies come from the built-in catalog")
	} else {
		chatModel, err := cfg.LLM.NewChatModel(ctx)
		if err != nil {
			sugar.Fatalw("failed to create chat model", "provider", cfg.LLM.Provider, "err", err)
		}
		llmSvc, err := llm.NewService(ctx, chatModel, preset)
		if err != nil {
			sugar.Fatalw("failed to initialize llm service", "err", err)
		}
		generator = llmSvc
		sugar.Infow("llm service initialized", "provider", cfg.LLM.Provider)
	}
	chatSvc := chat.NewService(generator, mockreply.NewCatalog(), cfg.Server.MockMode)

	speechSvc := speech.NewService(speech.Options{
		WhisperAPIKey:     cfg.LLM.GroqAPIKey,
		WhisperBaseURL:    cfg.LLM.GroqBaseURL,
		WhisperModel:      cfg.Speech.WhisperModel,
		HuggingFaceAPIKey: cfg.Speech.HuggingFaceAPIKey,
		TTSURL:            cfg.Speech.TTSURL,
		Timeout:           cfg.Speech.Timeout,
		MaxAudioBytes:     cfg.Speech.MaxAudioBytes,
		MockMode:          cfg.Server.MockMode,
	})
	if !speechSvc.SynthesisEnabled() {
		sugar.Infow("HUGGINGFACE_API_KEY not set, /speak will answer 503")
	}

	limiter, err := ratelimit.New(ctx, cfg.RateLimit.PerMinute, cfg.RateLimit.RedisURI)
	if err != nil {
		sugar.Fatalw("failed to initialize rate limiter", "err", err)
	}
	defer limiter.Close()

	router := handler.NewRouter(handler.Dependencies{
		Chat:           chatSvc,
		Speech:         speechSvc,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Welcome:        preset.Welcome,
	})

	startServer(ctx, sugar, cfg.Server, router)
}

func newLogger(debug bool) *zap.SugaredLogger {
	build := zap.NewProduction
	if debug {
		build = zap.NewDevelopment
	}
	return installLogger(build)
}

// installLogger builds the global logger, or a no-op one when build fails.
func installLogger(build func(...zap.Option) (*zap.Logger, error)) *zap.SugaredLogger {
	zlogger, err := build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed, logging disabled: %v\n", err)
		zlogger = zap.NewNop()
	}
	zap.ReplaceGlobals(zlogger)
	return zlogger.Sugar()
}

func startServer(ctx context.Context, sugar *zap.SugaredLogger, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sugar.Infow("FarmEase AI backend listening", "addr", serverCfg.Addr, "mock", serverCfg.MockMode)
	if err := runServer(ctx, srv); err != nil {
		sugar.Fatalw("server error", "err", err)
	}
	sugar.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
