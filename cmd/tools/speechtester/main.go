package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/farmease/farmease-ai/internal/config"
	speechmodel "github.com/farmease/farmease-ai/internal/model/speech"
	"github.com/farmease/farmease-ai/internal/service/speech"
)

func main() {
	zlogger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(zlogger)
	sugar := zlogger.Sugar()
	defer func() { _ = sugar.Sync() }()

	if err := godotenv.Load(); err != nil {
		sugar.Infow("no .env file loaded, using process environment", "err", err)
	}

	mode := flag.String("mode", "", "test mode: asr or tts")
	audioPath := flag.String("audio", "", "input audio file for asr")
	text := flag.String("text", "", "input text for tts")
	outputPath := flag.String("out", "", "output audio file for tts (generated when empty)")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	flag.Parse()

	if *mode != "asr" && *mode != "tts" {
		flag.Usage()
		sugar.Fatal("choose a test mode with -mode=asr or -mode=tts")
	}

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("failed to load configuration", "err", err)
	}

	svc := speech.NewService(speech.Options{
		WhisperAPIKey:     cfg.LLM.GroqAPIKey,
		WhisperBaseURL:    cfg.LLM.GroqBaseURL,
		WhisperModel:      cfg.Speech.WhisperModel,
		HuggingFaceAPIKey: cfg.Speech.HuggingFaceAPIKey,
		TTSURL:            cfg.Speech.TTSURL,
		Timeout:           cfg.Speech.Timeout,
		MaxAudioBytes:     cfg.Speech.MaxAudioBytes,
		MockMode:          cfg.Server.MockMode,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "asr":
		runASR(ctx, sugar, svc, *audioPath)
	case "tts":
		runTTS(ctx, sugar, svc, *text, *outputPath)
	}
}

func runASR(ctx context.Context, sugar *zap.SugaredLogger, svc *speech.Service, audioPath string) {
	if audioPath == "" {
		sugar.Fatal("asr mode needs an audio file via -audio")
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		sugar.Fatalw("failed to read audio file", "path", audioPath, "err", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
	if ext == "" {
		ext = "wav"
	}
	clip := speechmodel.Clip{Data: data, Filename: filepath.Base(audioPath), ContentType: "audio/" + ext}

	sugar.Infow("starting asr test", "file", clip.Filename, "bytes", len(data))
	started := time.Now()
	text, err := svc.Transcribe(ctx, clip)
	if err != nil {
		sugar.Fatalw("asr failed", "err", err)
	}

	sugar.Infow("asr succeeded", "text", text, "elapsed", time.Since(started))
}

func runTTS(ctx context.Context, sugar *zap.SugaredLogger, svc *speech.Service, text, outputPath string) {
	if strings.TrimSpace(text) == "" {
		sugar.Fatal("tts mode needs text via -text")
	}

	sugar.Infow("starting tts test", "chars", len(text))
	audio, err := svc.Synthesize(ctx, text)
	if err != nil {
		sugar.Fatalw("tts failed", "err", err)
	}

	if outputPath == "" {
		ext := "wav"
		if audio.MediaType == speech.MediaTypeMPEG {
			ext = "mp3"
		}
		outputPath = fmt.Sprintf("tts-output-%d.%s", time.Now().Unix(), ext)
	}

	if err := os.WriteFile(outputPath, audio.Data, 0o644); err != nil {
		sugar.Fatalw("failed to write audio file", "path", outputPath, "err", err)
	}

	sugar.Infow("tts succeeded", "out", outputPath, "bytes", len(audio.Data), "media", audio.MediaType)
}
