// Yuban is a voice-based Mandarin tutoring daemon. It transcribes recorded
// learner audio, generates dual-language tutor replies with synthesized
// speech, and keeps a linear conversation history.
//
// Usage:
//
//	yuban [flags]
//	yuban --config /path/to/yuban.yaml
//
// @title       yuban API
// @version     1.0
// @description Voice-based Mandarin tutoring relay.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nihao-labs/yuban/docs"
	"github.com/nihao-labs/yuban/internal/config"
	"github.com/nihao-labs/yuban/internal/health"
	"github.com/nihao-labs/yuban/internal/provider/groq"
	"github.com/nihao-labs/yuban/internal/relay"
	"github.com/nihao-labs/yuban/internal/speech"
	geminisynth "github.com/nihao-labs/yuban/internal/speech/gemini"
	gttssynth "github.com/nihao-labs/yuban/internal/speech/gtts"
	"github.com/nihao-labs/yuban/internal/speech/normalize"
	"github.com/nihao-labs/yuban/internal/store"
	filestore "github.com/nihao-labs/yuban/internal/store/file"
	"github.com/nihao-labs/yuban/internal/store/localblob"
	pgstore "github.com/nihao-labs/yuban/internal/store/postgres"
	"github.com/nihao-labs/yuban/internal/store/supabase"
	"github.com/nihao-labs/yuban/internal/tutor"
	httptransport "github.com/nihao-labs/yuban/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/yuban.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("yuban %s\n", version)
		os.Exit(0)
	}

	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	docs.SwaggerInfo.Version = version
	slog.Info("yuban starting", "version", version)

	// Root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	groqClient := groq.New(cfg.Groq)

	// Conversation store.
	var turnStore store.Store
	switch cfg.Store.Backend {
	case "file":
		turnStore = filestore.New(cfg.Store.File.Path)
		slog.Info("using file store", "path", cfg.Store.File.Path)
	case "postgres":
		if cfg.Store.Postgres.DSN == "" {
			slog.Error("postgres store selected but no DSN configured (set DATABASE_URL)")
			os.Exit(1)
		}
		pg, err := pgstore.New(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			slog.Error("failed to open postgres store", "error", err)
			os.Exit(1)
		}
		turnStore = pg
		slog.Info("using postgres store")
	default:
		slog.Error("unknown store backend", "backend", cfg.Store.Backend)
		os.Exit(1)
	}
	defer turnStore.Close()

	// Audio artifact store. A missing Supabase credential disables audio
	// output rather than failing startup.
	var (
		blobs    store.BlobStore
		audioDir string
	)
	switch cfg.Store.Blob.Backend {
	case "local":
		blobs = localblob.New(cfg.Store.Blob.Local.Dir, cfg.Store.Blob.Local.URLPrefix)
		audioDir = cfg.Store.Blob.Local.Dir
		slog.Info("using local audio store", "dir", audioDir)
	case "supabase":
		if cfg.Store.Blob.Supabase.URL == "" || cfg.Store.Blob.Supabase.Key == "" {
			slog.Warn("supabase blob store not configured, audio output disabled")
		} else {
			blobs = supabase.New(cfg.Store.Blob.Supabase.URL, cfg.Store.Blob.Supabase.Key, cfg.Store.Blob.Supabase.Bucket)
			slog.Info("using supabase audio store", "bucket", cfg.Store.Blob.Supabase.Bucket)
		}
	default:
		slog.Error("unknown blob backend", "backend", cfg.Store.Blob.Backend)
		os.Exit(1)
	}

	// Speech synthesis backend. Misconfiguration disables synthesis, the
	// text pipeline keeps working.
	var synth speech.Synthesizer
	switch cfg.Speech.Backend {
	case "gtts":
		synth = gttssynth.New(cfg.Speech.GTTS)
		slog.Info("using Google Translate TTS", "language", cfg.Speech.GTTS.Language)
	case "gemini":
		g, err := geminisynth.New(ctx, cfg.Speech.Gemini)
		if err != nil {
			slog.Warn("gemini TTS unavailable, audio output disabled", "error", err)
		} else {
			synth = g
			slog.Info("using Gemini TTS", "model", cfg.Speech.Gemini.Model, "voice", cfg.Speech.Gemini.Voice)
		}
	case "none":
		slog.Info("speech synthesis disabled")
	default:
		slog.Error("unknown speech backend", "backend", cfg.Speech.Backend)
		os.Exit(1)
	}
	if synth != nil {
		defer synth.Close()
		if cfg.Speech.Normalize {
			synth = normalize.Wrap(synth, cfg.Speech.FFmpegPath)
			slog.Info("loudness normalization enabled", "ffmpeg", cfg.Speech.FFmpegPath)
		}
	}

	pipeline := relay.New(relay.Options{
		Transcriber: groqClient,
		Provider:    groqClient,
		Generator:   tutor.NewGenerator(groqClient, cfg.Tutor.HistoryWindow),
		Synthesizer: synth,
		Store:       turnStore,
		Blobs:       blobs,
	})

	healthServer := health.New(cfg.Server.HealthPort)
	apiServer := httptransport.New(cfg.Server.Port, pipeline, audioDir, cfg.Store.Blob.Local.URLPrefix)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := apiServer.ListenAndServe(ctx); err != nil {
			slog.Error("api server failed", "error", err)
			cancel()
		}
	}()

	healthServer.SetReady(true)
	slog.Info("yuban ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	if err := apiServer.Close(); err != nil {
		slog.Error("api server close error", "error", err)
	}

	wg.Wait()
	slog.Info("yuban stopped")
}
