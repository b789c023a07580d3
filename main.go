// Command archiver is the main entrypoint for the video archival bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Builds the R2 archiver, media stager, and Discord session, and wires
//     them into the ingestion handler and sync reconciler.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/activitybank/archiver/archive"
	"github.com/activitybank/archiver/config"
	"github.com/activitybank/archiver/db"
	"github.com/activitybank/archiver/discordbot"
	"github.com/activitybank/archiver/media"
	"github.com/activitybank/archiver/server"
	"github.com/activitybank/archiver/stage"
	"github.com/activitybank/archiver/storage"
	"github.com/activitybank/archiver/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateDiscordReady(); err != nil {
		slog.Error("discord config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing("archiver", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.Migrate(ctx, database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}

	// Collaborators: object store, stager, optional compressor, platform.
	r2, err := storage.NewR2(ctx, cfg)
	if err != nil {
		slog.Error("failed to build r2 client", slog.Any("err", err))
		os.Exit(1)
	}
	var compressor archive.Compressor
	if cfg.CompressEnabled {
		compressor = &media.FFmpeg{Dir: cfg.DataDir, CRF: cfg.CompressCRF}
		slog.Info("video compression enabled", slog.Int("crf", cfg.CompressCRF))
	}

	session, err := discordbot.NewSession(cfg.DiscordToken)
	if err != nil {
		slog.Error("failed to create discord session", slog.Any("err", err))
		os.Exit(1)
	}
	adapter := &discordbot.Adapter{S: session}
	store := db.NewStore(database)
	registry := &archive.Registry{Ledger: store, Owners: adapter}
	ingest := &archive.Handler{
		Ledger:     store,
		Stager:     stage.NewFetcher(cfg.DataDir),
		Archiver:   r2,
		Compressor: compressor,
		Notifier:   adapter,
	}
	reconciler := &archive.Reconciler{
		Registry:  registry,
		History:   adapter,
		Notifier:  adapter,
		Pipeline:  ingest,
		BatchSize: cfg.SyncBatchSize,
	}
	bot := &discordbot.Bot{
		Session:    session,
		Registry:   registry,
		Handler:    ingest,
		Reconciler: reconciler,
		Prefix:     cfg.CommandPrefix,
	}
	if err := bot.Start(ctx); err != nil {
		slog.Error("failed to start discord bot", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("bot started", slog.String("prefix", cfg.CommandPrefix))

	// HTTP server (health/status/metrics)
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	go func() {
		if err := server.Start(ctx, database, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
