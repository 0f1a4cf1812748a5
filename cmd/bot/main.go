// Command bot runs the morning post pipeline: it assembles the daily post
// at the configured time and delivers it to the Telegram channel.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"morning-post/internal/infra/holidays"
	"morning-post/internal/infra/imagegen"
	"morning-post/internal/infra/settings"
	"morning-post/internal/infra/textgen"
	"morning-post/internal/infra/transport"
	workerPkg "morning-post/internal/infra/worker"
	"morning-post/internal/observability/logging"
	"morning-post/internal/observability/tracing"
	"morning-post/internal/usecase/assemble"
	"morning-post/internal/usecase/post"
	"morning-post/pkg/config"
	"morning-post/pkg/guard"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.InitProvider("morning-post-bot")
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	settingsStore, err := settings.Open(config.GetEnvString("SETTINGS_PATH", "data/settings.yaml"))
	if err != nil {
		logger.Error("failed to open settings store", slog.Any("error", err))
		os.Exit(1)
	}

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("generation_timeout", workerConfig.GenerationTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	registry := guard.NewRegistry(guard.Config{
		Metrics: guard.NewPromMetrics(prometheus.DefaultRegisterer),
		Logger:  logger,
	})

	textGenerator := buildTextGenerator(logger)
	imageGenerator := buildImageGenerator(logger)
	factsSource := buildHolidaySource(logger)
	messenger, channel, adminChat := buildTransport(logger)

	assembler := assemble.NewService(factsSource, textGenerator, imageGenerator, registry, settingsStore.Get, logger)
	coordinator := post.NewCoordinator(post.NewStore(), messenger, assembler, templateSource(settingsStore), channel, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runMetricsServer(gctx, logger, registry)
	})

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	g.Go(func() error {
		if err := healthServer.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	job := &postJob{
		assembler:   assembler,
		coordinator: coordinator,
		transport:   messenger,
		metrics:     workerMetrics,
		logger:      logger,
		timeout:     workerConfig.GenerationTimeout,
		location:    workerConfig.Location(),
		autoPublish: config.GetEnvBool("POST_AUTO_PUBLISH", true),
		adminChat:   adminChat,
	}

	scheduler := cron.New(cron.WithLocation(workerConfig.Location()))
	if _, err := scheduler.AddFunc(workerConfig.CronSchedule, func() { job.Run(gctx) }); err != nil {
		logger.Error("failed to schedule post job", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()

	healthServer.SetReady(true)
	logger.Info("bot started",
		slog.String("schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.String("channel", channel),
		slog.Bool("auto_publish", job.autoPublish))

	<-gctx.Done()

	// Let an in-flight job finish before the process exits.
	<-scheduler.Stop().Done()
	healthServer.SetReady(false)

	if err := g.Wait(); err != nil {
		logger.Error("server error during shutdown", slog.Any("error", err))
	}
	logger.Info("shutdown complete")
}

// buildTextGenerator creates the recipe text generator. The bot cannot do
// anything useful without one, so a broken configuration is fatal.
func buildTextGenerator(logger *slog.Logger) textgen.Generator {
	cfg, err := textgen.LoadConfig()
	if err != nil {
		logger.Error("invalid text generator configuration", slog.Any("error", err))
		os.Exit(1)
	}
	gen, err := textgen.New(cfg)
	if err != nil {
		logger.Error("failed to create text generator", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("text generator initialized", slog.String("provider", cfg.Provider))
	return gen
}

// buildImageGenerator creates the image generator. Images are optional, so
// a broken configuration downgrades to disabled instead of failing startup.
func buildImageGenerator(logger *slog.Logger) imagegen.Generator {
	cfg, err := imagegen.LoadConfig()
	if err != nil {
		logger.Warn("invalid image generator configuration, images disabled", slog.Any("error", err))
		return imagegen.Disabled{}
	}
	gen, err := imagegen.New(cfg)
	if err != nil {
		logger.Warn("failed to create image generator, images disabled", slog.Any("error", err))
		return imagegen.Disabled{}
	}
	logger.Info("image generator initialized", slog.String("provider", cfg.Provider))
	return gen
}

// buildHolidaySource combines the configured holiday sources. The local
// file is consulted first so curated entries win over API results. An
// empty source list is fine; posts simply go out without a holidays block.
func buildHolidaySource(logger *slog.Logger) holidays.Source {
	var sources []holidays.Source

	if path := os.Getenv("HOLIDAYS_LOCAL_PATH"); path != "" {
		local, err := holidays.NewLocalSource(path)
		if err != nil {
			logger.Warn("failed to load local holiday file", slog.String("path", path), slog.Any("error", err))
		} else {
			sources = append(sources, local)
			logger.Info("local holiday source initialized", slog.String("path", path))
		}
	}

	if os.Getenv("CALENDARIFIC_API_KEY") != "" {
		cfg, err := holidays.LoadConfig()
		if err != nil {
			logger.Warn("invalid holidays configuration, API source disabled", slog.Any("error", err))
		} else {
			sources = append(sources, holidays.NewClient(cfg))
			logger.Info("calendarific holiday source initialized")
		}
	}

	if len(sources) == 0 {
		logger.Info("no holiday sources configured")
	}
	return holidays.NewMulti(sources...)
}

// buildTransport selects the delivery transport and resolves the channel
// and admin chat targets.
//
// Environment variables:
//   - DRY_RUN: log deliveries instead of sending them (default: false)
//   - POST_CHANNEL_ID: channel identifier, e.g. "@utro_pp" (required unless dry run)
//   - ADMIN_CHAT_ID: chat receiving previews when auto publish is off
func buildTransport(logger *slog.Logger) (transport.Transport, string, string) {
	adminChat := os.Getenv("ADMIN_CHAT_ID")

	if config.GetEnvBool("DRY_RUN", false) {
		logger.Info("dry run enabled, deliveries will be logged only")
		return transport.NewNoop(), config.GetEnvString("POST_CHANNEL_ID", "@dry-run"), adminChat
	}

	cfg, err := transport.LoadConfig()
	if err != nil {
		logger.Error("invalid telegram configuration", slog.Any("error", err))
		os.Exit(1)
	}

	channel := os.Getenv("POST_CHANNEL_ID")
	if channel == "" {
		logger.Error("POST_CHANNEL_ID is required")
		os.Exit(1)
	}

	return transport.NewTelegram(cfg), channel, adminChat
}

// templateSource derives the render template from the current operator
// settings on every call, so settings changes apply to the next post
// without a restart.
func templateSource(store *settings.Store) post.TemplateSource {
	return func() post.Template {
		s := store.Get()
		return post.Template{
			Kind:      s.TextTemplate,
			Budget:    s.TemplateBudget(),
			Signature: s.ChannelSignature(),
		}
	}
}
