package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/agrotrack/internal/api"
	"github.com/gosuda/agrotrack/internal/auth"
	"github.com/gosuda/agrotrack/internal/cli"
	"github.com/gosuda/agrotrack/internal/config"
	"github.com/gosuda/agrotrack/internal/diag"
	"github.com/gosuda/agrotrack/internal/failure"
	"github.com/gosuda/agrotrack/internal/httpclient"
	"github.com/gosuda/agrotrack/internal/messenger/slack"
	"github.com/gosuda/agrotrack/internal/notify"
	"github.com/gosuda/agrotrack/internal/notify/console"
	"github.com/gosuda/agrotrack/internal/server"
	redisstore "github.com/gosuda/agrotrack/internal/store/redis"
)

const recorderDrainTimeout = 3 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return cli.ExitUsage
	}
	setupLogging(cfg)

	app, cleanup, err := build(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return cli.ExitFailure
	}
	defer cleanup()

	return app.Run(ctx, os.Args[1:])
}

func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel())
	if cfg.Log.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("env", cfg.Env).Logger()
}

// build wires the application. cleanup releases everything build opened.
func build(ctx context.Context, cfg *config.Config) (*cli.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Notifications.
	renderers := notify.NewRegistry()
	renderers.Register(config.RendererConsole, console.New(os.Stderr, os.Stdin))
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		renderers.Register(config.RendererSlack, notify.NewChatRenderer(slack.NewFromToken(cfg.Slack.BotToken), cfg.Slack.Channel))
	}
	renderer, err := renderers.Select(cfg.Notify.Renderers)
	if err != nil {
		return nil, cleanup, fmt.Errorf("notifications: %w", err)
	}
	dispatcher := notify.NewDispatcher(renderer, notify.WithDefaultTimer(cfg.Notify.Timer))

	// Diagnostics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	writers := []diag.Writer{diag.NewLogWriter(log.Logger)}
	var (
		pubsub  *redisstore.PubSub
		channel = redisstore.DiagnosticsChannel(cfg.Redis.Channel, cfg.Env)
	)
	if cfg.Redis.Addr != "" {
		pubsub, err = redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = pubsub.Close() })
		writers = append(writers, diag.NewPublishWriter(pubsub, channel))
	}

	recorder := diag.NewRecorder(writers,
		diag.WithBuffer(cfg.DiagBuffer),
		diag.WithMetrics(diag.NewMetrics(registry)),
	)
	closers = append(closers, func() {
		drainCtx, drainCancel := context.WithTimeout(context.WithoutCancel(ctx), recorderDrainTimeout)
		defer drainCancel()
		if err := recorder.Close(drainCtx); err != nil {
			log.Warn().Err(err).Msg("diagnostics not fully flushed")
		}
	})

	sink := failure.New(dispatcher,
		failure.WithRecorder(recorder),
		failure.WithEnvironment(cfg.Env),
	)

	// Backend client.
	clientOpts := []httpclient.Option{
		httpclient.WithPolicy(cfg.Policy()),
		httpclient.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		httpclient.WithReporter(sink),
	}
	if cfg.API.Token != "" {
		clientOpts = append(clientOpts, httpclient.WithTokenSource(auth.NewTokenSource(cfg.API.Token)))
	}
	client := httpclient.New(cfg.API.URL, clientOpts...)

	// Metrics endpoint.
	if cfg.MetricsAddr != "" {
		var srvOpts []server.Option
		if pubsub != nil {
			srvOpts = append(srvOpts, server.WithHealthCheck(pubsub.Ping))
		}
		srv := server.New(cfg.MetricsAddr, registry, srvOpts...)
		srvCtx, srvCancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			if err := srv.Run(srvCtx); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		closers = append(closers, func() {
			srvCancel()
			<-done
		})
	}

	opts := []cli.Option{}
	if pubsub != nil {
		opts = append(opts, cli.WithSubscriber(pubsub, channel))
	}
	return cli.New(api.New(client), dispatcher, sink, opts...), cleanup, nil
}
