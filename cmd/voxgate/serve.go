package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/groq"
	"github.com/voxgate/voxgate/internal/logger"
	"github.com/voxgate/voxgate/internal/media"
	"github.com/voxgate/voxgate/internal/rotation"
	"github.com/voxgate/voxgate/internal/server"
	"github.com/voxgate/voxgate/internal/state"
	"github.com/voxgate/voxgate/internal/telegram"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideRotationRunner,
			provideGroqClient,
			provideStore,
			providePipeline,
			provideBotAPI,
			provideBot,
			provideServer,
		),
		fx.Invoke(
			startBot,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideRotationRunner(log *slog.Logger, cfg config.Config) *rotation.Runner {
	rotator := rotation.NewRotator(rotation.ParseKeys(cfg.Groq.Keys))
	return rotation.NewRunner(rotator, log)
}

func provideGroqClient(log *slog.Logger, runner *rotation.Runner, cfg config.Config) *groq.Client {
	return groq.NewClient(log, runner, cfg.Groq.RequestTimeout(), cfg.Groq.TextModel)
}

func provideStore() state.Store { return state.NewMemoryStore() }

func providePipeline(log *slog.Logger, client *groq.Client, cfg config.Config) (*media.Pipeline, error) {
	if err := os.MkdirAll(cfg.Media.DownloadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create downloads dir: %w", err)
	}
	return media.NewPipeline(log, client, media.NewExecRunner(), cfg.Media.DownloadsDir), nil
}

func provideBotAPI(cfg config.Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return api, nil
}

func provideBot(log *slog.Logger, api *tgbotapi.BotAPI, cfg config.Config, pipeline *media.Pipeline, client *groq.Client, store state.Store) *telegram.Bot {
	return telegram.New(log, api, cfg, pipeline, client, store)
}

func provideServer(cfg config.Config, bot *telegram.Bot) *server.Server {
	return server.NewServer(cfg.Server.Addr, server.Info{
		BotName:     bot.Username,
		TokenSet:    cfg.Telegram.BotToken != "",
		MaxUploadMB: cfg.Media.MaxUploadMB,
		TimeoutSecs: cfg.Groq.TimeoutSeconds,
		AdminChatID: cfg.Telegram.AdminChatID,
	})
}

func startBot(lc fx.Lifecycle, log *slog.Logger, bot *telegram.Bot, shutdowner fx.Shutdowner) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("bot stopped", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
