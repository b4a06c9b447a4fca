package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivanoskov/villa_bot/internal/app"
	"github.com/ivanoskov/villa_bot/internal/bot"
	"github.com/ivanoskov/villa_bot/internal/config"
	"github.com/ivanoskov/villa_bot/internal/logger"
)

func main() {
	log := logger.New(os.Getenv("APP_ENV"))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log = logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log, app.Options{ProbeLLM: true})
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}()

	server := bot.NewServer(a.Bot, cfg.TelegramToken, a.Metrics.Handler(), log)

	if cfg.BotMode == config.ModePolling {
		// healthcheck и метрики нужны и при локальном запуске
		go func() {
			if err := server.Run(ctx, cfg.Addr()); err != nil {
				log.Error("server error", "error", err)
			}
		}()
		log.Info("starting long polling")
		if err := a.Bot.Start(ctx); err != nil {
			log.Error("polling stopped", "error", err)
		}
		return
	}

	if err := a.Bot.SetWebhook(cfg.WebhookURL()); err != nil {
		log.Error("failed to register webhook", "error", err)
		return
	}
	log.Info("webhook registered", "base", cfg.WebhookBase)

	if err := server.Run(ctx, cfg.Addr()); err != nil {
		log.Error("server error", "error", err)
	}
}
