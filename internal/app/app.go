// Package app собирает зависимости бота из конфигурации.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ivanoskov/villa_bot/internal/bot"
	"github.com/ivanoskov/villa_bot/internal/config"
	"github.com/ivanoskov/villa_bot/internal/genai"
	"github.com/ivanoskov/villa_bot/internal/metrics"
	"github.com/ivanoskov/villa_bot/internal/repository"
	"github.com/ivanoskov/villa_bot/internal/service"
)

const probeTimeout = 15 * time.Second

type Options struct {
	// ProbeLLM сделать пробный запрос к OpenAI при старте
	ProbeLLM bool
}

type App struct {
	Bot     *bot.Bot
	Engine  *service.Engine
	FanOut  *service.FanOut
	Metrics *metrics.PrometheusRecorder

	closers []func() error
}

// Build создаёт все компоненты. Недоступные внешние сервисы отключаются
// с записью в лог; ошибкой считается только невозможность подключиться к Telegram.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	api, err := bot.NewAPI(cfg.TelegramToken, log)
	if err != nil {
		return nil, err
	}

	a := &App{Metrics: metrics.NewPrometheusRecorder(nil)}

	stores := a.buildStores(cfg, log)
	llm := buildLLM(ctx, cfg, log, opts.ProbeLLM)

	notifier := bot.NewChatNotifier(api, cfg.NotifyTarget)
	if notifier == nil {
		log.Warn("GROUP_CHAT_TARGET not set, lead notifications disabled")
	} else {
		log.Info("lead notifications enabled", "target", cfg.NotifyTarget.String())
	}

	a.FanOut = service.NewFanOut(notifier, stores.leads, log, service.WithRecorder(a.Metrics))
	chat := service.NewFreeChat(llm, log, service.WithChatRecorder(a.Metrics))
	a.Engine = service.NewEngine(a.FanOut, chat, log,
		service.WithFunnel(service.NewFunnel(stores.funnel, log)),
		service.WithEngineRecorder(a.Metrics),
	)

	botOpts := []bot.Option{
		bot.WithAdmins(cfg.IsAdmin),
		bot.WithObserver(a.Metrics),
	}
	if stores.lister != nil {
		botOpts = append(botOpts, bot.WithLeadLister(stores.lister))
	}
	a.Bot = bot.NewBot(api, a.Engine, log, botOpts...)
	return a, nil
}

type storeSet struct {
	leads  service.LeadStore
	lister bot.LeadLister
	funnel service.FunnelRepository
}

func (a *App) buildStores(cfg *config.Config, log *slog.Logger) storeSet {
	set := storeSet{funnel: repository.NewMemoryFunnelRepository()}

	switch cfg.LeadsStore {
	case config.StoreSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			log.Warn("SUPABASE_URL or SUPABASE_KEY not set, leads will not be saved")
			return set
		}
		repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTable, log)
		if err != nil {
			log.Error("supabase unavailable, leads will not be saved", "error", err)
			return set
		}
		set.leads, set.lister = repo, repo
		log.Info("lead store: supabase", "table", cfg.SupabaseTable)

	case config.StoreSQLite:
		repo, err := repository.NewSQLiteRepository(cfg.SQLiteDSN)
		if err != nil {
			log.Error("sqlite unavailable, leads will not be saved", "error", err)
			return set
		}
		set.leads, set.lister, set.funnel = repo, repo, repo
		a.closers = append(a.closers, repo.Close)
		log.Info("lead store: sqlite", "dsn", cfg.SQLiteDSN)

	default:
		repo := repository.NewSheetsRepository(repository.SheetsConfig{
			SpreadsheetID:   cfg.GoogleSheetID,
			CredentialsJSON: cfg.GoogleCredsJSON,
			Worksheet:       cfg.GoogleWorksheetName,
		}, log)
		set.leads = repo
		if repo.Enabled() {
			set.lister = repo
			log.Info("lead store: google sheets", "worksheet", cfg.GoogleWorksheetName)
		}
	}
	return set
}

// buildLLM возвращает nil, если OpenAI не настроен
func buildLLM(ctx context.Context, cfg *config.Config, log *slog.Logger, probe bool) service.Completer {
	client, err := genai.NewClient(
		genai.WithAPIKey(cfg.OpenAIKey),
		genai.WithProject(cfg.OpenAIProject),
		genai.WithOrganization(cfg.OpenAIOrg),
		genai.WithModel(cfg.OpenAIModel),
	)
	if errors.Is(err, genai.ErrDisabled) {
		log.Warn("OPENAI_API_KEY not set, free chat uses canned replies")
		return nil
	}
	if err != nil {
		log.Error("openai client unavailable", "error", err)
		return nil
	}

	log.Info("openai enabled", "model", client.Model(), "key_type", client.KeyType())
	if genai.NeedsProject(cfg.OpenAIKey, cfg.OpenAIProject) {
		log.Warn("project key used without OPENAI_PROJECT, requests may be rejected")
	}

	if probe {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := client.Probe(pctx); err != nil {
			log.Error("openai probe failed", "error", err)
		} else {
			log.Info("openai probe ok")
		}
	}
	return client
}

// Close ждёт фоновые уведомления и закрывает хранилища
func (a *App) Close() error {
	if a.FanOut != nil {
		a.FanOut.Wait()
	}
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
