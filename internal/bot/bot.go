package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/villa_bot/internal/charts"
	"github.com/ivanoskov/villa_bot/internal/model"
	"github.com/ivanoskov/villa_bot/internal/repository"
	"github.com/ivanoskov/villa_bot/internal/service"
)

// ErrBadUpdate тело вебхука не является обновлением Telegram
var ErrBadUpdate = errors.New("malformed update")

const (
	commandLeads       = "leads"
	defaultLeadsDigest = 5
	maxLeadsDigest     = 20
)

// botAPI часть tgbotapi.BotAPI, которой пользуется бот
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// LeadLister отдаёт последние заявки для /leads
type LeadLister interface {
	RecentLeads(ctx context.Context, filter repository.LeadFilter) ([]model.LeadRow, error)
}

type updateObserver interface {
	ObserveUpdate(kind string, d time.Duration)
}

type Bot struct {
	api      botAPI
	engine   *service.Engine
	charts   *charts.ChartGenerator
	leads    LeadLister
	isAdmin  func(userID int64) bool
	observer updateObserver
	log      *slog.Logger
}

type Option func(*Bot)

func WithAdmins(isAdmin func(userID int64) bool) Option {
	return func(b *Bot) { b.isAdmin = isAdmin }
}

func WithLeadLister(l LeadLister) Option {
	return func(b *Bot) { b.leads = l }
}

func WithObserver(o updateObserver) Option {
	return func(b *Bot) { b.observer = o }
}

// NewAPI авторизуется в Telegram по токену
func NewAPI(token string, log *slog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	log.Info("telegram bot authorized", "username", api.Self.UserName)
	return api, nil
}

func NewBot(api botAPI, engine *service.Engine, log *slog.Logger, opts ...Option) *Bot {
	b := &Bot{
		api:     api,
		engine:  engine,
		charts:  charts.NewChartGenerator(),
		isAdmin: func(int64) bool { return false },
		log:     log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func identityOf(message *tgbotapi.Message) model.UserIdentity {
	user := model.UserIdentity{ChatID: message.Chat.ID, UserID: message.Chat.ID}
	if message.From != nil {
		user.UserID = message.From.ID
		user.Username = message.From.UserName
	}
	return user
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.Chat == nil || message.Text == "" {
		return nil
	}

	start := time.Now()
	kind := "message"
	if message.IsCommand() {
		kind = "command"
	}
	defer func() {
		if b.observer != nil {
			b.observer.ObserveUpdate(kind, time.Since(start))
		}
	}()

	user := identityOf(message)
	if message.IsCommand() {
		return b.handleCommand(ctx, user, message)
	}
	return b.send(user.ChatID, b.engine.HandleText(ctx, user, message.Text))
}

func (b *Bot) handleCommand(ctx context.Context, user model.UserIdentity, message *tgbotapi.Message) error {
	switch message.Command() {
	case service.CommandStart:
		return b.send(user.ChatID, b.engine.Start(ctx, user, message.CommandArguments()))
	case service.CommandRent:
		return b.send(user.ChatID, b.engine.Rent(ctx, user))
	case service.CommandCancel:
		return b.send(user.ChatID, b.engine.Cancel(ctx, user))
	case service.CommandLinks:
		return b.send(user.ChatID, b.engine.Links(ctx, user))
	case service.CommandMyID:
		return b.send(user.ChatID, b.engine.Identity(user))
	case service.CommandFunnel:
		if b.isAdmin(user.UserID) {
			return b.handleFunnel(user.ChatID)
		}
	case commandLeads:
		if b.isAdmin(user.UserID) {
			return b.handleLeads(ctx, user.ChatID, message.CommandArguments())
		}
	}

	b.log.Debug("command ignored", "chat_id", user.ChatID, "command", message.Command())
	return nil
}

func (b *Bot) handleFunnel(chatID int64) error {
	funnel := b.engine.Funnel()
	if funnel == nil {
		return b.sendText(chatID, "Статистика воронки отключена.")
	}

	summary, err := funnel.Summary()
	if err != nil {
		b.log.Error("failed to build funnel", "error", err)
		return b.sendText(chatID, "❌ Не удалось получить статистику")
	}
	labels, values, err := funnel.GraphData()
	if err != nil {
		return b.sendText(chatID, summary)
	}

	img, err := b.charts.GenerateFunnelChart(labels, values)
	if err != nil || img == nil {
		if err != nil {
			b.log.Error("failed to render funnel chart", "error", err)
		}
		return b.sendText(chatID, summary)
	}
	if err := b.sendPhoto(chatID, "funnel.png", img, summary); err != nil {
		return err
	}

	drop, err := b.charts.GenerateDropOffChart(labels, values)
	if err != nil {
		b.log.Error("failed to render drop-off chart", "error", err)
		return nil
	}
	if drop != nil {
		return b.sendPhoto(chatID, "dropoff.png", drop, "")
	}
	return nil
}

func (b *Bot) handleLeads(ctx context.Context, chatID int64, args string) error {
	if b.leads == nil {
		return b.sendText(chatID, "Хранилище заявок не настроено.")
	}

	limit := defaultLeadsDigest
	if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 {
		limit = min(n, maxLeadsDigest)
	}

	rows, err := b.leads.RecentLeads(ctx, repository.LeadFilter{Limit: limit})
	if err != nil {
		b.log.Error("failed to get recent leads", "error", err)
		return b.sendText(chatID, "❌ Не удалось получить заявки")
	}
	return b.sendText(chatID, service.LeadsDigest(rows))
}

// send отправляет ответы по порядку. Ошибка одного сообщения не отменяет остальные.
func (b *Bot) send(chatID int64, replies []service.Reply) error {
	var firstErr error
	for _, r := range replies {
		msg := tgbotapi.NewMessage(chatID, r.Text)
		if r.HTML {
			msg.ParseMode = tgbotapi.ModeHTML
		}
		msg.DisableWebPagePreview = r.DisablePreview
		if markup := replyMarkup(r.Keyboard); markup != nil {
			msg.ReplyMarkup = markup
		}

		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("failed to send message", "chat_id", chatID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.send(chatID, []service.Reply{{Text: text}})
}

func (b *Bot) sendPhoto(chatID int64, name string, img []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: img})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error("failed to send photo", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

// Start запускает бота в режиме long polling до отмены контекста
func (b *Bot) Start(ctx context.Context) error {
	// вебхук и getUpdates не работают одновременно
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.log.Warn("failed to delete webhook", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				// Логируем ошибку, но продолжаем работу
				b.log.Error("error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("%w: %v", ErrBadUpdate, err)
	}

	return b.handleUpdate(ctx, update)
}

// SetWebhook регистрирует вебхук, накопившиеся обновления отбрасываются
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	wh.DropPendingUpdates = true

	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}
