package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// Notifier доставляет текст заявки в чат менеджеров
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LeadStore сохраняет строку заявки. saved=false без ошибки значит,
// что хранилище отключено.
type LeadStore interface {
	AppendLead(ctx context.Context, row model.LeadRow) (saved bool, err error)
}

const (
	defaultNotifyTimeout = 15 * time.Second
	phoneRegion          = "TH"
)

// FanOut отправляет готовую заявку в чат менеджеров и в хранилище.
// Доставки независимы: сбой одной не мешает другой и ответу пользователю.
type FanOut struct {
	notifier      Notifier
	store         LeadStore
	metrics       Recorder
	log           *slog.Logger
	now           func() time.Time
	notifyTimeout time.Duration
	wg            sync.WaitGroup
}

type FanOutOption func(*FanOut)

func WithRecorder(r Recorder) FanOutOption {
	return func(f *FanOut) { f.metrics = recorderOrNoop(r) }
}

func WithClock(now func() time.Time) FanOutOption {
	return func(f *FanOut) { f.now = now }
}

func WithNotifyTimeout(d time.Duration) FanOutOption {
	return func(f *FanOut) { f.notifyTimeout = d }
}

// NewFanOut создаёт координатор. notifier и store могут быть nil,
// тогда соответствующая доставка отключена.
func NewFanOut(notifier Notifier, store LeadStore, log *slog.Logger, opts ...FanOutOption) *FanOut {
	f := &FanOut{
		notifier:      notifier,
		store:         store,
		metrics:       noopRecorder{},
		log:           log,
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dispatch запускает уведомление в фоне и дожидается записи в хранилище
func (f *FanOut) Dispatch(ctx context.Context, lead model.Lead, user model.UserIdentity) model.LeadRow {
	createdAt := f.now().UTC()
	row := model.NewLeadRow(lead, user, createdAt)
	log := f.log.With("lead_id", row.ID, "chat_id", user.ChatID)

	if f.notifier != nil {
		text := NotificationText(lead, user, createdAt)
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.notifyTimeout)
			defer cancel()

			if err := f.notifier.Notify(nctx, text); err != nil {
				f.metrics.Delivery(SinkNotify, false)
				log.Error("failed to notify managers", "error", err)
				return
			}
			f.metrics.Delivery(SinkNotify, true)
			log.Info("lead sent to managers chat")
		}()
	} else {
		log.Warn("notify target not configured, lead notification skipped")
	}

	if f.store == nil {
		log.Warn("lead store not configured, lead not saved")
		return row
	}

	saved, err := f.store.AppendLead(ctx, row)
	switch {
	case err != nil:
		f.metrics.Delivery(SinkStore, false)
		log.Error("failed to save lead", "error", err)
	case !saved:
		f.metrics.Delivery(SinkStore, false)
		log.Warn("lead store disabled, lead not saved")
	default:
		f.metrics.Delivery(SinkStore, true)
		log.Info("lead saved")
	}
	return row
}

// Wait ждёт фоновые уведомления (остановка сервера, тесты)
func (f *FanOut) Wait() {
	f.wg.Wait()
}

// NotificationText сообщение для чата менеджеров
func NotificationText(lead model.Lead, user model.UserIdentity, createdAt time.Time) string {
	contact := lead.Contact
	if e164, ok := normalizePhone(contact); ok && e164 != strings.TrimSpace(contact) {
		contact += " (" + e164 + ")"
	}

	lines := []string{
		"🆕 Новая заявка Villa bot",
		"Клиент: " + lead.Name + " | TG: " + user.Mention(),
		"Лот: " + lead.LotID,
		"Тип: " + lead.PropertyType,
		"Район(ы): " + lead.District,
		"Бюджет (THB): " + lead.Budget,
		"Спален: " + lead.Bedrooms,
		"Check-in: " + lead.CheckIn + " | Check-out: " + lead.CheckOut,
		"Условия/прим.: " + lead.Notes,
		"Контакты: " + contact,
		"Трансфер: " + lead.Transfer,
		"Создано: " + createdAt.UTC().Format(model.TimestampLayout) + " UTC",
	}
	return strings.Join(lines, "\n")
}

// normalizePhone приводит телефон к E.164. Контакт в заявке хранится как есть,
// нормализованный номер только подсказка менеджеру.
func normalizePhone(contact string) (string, bool) {
	trimmed := strings.TrimSpace(contact)
	if trimmed == "" || strings.HasPrefix(trimmed, "@") || strings.Contains(trimmed, "@") {
		return "", false
	}

	number, err := phonenumbers.Parse(trimmed, phoneRegion)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}
	return phonenumbers.Format(number, phonenumbers.E164), true
}
