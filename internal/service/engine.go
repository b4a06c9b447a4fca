package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// Engine ведёт анкету /rent и всё общение с пользователем вне Telegram-слоя.
// Каждый метод возвращает список ответов в порядке отправки.
type Engine struct {
	sessions *SessionStore
	fanOut   *FanOut
	chat     *FreeChat
	funnel   *Funnel
	metrics  Recorder
	log      *slog.Logger
	now      func() time.Time
}

type EngineOption func(*Engine)

func WithFunnel(f *Funnel) EngineOption {
	return func(e *Engine) { e.funnel = f }
}

func WithEngineRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.metrics = recorderOrNoop(r) }
}

func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(fanOut *FanOut, chat *FreeChat, log *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		sessions: NewSessionStore(),
		fanOut:   fanOut,
		chat:     chat,
		metrics:  noopRecorder{},
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sessions хранилище состояний (для диагностики и тестов)
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// Funnel статистика анкеты, может быть nil
func (e *Engine) Funnel() *Funnel {
	return e.funnel
}

// Start обрабатывает /start с необязательным параметром deep-link
func (e *Engine) Start(ctx context.Context, user model.UserIdentity, payload string) []Reply {
	s := e.sessions.acquire(user)
	defer s.mu.Unlock()

	lot := NormalizeLotPayload(payload)
	if lot == "" {
		s.State = model.StateNone
		s.Lead.DistrictSelection = nil
		replies := []Reply{{Text: StartGreeting}}
		return append(replies, e.rotateLinks(s)...)
	}

	e.log.Info("lot captured from deep link", "chat_id", user.ChatID, "lot", lot)
	s.Lead = model.Lead{LotID: lot}
	return e.begin(s, user)
}

// Rent запускает анкету заново, номер лота сохраняется
func (e *Engine) Rent(ctx context.Context, user model.UserIdentity) []Reply {
	s := e.sessions.acquire(user)
	defer s.mu.Unlock()
	return e.begin(s, user)
}

// Cancel прерывает анкету из любого состояния без отправки заявки
func (e *Engine) Cancel(ctx context.Context, user model.UserIdentity) []Reply {
	s := e.sessions.acquire(user)
	defer s.mu.Unlock()

	if s.State.Active() {
		e.metrics.ConversationCancelled()
		e.log.Info("conversation cancelled", "chat_id", user.ChatID, "state", s.State.String())
	}
	s.State = model.StateNone
	s.Lead = model.Lead{}
	return []Reply{{Text: CancelText, Keyboard: KeyboardRemove}}
}

// Links показывает ресурсы по запросу, без учёта интервала
func (e *Engine) Links(ctx context.Context, user model.UserIdentity) []Reply {
	s := e.sessions.acquire(user)
	defer s.mu.Unlock()

	s.LinksShownAt = e.now()
	return []Reply{{Text: ResourcesHTML, HTML: true, DisablePreview: true}}
}

// Identity отвечает на /myid
func (e *Engine) Identity(user model.UserIdentity) []Reply {
	return []Reply{{Text: identityText(user)}}
}

// HandleText любое текстовое сообщение, не являющееся командой
func (e *Engine) HandleText(ctx context.Context, user model.UserIdentity, text string) []Reply {
	s := e.sessions.acquire(user)
	defer s.mu.Unlock()

	s.UpdatedAt = e.now()
	text = strings.TrimSpace(text)

	if !s.State.Active() {
		if IsTrigger(text) {
			return e.begin(s, user)
		}
		replies := []Reply{{Text: e.chat.Answer(ctx, user.UserID, text)}}
		return append(replies, e.rotateLinks(s)...)
	}

	return e.answer(ctx, s, user, text)
}

func (e *Engine) begin(s *session, user model.UserIdentity) []Reply {
	s.Lead.Reset()
	s.UpdatedAt = e.now()
	e.metrics.ConversationStarted()
	e.log.Info("conversation started", "chat_id", user.ChatID, "lot", s.Lead.LotID)

	e.moveTo(s, user, model.StateName)
	first := questionPrompt(model.StateName, user)
	if s.Lead.LotID != "" {
		first.Text += lotAcknowledgement(s.Lead.LotID)
	}
	return []Reply{first}
}

func (e *Engine) moveTo(s *session, user model.UserIdentity, next model.State) {
	if s.State == model.StateDistrict && next != model.StateDistrict {
		s.Lead.DistrictSelection = nil
	}
	if next == model.StateDistrict {
		s.Lead.DistrictSelection = model.DistrictSet{}
	}
	s.State = next
	e.funnel.Reach(user.UserID, next)
}

func (e *Engine) ask(s *session, user model.UserIdentity, next model.State) []Reply {
	e.moveTo(s, user, next)
	return []Reply{questionPrompt(next, user)}
}

func (e *Engine) answer(ctx context.Context, s *session, user model.UserIdentity, text string) []Reply {
	switch s.State {
	case model.StateName:
		s.Lead.Name = text
		return e.ask(s, user, model.StateType)
	case model.StateType:
		s.Lead.PropertyType = text
		return e.ask(s, user, model.StateDistrict)
	case model.StateDistrict:
		return e.answerDistrict(s, user, text)
	case model.StateBudget:
		s.Lead.Budget = DigitsOrOriginal(text)
		return e.ask(s, user, model.StateBedrooms)
	case model.StateBedrooms:
		s.Lead.Bedrooms = DigitsOrOriginal(text)
		return e.ask(s, user, model.StateCheckIn)
	case model.StateCheckIn:
		s.Lead.CheckIn = text
		return e.ask(s, user, model.StateCheckOut)
	case model.StateCheckOut:
		s.Lead.CheckOut = text
		return e.ask(s, user, model.StateNotes)
	case model.StateNotes:
		s.Lead.Notes = text
		return e.ask(s, user, model.StateContact)
	case model.StateContact:
		s.Lead.Contact = text
		return e.ask(s, user, model.StateTransfer)
	case model.StateTransfer:
		s.Lead.Transfer = text
		return e.complete(ctx, s, user)
	}
	return nil
}

func (e *Engine) answerDistrict(s *session, user model.UserIdentity, text string) []Reply {
	if hasDistrictSeparator(text) {
		s.Lead.District = resolveDistrictList(text)
		return e.ask(s, user, model.StateBudget)
	}

	switch text {
	case DistrictReset:
		s.Lead.DistrictSelection = model.DistrictSet{}
		return []Reply{{Text: districtResetText, Keyboard: KeyboardDistricts}}
	case DistrictDone:
		if len(s.Lead.DistrictSelection) == 0 {
			return []Reply{{Text: districtEmptyText, Keyboard: KeyboardDistricts}}
		}
		s.Lead.District = strings.Join(s.Lead.DistrictSelection.Sorted(), ", ")
		return e.ask(s, user, model.StateBudget)
	}

	if d, ok := model.LookupDistrict(text); ok {
		sel, action := ToggleDistrict(s.Lead.DistrictSelection, d)
		s.Lead.DistrictSelection = sel
		return []Reply{{Text: districtToggleText(action, d, sel), Keyboard: KeyboardDistricts}}
	}

	s.Lead.District = text
	return e.ask(s, user, model.StateBudget)
}

func (e *Engine) complete(ctx context.Context, s *session, user model.UserIdentity) []Reply {
	lead := s.Lead
	replies := []Reply{
		{Text: CompletingText, Keyboard: KeyboardRemove},
		{Text: LeadSummary(lead)},
	}

	row := e.fanOut.Dispatch(ctx, lead, user)
	e.metrics.LeadCompleted()
	e.funnel.Reach(user.UserID, model.StateComplete)
	e.log.Info("lead completed", "chat_id", user.ChatID, "lead_id", row.ID)

	s.Lead = model.Lead{}
	s.State = model.StateNone
	s.LinksShownAt = e.now()
	return append(replies, Reply{Text: ResourcesAfterSurveyHTML, HTML: true, DisablePreview: true})
}

// rotateLinks предлагает ресурсы не чаще раза в LinksInterval
func (e *Engine) rotateLinks(s *session) []Reply {
	now := e.now()
	if !s.LinksShownAt.IsZero() && now.Sub(s.LinksShownAt) < LinksInterval {
		return nil
	}
	s.LinksShownAt = now
	return []Reply{{Text: ResourcesHTML, HTML: true, DisablePreview: true}}
}

// DigitsOrOriginal оставляет только цифры; если цифр нет, возвращает текст как есть
func DigitsOrOriginal(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return text
	}
	return b.String()
}
