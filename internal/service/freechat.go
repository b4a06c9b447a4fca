package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Completer языковая модель для свободного общения
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// TriggerWord слово, которое вместо ответа запускает анкету
const TriggerWord = "rent"

var rentKeywords = []string{"снять", "аренда", "вилла", "дом", "квартира", "жильё", "жилье"}

const (
	defaultChatInterval = 2 * time.Second
	defaultChatBurst    = 3
)

// IsTrigger сообщает, что текст запускает анкету
func IsTrigger(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), TriggerWord)
}

// FreeChat отвечает на сообщения вне анкеты
type FreeChat struct {
	llm      Completer
	limiters sync.Map
	rate     rate.Limit
	burst    int
	metrics  Recorder
	log      *slog.Logger
}

type FreeChatOption func(*FreeChat)

func WithChatRate(every time.Duration, burst int) FreeChatOption {
	return func(c *FreeChat) {
		c.rate = rate.Every(every)
		c.burst = burst
	}
}

func WithChatRecorder(r Recorder) FreeChatOption {
	return func(c *FreeChat) { c.metrics = recorderOrNoop(r) }
}

// NewFreeChat llm может быть nil, тогда отвечаем заготовкой
func NewFreeChat(llm Completer, log *slog.Logger, opts ...FreeChatOption) *FreeChat {
	c := &FreeChat{
		llm:     llm,
		rate:    rate.Every(defaultChatInterval),
		burst:   defaultChatBurst,
		metrics: noopRecorder{},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FreeChat) limiter(userID int64) *rate.Limiter {
	if l, ok := c.limiters.Load(userID); ok {
		return l.(*rate.Limiter)
	}
	l, _ := c.limiters.LoadOrStore(userID, rate.NewLimiter(c.rate, c.burst))
	return l.(*rate.Limiter)
}

// Answer возвращает ответ на произвольный вопрос. Ошибки модели
// не пробрасываются: пользователь всегда получает текст.
func (c *FreeChat) Answer(ctx context.Context, userID int64, text string) string {
	if c.llm == nil {
		c.metrics.ChatReply(ChatSourceCanned)
		return CannedChatReply
	}
	if !c.limiter(userID).Allow() {
		c.metrics.ChatReply(ChatSourceLimited)
		c.log.Debug("free chat rate limited", "user_id", userID)
		return CannedChatReply
	}

	reply, err := c.llm.Complete(ctx, ChatPersona, text)
	reply = strings.TrimSpace(reply)
	if err != nil || reply == "" {
		c.metrics.ChatReply(ChatSourceCanned)
		c.log.Error("llm completion failed", "user_id", userID, "error", err)
		return CannedChatReply
	}

	c.metrics.ChatReply(ChatSourceLLM)
	if !strings.Contains(reply, "/rent") && mentionsRent(text) {
		reply += "\n\n" + RentCallToAction
	}
	return reply
}

func mentionsRent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range rentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
