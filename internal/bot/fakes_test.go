package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/villa_bot/internal/logger"
	"github.com/ivanoskov/villa_bot/internal/model"
	"github.com/ivanoskov/villa_bot/internal/repository"
	"github.com/ivanoskov/villa_bot/internal/service"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

type fakeLister struct {
	rows  []model.LeadRow
	limit int
	err   error
}

func (l *fakeLister) RecentLeads(_ context.Context, filter repository.LeadFilter) ([]model.LeadRow, error) {
	l.limit = filter.Limit
	return l.rows, l.err
}

func newTestBot(api *fakeAPI, opts ...Option) *Bot {
	log := logger.Discard()
	engine := service.NewEngine(
		service.NewFanOut(nil, nil, log),
		service.NewFreeChat(nil, log),
		log,
		service.WithFunnel(service.NewFunnel(repository.NewMemoryFunnelRepository(), log)),
	)
	return NewBot(api, engine, log, opts...)
}

func textUpdate(text string) []byte {
	entities := ""
	if len(text) > 0 && text[0] == '/' {
		n := len(text)
		for i, r := range text {
			if r == ' ' {
				n = i
				break
			}
		}
		entities = fmt.Sprintf(`,"entities":[{"type":"bot_command","offset":0,"length":%d}]`, n)
	}
	return []byte(fmt.Sprintf(`{"update_id":1,"message":{"message_id":1,"date":0,`+
		`"chat":{"id":100,"type":"private"},`+
		`"from":{"id":200,"is_bot":false,"first_name":"Anna","username":"guest"},`+
		`"text":%q%s}}`, text, entities))
}
