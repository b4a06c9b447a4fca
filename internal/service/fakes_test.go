package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ivanoskov/villa_bot/internal/logger"
	"github.com/ivanoskov/villa_bot/internal/model"
)

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return n.err
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.texts...)
}

type fakeStore struct {
	mu    sync.Mutex
	rows  []model.LeadRow
	saved bool
	err   error
}

func (s *fakeStore) AppendLead(_ context.Context, row model.LeadRow) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return s.saved, s.err
}

type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	system string
}

func (c *fakeCompleter) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	c.calls++
	c.system = systemPrompt
	return c.reply, c.err
}

type memFunnel struct {
	mu   sync.Mutex
	hits map[model.State]map[int64]struct{}
}

func (f *memFunnel) Hit(state model.State, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hits == nil {
		f.hits = make(map[model.State]map[int64]struct{})
	}
	if f.hits[state] == nil {
		f.hits[state] = make(map[int64]struct{})
	}
	f.hits[state][userID] = struct{}{}
	return nil
}

func (f *memFunnel) Counts() (map[model.State]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[model.State]int, len(f.hits))
	for st, users := range f.hits {
		out[st] = len(users)
	}
	return out, nil
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)

type testEnv struct {
	engine   *Engine
	notifier *fakeNotifier
	store    *fakeStore
	llm      *fakeCompleter
	fanOut   *FanOut
}

func newTestEnv() *testEnv {
	env := &testEnv{
		notifier: &fakeNotifier{},
		store:    &fakeStore{saved: true},
		llm:      &fakeCompleter{reply: "Самуи прекрасен"},
	}
	log := logger.Discard()
	env.fanOut = NewFanOut(env.notifier, env.store, log, WithClock(func() time.Time { return fixedNow }))
	chat := NewFreeChat(env.llm, log)
	env.engine = NewEngine(env.fanOut, chat, log,
		WithFunnel(NewFunnel(&memFunnel{}, log)),
		WithEngineClock(func() time.Time { return fixedNow }),
	)
	return env
}

var testUser = model.UserIdentity{ChatID: 100, UserID: 200, Username: "guest"}
