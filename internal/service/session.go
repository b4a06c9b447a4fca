package service

import (
	"sync"

	"github.com/ivanoskov/villa_bot/internal/model"
)

type sessionKey struct {
	chatID int64
	userID int64
}

type session struct {
	mu sync.Mutex
	model.UserState
}

// SessionStore хранит состояние диалога по паре (чат, пользователь).
// Сообщения одного пользователя обрабатываются строго по очереди,
// разные пользователи не мешают друг другу.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[sessionKey]*session)}
}

// acquire возвращает заблокированную сессию; вызывающий обязан вызвать Unlock
func (st *SessionStore) acquire(user model.UserIdentity) *session {
	key := sessionKey{chatID: user.ChatID, userID: user.UserID}

	st.mu.Lock()
	s, ok := st.sessions[key]
	if !ok {
		s = &session{}
		st.sessions[key] = s
	}
	st.mu.Unlock()

	s.mu.Lock()
	return s
}

// Snapshot возвращает копию состояния пользователя
func (st *SessionStore) Snapshot(user model.UserIdentity) (model.UserState, bool) {
	st.mu.Lock()
	s, ok := st.sessions[sessionKey{chatID: user.ChatID, userID: user.UserID}]
	st.mu.Unlock()
	if !ok {
		return model.UserState{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.UserState
	if s.Lead.DistrictSelection != nil {
		state.Lead.DistrictSelection = s.Lead.DistrictSelection.Clone()
	}
	return state, true
}

// Len количество известных сессий
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
