package telegram

import (
	"sync"
	"time"

	"oneday/internal/domain/reminder"
	"oneday/internal/domain/viewstate"
)

// chatSession is the per-chat UI state: the calendar view, an open reminder
// picker and the numbering of the last task listing.
type chatSession struct {
	view    viewstate.State
	picker  *reminder.Session
	taskIDs []string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*chatSession
	today    func() time.Time
}

func newSessionStore(today func() time.Time) *sessionStore {
	return &sessionStore{sessions: make(map[int64]*chatSession), today: today}
}

// update runs fn on the chat's session under the store lock. fn must not block.
func (s *sessionStore) update(chatID int64, fn func(cs *chatSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.sessions[chatID]
	if !ok {
		cs = &chatSession{view: viewstate.New(s.today())}
		s.sessions[chatID] = cs
	}
	fn(cs)
}

// dispatch applies a view action and returns the resulting state.
func (s *sessionStore) dispatch(chatID int64, action viewstate.Action) viewstate.State {
	var state viewstate.State
	s.update(chatID, func(cs *chatSession) {
		cs.view = viewstate.Update(cs.view, action)
		state = cs.view
	})
	return state
}
