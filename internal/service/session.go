package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	StateCollecting SessionState = "COLLECTING"
	StateReady      SessionState = "READY"
	StateSent       SessionState = "SENT"
)

// Session tracks one conversation's finalization state explicitly, instead
// of re-deriving it from message text. Once Sent, a session never leaves
// that state.
type Session struct {
	ID           string
	State        SessionState
	PendingMedia []string
	CreatedAt    time.Time
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*Session{}}
}

// Ensure returns the session for the given conversation id, minting a new
// one when the id is blank or unknown.
func (s *SessionStore) Ensure(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			return sess
		}
	}
	if strings.TrimSpace(id) == "" {
		id = "conv_" + uuid.NewString()[:8]
	}
	sess := &Session{ID: id, State: StateCollecting, CreatedAt: time.Now().UTC()}
	s.sessions[id] = sess
	return sess
}

func (s *SessionStore) State(id string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess.State
	}
	return StateCollecting
}

func (s *SessionStore) AttachMedia(id string, mediaIDs []string) {
	if len(mediaIDs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.State == StateSent {
		return
	}
	sess.PendingMedia = append(sess.PendingMedia, mediaIDs...)
}

func (s *SessionStore) PendingMediaCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return len(sess.PendingMedia)
	}
	return 0
}

// BeginFinalize moves a session Collecting → Ready and drains its pending
// media handles. Returns false when the session has already sent a signal;
// the caller must then refuse to finalize a second one.
func (s *SessionStore) BeginFinalize(id string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if sess.State == StateSent {
		return nil, false
	}
	sess.State = StateReady
	pending := sess.PendingMedia
	sess.PendingMedia = nil
	return pending, true
}

func (s *SessionStore) MarkSent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.State = StateSent
	}
}
