package backend

import (
	"context"
	"sync"
	"time"
)

// Session holds the bearer token issued by the backend. A cleared session
// has no token and must be replaced by a new Login.
type Session struct {
	mu       sync.RWMutex
	token    string
	Username string
	IssuedAt time.Time
}

func NewSession(username, token string) *Session {
	return &Session{token: token, Username: username, IssuedAt: time.Now()}
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Valid() bool {
	return s.Token() != ""
}

func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s.Valid()
}
