package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// CookieName carries the driver session token.
const CookieName = "driver_session"

// DefaultSessionTTL bounds how long a login stays valid without activity.
// The original portal had no expiry at all; a TTL closes that gap without
// changing the login flow.
const DefaultSessionTTL = 12 * time.Hour

type Session struct {
	Token     string
	Scope     Scope
	ExpiresAt time.Time
}

// SessionStore keeps driver sessions in memory. Sessions do not survive a
// restart; drivers just log in again.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{ttl: ttl, sessions: make(map[string]Session)}
}

// Create issues a session for an authenticated scope.
func (st *SessionStore) Create(scope Scope) Session {
	s := Session{
		Token:     newToken(),
		Scope:     scope,
		ExpiresAt: time.Now().Add(st.ttl),
	}
	st.mu.Lock()
	st.purgeExpiredLocked()
	st.sessions[s.Token] = s
	st.mu.Unlock()
	return s
}

// Get resolves a token, dropping it when expired.
func (st *SessionStore) Get(token string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[token]
	if !ok {
		return Session{}, false
	}
	if time.Now().After(s.ExpiresAt) {
		delete(st.sessions, token)
		return Session{}, false
	}
	return s, true
}

// Delete is the explicit logout transition: it clears the scope.
func (st *SessionStore) Delete(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

func (st *SessionStore) purgeExpiredLocked() {
	now := time.Now()
	for tok, s := range st.sessions {
		if now.After(s.ExpiresAt) {
			delete(st.sessions, tok)
		}
	}
}

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Extremely unlikely; an unguessable-enough fallback beats a panic.
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
