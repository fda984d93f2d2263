// Package auth holds password hashing and cookie-backed sessions.
package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "studybud_session"
	userIDKey   = "user_id"

	// SessionMaxAge is the lifetime of a login session in seconds (two weeks)
	SessionMaxAge = 14 * 24 * 60 * 60
)

// Sessions binds users to browser sessions and carries flash messages between requests
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions returns Sessions signing cookies with key.
// A random key is generated when key is empty, so sessions do not survive restarts.
func NewSessions(key []byte, secure bool) *Sessions {
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Sessions{store: store}
}

// session never returns nil; a cookie which fails to decode yields a fresh session
func (s *Sessions) session(r *http.Request) *sessions.Session {
	sess, _ := s.store.Get(r, sessionName)
	return sess
}

// Login binds the session of this browser to user
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess := s.session(r)
	sess.Values[userIDKey] = userID
	sess.Options.MaxAge = SessionMaxAge
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Logout destroys the session
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// UserID returns id of the user bound to the session
func (s *Sessions) UserID(r *http.Request) (int64, bool) {
	id, ok := s.session(r).Values[userIDKey].(int64)
	return id, ok
}

// AddFlash queues msg to be shown on the next rendered page
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := s.session(r)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Flashes pops queued flash messages
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	sess := s.session(r)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil, nil
	}

	msgs := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}

	if err := sess.Save(r, w); err != nil {
		return msgs, fmt.Errorf("saving session: %w", err)
	}
	return msgs, nil
}
