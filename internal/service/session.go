package service

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"movierank/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	// CSRFField is the hidden form field carrying the session's token.
	CSRFField = "csrf_token"

	csrfKey = "csrf"
)

// Sessions keeps the per-browser cookie session holding the CSRF token and
// flash messages.
type Sessions struct {
	store *sessions.CookieStore
	name  string
	log   *log.Helper
}

// NewSessions creates the cookie store. Without a configured secret a random
// key is generated, so sessions do not survive a restart.
func NewSessions(c *conf.Session, logger log.Logger) *Sessions {
	l := log.NewHelper(log.With(logger, "module", "sessions"))

	secret := []byte(c.Secret)
	if len(secret) == 0 {
		l.Warn("session secret not configured, using an ephemeral key")
		secret = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   c.MaxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	name := c.Name
	if name == "" {
		name = "movierank"
	}
	return &Sessions{store: store, name: name, log: l}
}

// Page returns the session's CSRF token, creating one on first use, and pops
// any pending flash messages. The session is saved once.
func (s *Sessions) Page(w http.ResponseWriter, r *http.Request) (string, []string) {
	sess := s.get(r)

	token, ok := sess.Values[csrfKey].(string)
	if !ok || token == "" {
		token = uuid.NewString()
		sess.Values[csrfKey] = token
	}

	var flashes []string
	for _, f := range sess.Flashes() {
		flashes = append(flashes, fmt.Sprint(f))
	}

	if err := sess.Save(r, w); err != nil {
		s.log.WithContext(r.Context()).Errorf("failed to save session: %v", err)
	}
	return token, flashes
}

// AddFlash queues a message for the next rendered page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess := s.get(r)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.log.WithContext(r.Context()).Errorf("failed to save flash: %v", err)
	}
}

// VerifyCSRF reports whether the submitted form token matches the session.
func (s *Sessions) VerifyCSRF(r *http.Request) bool {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return false
	}
	want, ok := sess.Values[csrfKey].(string)
	if !ok || want == "" {
		return false
	}
	got := r.PostFormValue(CSRFField)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// get returns the request's session. A cookie that no longer decodes (for
// example after a secret rotation) yields a fresh session.
func (s *Sessions) get(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		s.log.WithContext(r.Context()).Debugf("discarding undecodable session: %v", err)
	}
	return sess
}
