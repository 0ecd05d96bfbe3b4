// Package session persists the admin's authenticated marker in a signed
// browser-session cookie. The cookie carries no expiry, so it survives
// reloads within one browser session and disappears when the browser
// closes — the same scope the storefront relies on.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

const defaultCookieName = "technsat_admin"

// ErrInvalidConfig indicates the manager was initialised with missing or
// invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// Data is the persisted session payload.
type Data struct {
	ID            string `json:"id"`
	Authenticated bool   `json:"authenticated"`
}

// Config controls cookie encoding for the session manager.
type Config struct {
	CookieName   string
	HashKey      []byte
	BlockKey     []byte
	CookieSecure bool
}

// Manager decodes and persists session state via signed (and optionally
// encrypted) cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &Manager{cfg: cfg, codec: codec}, nil
}

// Load retrieves the session from the incoming request. A missing or
// undecodable cookie yields a fresh anonymous session.
func (m *Manager) Load(r *http.Request) Data {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.newSession()
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.newSession()
	}
	if stored.ID == "" {
		return m.newSession()
	}
	return stored
}

// Save writes the session back to the response as a session-scoped cookie
// (no MaxAge: cleared when the browser closes).
func (m *Manager) Save(w http.ResponseWriter, data Data) error {
	if data.ID == "" {
		data.ID = newSessionID()
	}
	encoded, err := m.codec.Encode(m.cfg.CookieName, data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie, returning the client to anonymous.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (m *Manager) newSession() Data {
	return Data{ID: newSessionID()}
}

// RandomKey returns a fresh key suitable for Config.HashKey when none is
// configured. Sessions signed with it do not survive process restarts.
func RandomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("session: generate key: %v", err))
	}
	return key
}

func newSessionID() string {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}
