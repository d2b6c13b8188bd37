// Package session keeps the list filters a visitor picked for the lifetime of
// their browser session.
package session

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/config"
)

const filterCookieName = "callhistory_filters"

// FilterStore loads and saves the filter selectors of the current session.
type FilterStore interface {
	Load(r *http.Request) (calls.Filters, error)
	Save(w http.ResponseWriter, r *http.Request, f calls.Filters) error
}

type filterValue struct {
	CallType  string `json:"t"`
	Direction string `json:"d"`
}

// CookieStore keeps filters in a signed and encrypted session cookie.
type CookieStore struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewCookieStore derives cookie keys from the session secret.
func NewCookieStore(cfg *config.Config) (*CookieStore, error) {
	hashKey, err := deriveKey(cfg.Session.Secret, "callhistory filters hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(cfg.Session.Secret, "callhistory filters block", 32)
	if err != nil {
		return nil, err
	}

	sc := securecookie.New(hashKey, blockKey)
	// The cookie itself has no Expires, so the browser drops it with the
	// session; MaxAge only bounds how long an encoded value is accepted.
	sc.MaxAge(86400)
	sc.SetSerializer(securecookie.JSONEncoder{})

	return &CookieStore{codec: sc, secure: cfg.SecureCookies()}, nil
}

// Load returns the stored filters, or defaults when there are none. A
// tampered or expired cookie yields defaults and an error.
func (s *CookieStore) Load(r *http.Request) (calls.Filters, error) {
	c, err := r.Cookie(filterCookieName)
	if err != nil {
		return calls.DefaultFilters(), nil
	}
	var v filterValue
	if err := s.codec.Decode(filterCookieName, c.Value, &v); err != nil {
		return calls.DefaultFilters(), fmt.Errorf("decode filter cookie: %w", err)
	}
	return calls.Filters{CallType: v.CallType, Direction: v.Direction}.Normalize(), nil
}

// Save writes f into the session cookie.
func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, f calls.Filters) error {
	f = f.Normalize()
	encoded, err := s.codec.Encode(filterCookieName, filterValue{CallType: f.CallType, Direction: f.Direction})
	if err != nil {
		return fmt.Errorf("encode filter cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     filterCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// New picks the Redis-backed store when APP_REDIS_ADDR is set and the
// cookie store otherwise. The returned closer releases the Redis client.
func New(ctx context.Context, cfg *config.Config) (FilterStore, func() error, error) {
	if cfg.Redis.Addr == "" {
		store, err := NewCookieStore(cfg)
		return store, func() error { return nil }, err
	}
	rdb, err := OpenRedis(ctx, RedisConfig{Addr: cfg.Redis.Addr})
	if err != nil {
		return nil, nil, err
	}
	return NewRedisStore(rdb, cfg.SecureCookies()), rdb.Close, nil
}
