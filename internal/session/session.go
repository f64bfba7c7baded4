// Package session implements the server-side session table.
//
// A session is the link between an opaque cookie value and an
// authenticated identity. The table is a single process-wide map guarded
// by a RWMutex — reads (every authenticated request) take the shared
// lock, writes (login/logout) the exclusive one.
//
// TOKEN DESIGN:
// The token handed to the client is 32 bytes from crypto/rand, hex
// encoded. That's the only acceptable source for an unguessable value —
// ID generators like xid are time-ordered and predictable by design.
//
// The map is NOT keyed by the raw token but by HMAC-SHA256(secret, token).
// If the process memory or a debug dump ever leaks, the stored keys can't
// be replayed as cookies. Validation recomputes the HMAC, so lookups stay
// O(1).
//
// ROLE CACHING:
// Identity.IsAdmin is captured once at login and never re-read from the
// user table. A role change therefore only takes effect at the next
// login. This matches the behaviour of the system this one replaces and
// is deliberate — see DESIGN.md.
package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/sakif/codespace/internal/model"
)

// TTL is the fixed session lifetime. There is no sliding expiry: a
// session issued at 12:00 dies at 13:00 no matter how active the user is.
const TTL = time.Hour

// sweepInterval bounds how long an expired entry can linger in memory.
// Expiry is still detected lazily in Validate, so the sweeper only
// matters for memory, not correctness.
const sweepInterval = 5 * time.Minute

// Identity is the authenticated principal attached to a request after the
// auth guard validates its session.
type Identity struct {
	UserID   string
	Username string
	IsAdmin  bool
}

type entry struct {
	identity Identity
	expiry   time.Time
}

// Manager owns the session table. Create it once at startup and Close it
// on shutdown; Close drops every session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]entry
	secret   []byte
	ttl      time.Duration
	done     chan struct{}
	closed   sync.Once
}

// NewManager creates an empty session table and starts the background
// sweeper. secret is the at-rest hashing key from configuration.
func NewManager(secret string) *Manager {
	return newManager(secret, TTL)
}

// NewManagerWithTTL is NewManager with a custom lifetime. Used by tests
// to exercise expiry without waiting an hour.
func NewManagerWithTTL(secret string, ttl time.Duration) *Manager {
	return newManager(secret, ttl)
}

func newManager(secret string, ttl time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]entry),
		secret:   []byte(secret),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Create issues a new session for the given user and returns the token
// the handler should set as the session cookie. A user may hold any
// number of concurrent sessions — logging in twice gives two independent
// tokens.
func (m *Manager) Create(user *model.User) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("session: generating token: %w", err)
	}
	token := hex.EncodeToString(raw)

	m.mu.Lock()
	m.sessions[m.key(token)] = entry{
		identity: Identity{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		},
		expiry: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	return token, nil
}

// Validate resolves a token to its identity. Returns ok=false for an
// unknown or expired token; expired entries are removed on the spot.
func (m *Manager) Validate(token string) (Identity, bool) {
	key := m.key(token)

	m.mu.RLock()
	e, ok := m.sessions[key]
	m.mu.RUnlock()

	if !ok {
		return Identity{}, false
	}
	if time.Now().After(e.expiry) {
		// Lazy expiry: the transition active→expired is detected here,
		// at the first validate after the deadline.
		m.mu.Lock()
		delete(m.sessions, key)
		m.mu.Unlock()
		return Identity{}, false
	}

	return e.identity, true
}

// Destroy removes a session immediately. Idempotent — destroying an
// unknown or already-destroyed token is a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, m.key(token))
	m.mu.Unlock()
}

// Len reports the number of live entries. Used by tests and the sweeper's
// log line; expired-but-unswept entries are counted.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the sweeper and drops all sessions. Safe to call more than
// once.
func (m *Manager) Close() {
	m.closed.Do(func() {
		close(m.done)
		m.mu.Lock()
		m.sessions = make(map[string]entry)
		m.mu.Unlock()
	})
}

// sweep periodically removes expired entries so an abandoned session
// doesn't occupy memory until its token happens to be presented again.
func (m *Manager) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, e := range m.sessions {
				if now.After(e.expiry) {
					delete(m.sessions, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// key hashes a client-held token into the map key. HMAC rather than a
// bare hash so the mapping depends on the configured secret.
func (m *Manager) key(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
