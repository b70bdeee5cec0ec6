package brain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultConfirmationTTL bounds how long a minted token stays valid. A
// confirmation gate for destructive actions must not honor tokens minted
// hours earlier.
const DefaultConfirmationTTL = 15 * time.Minute

// PendingConfirmation holds a blocked high-risk request awaiting a token
// echo. At most one exists per session; a new one replaces the old.
type PendingConfirmation struct {
	Token           string
	OriginalMessage string
	CreatedAt       time.Time
}

// ConfirmationManager is the per-session pending-token state machine.
// Safe for concurrent use across sessions.
type ConfirmationManager struct {
	mu      sync.Mutex
	pending map[string]PendingConfirmation
	ttl     time.Duration
	now     func() time.Time
}

func NewConfirmationManager(ttl time.Duration) *ConfirmationManager {
	if ttl <= 0 {
		ttl = DefaultConfirmationTTL
	}
	return &ConfirmationManager{
		pending: make(map[string]PendingConfirmation),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create mints a fresh token for the session, replacing any existing
// pending entry. There is no queue: one pending confirmation per session.
func (m *ConfirmationManager) Create(sessionID, originalMessage string) string {
	token := newToken()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[sessionID] = PendingConfirmation{
		Token:           token,
		OriginalMessage: originalMessage,
		CreatedAt:       m.now(),
	}
	return token
}

// PendingToken peeks at the session's token without consuming it.
func (m *ConfirmationManager) PendingToken(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.get(sessionID)
	if !ok {
		return "", false
	}
	return pending.Token, true
}

// HasPending reports whether the session has a live pending confirmation.
func (m *ConfirmationManager) HasPending(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(sessionID)
	return ok
}

// ConsumeToken deletes the pending entry and returns the stored message
// when the token matches exactly. A non-matching token leaves the entry
// intact so the right token can still be presented later.
func (m *ConfirmationManager) ConsumeToken(sessionID, token string) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.get(sessionID)
	if !ok {
		return false, ""
	}
	if strings.TrimSpace(token) != pending.Token {
		return false, ""
	}
	delete(m.pending, sessionID)
	return true, pending.OriginalMessage
}

// ConsumeFreeText recognizes the literal phrase "confirm <token>",
// case-insensitively. The token must match exactly: "confirm" followed by
// anything else leaves the pending entry untouched and does not approve.
func (m *ConfirmationManager) ConsumeFreeText(sessionID, userMessage string) (bool, string) {
	normalized := strings.ToLower(strings.TrimSpace(userMessage))
	rest, ok := strings.CutPrefix(normalized, "confirm ")
	if !ok {
		return false, ""
	}
	return m.ConsumeToken(sessionID, rest)
}

// get returns the live entry for the session, purging it when expired.
// Callers must hold m.mu.
func (m *ConfirmationManager) get(sessionID string) (PendingConfirmation, bool) {
	pending, ok := m.pending[sessionID]
	if !ok {
		return PendingConfirmation{}, false
	}
	if m.now().Sub(pending.CreatedAt) > m.ttl {
		delete(m.pending, sessionID)
		return PendingConfirmation{}, false
	}
	return pending, true
}

func newToken() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		return fmt.Sprintf("%08x", uint32(time.Now().UnixNano()))
	}
	return hex.EncodeToString(buf)
}
