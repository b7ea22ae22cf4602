package session

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Session is a registered level session and its metadata
type Session struct {
	ID             string
	UserID         string
	Controller     *Controller
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Manager tracks live sessions by id
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create registers a controller under id, generating a uuid when id is empty
func (m *Manager) Create(id, userID string, ctrl *Controller) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &Session{
		ID:             id,
		UserID:         userID,
		Controller:     ctrl,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = sess

	log.WithFields(log.Fields{"session": id, "user": userID}).Debug("Session created")
	return copySession(sess), nil
}

// Get retrieves a session by id (case-insensitive)
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return copySession(sess), nil
}

// List returns all sessions, oldest first
func (m *Manager) List() []*Session {
	m.mu.RLock()
	result := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, copySession(sess))
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session and closes its controller
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	key := strings.ToLower(id)
	sess, exists := m.sessions[key]
	if exists {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	closeSession(sess)
	return nil
}

// Touch records an access so the session is not expired
func (m *Manager) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes and closes sessions that haven't been
// accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	var expired []*Session

	m.mu.Lock()
	for key, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, key)
			expired = append(expired, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		closeSession(sess)
	}
	if len(expired) > 0 {
		log.WithField("count", len(expired)).Info("Expired sessions removed")
	}
	return len(expired)
}

// CloseAll closes and removes every session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range all {
		closeSession(sess)
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func copySession(sess *Session) *Session {
	out := *sess
	return &out
}

func closeSession(sess *Session) {
	if sess.Controller != nil {
		sess.Controller.Close()
	}
	log.WithField("session", sess.ID).Debug("Session closed")
}
