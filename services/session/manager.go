package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"vtcland/services/dialogue"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

// Manager keeps the live dialogue sessions of this process.
type Manager struct {
	engine *dialogue.Engine
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*dialogue.Session
}

func NewManager(engine *dialogue.Engine, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		engine:   engine,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*dialogue.Session),
	}
}

// WithClock replaces the manager's clock. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create opens a new session.
func (m *Manager) Create() *dialogue.Session {
	s := m.engine.Start(uuid.NewString())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*dialogue.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close ends a session and forgets it.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.engine.Close(ctx, s)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL. Sessions processing a
// reply are left for the next sweep. It returns the number of sessions closed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.RLock()
	candidates := make([]*dialogue.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.RUnlock()

	closed := 0
	for _, s := range candidates {
		if !m.engine.CloseIfIdle(ctx, s, cutoff) {
			continue
		}
		m.mu.Lock()
		delete(m.sessions, s.ID)
		m.mu.Unlock()
		closed++
	}
	if closed > 0 {
		m.logger.Info("Expired idle sessions", zap.Int("closed", closed), zap.Int("remaining", m.Len()))
	}
	return closed
}

// Run sweeps every interval until ctx is cancelled, then closes every
// remaining session.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

func (m *Manager) shutdown() {
	m.mu.Lock()
	remaining := m.sessions
	m.sessions = make(map[string]*dialogue.Session)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, s := range remaining {
		m.engine.Close(ctx, s)
	}
	m.logger.Info("Session manager stopped", zap.Int("closed", len(remaining)))
}
