package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terraincognita07/just/internal/security"
	"github.com/terraincognita07/just/internal/services"
)

const refreshTimeout = 30 * time.Second

type Config struct {
	TTL          time.Duration
	InitialQuote func(lang string) string
	Now          func() time.Time
}

// Manager keeps live sessions in memory and fans credential changes out to
// every one of them.
type Manager struct {
	content      ContentSource
	ttl          time.Duration
	initialQuote func(lang string) string
	now          func() time.Time

	mu         sync.RWMutex
	sessions   map[string]*Session
	keyVersion uint64

	refreshes sync.WaitGroup
}

func NewManager(content ContentSource, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.InitialQuote == nil {
		cfg.InitialQuote = func(string) string { return "" }
	}
	return &Manager{
		content:      content,
		ttl:          cfg.TTL,
		initialQuote: cfg.InitialQuote,
		now:          cfg.Now,
		sessions:     make(map[string]*Session),
	}
}

func (manager *Manager) Create(language string) (*Session, error) {
	id, err := security.NewSessionID()
	if err != nil {
		return nil, err
	}
	session := newSession(id, language, manager.initialQuote(language), manager.now())

	manager.mu.Lock()
	session.keyVersion = manager.keyVersion
	manager.sessions[id] = session
	manager.mu.Unlock()
	return session, nil
}

// Get returns a live session and marks it as seen. Expired sessions are
// dropped and reported as missing.
func (manager *Manager) Get(id string) (*Session, bool) {
	manager.mu.RLock()
	session, ok := manager.sessions[id]
	manager.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := manager.now()
	if now.Sub(session.idleSince()) > manager.ttl {
		manager.mu.Lock()
		delete(manager.sessions, id)
		manager.mu.Unlock()
		return nil, false
	}
	session.touch(now)
	return session, true
}

func (manager *Manager) Count() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.sessions)
}

// ExpireIdle removes sessions idle for longer than the TTL.
func (manager *Manager) ExpireIdle() int {
	now := manager.now()

	manager.mu.Lock()
	defer manager.mu.Unlock()
	removed := 0
	for id, session := range manager.sessions {
		if now.Sub(session.idleSince()) > manager.ttl {
			delete(manager.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions until ctx is cancelled.
func (manager *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.ExpireIdle(); removed > 0 {
				slog.Debug("expired idle sessions", "component", "session", "count", removed)
			}
		}
	}
}

// EnsureLoaded performs the first refresh of a session synchronously.
// Concurrent first requests share a single fetch.
func (manager *Manager) EnsureLoaded(ctx context.Context, session *Session) {
	session.loadOnce(ctx, manager.content)
}

// HandleCredentialChanged re-fetches content for every onboarded session in
// the background. Each session reacts once per version.
func (manager *Manager) HandleCredentialChanged(event services.CredentialChanged) {
	manager.mu.Lock()
	if event.Version > manager.keyVersion {
		manager.keyVersion = event.Version
	}
	targets := make([]*Session, 0, len(manager.sessions))
	for _, session := range manager.sessions {
		targets = append(targets, session)
	}
	manager.mu.Unlock()

	for _, session := range targets {
		if !session.observeCredentialVersion(event.Version) || !session.Onboarded() {
			continue
		}
		manager.refreshes.Add(1)
		go func(session *Session) {
			defer manager.refreshes.Done()
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			session.Refresh(ctx, manager.content)
		}(session)
	}
	slog.Info("credential change dispatched", "component", "session", "version", event.Version, "present", event.Present, "sessions", len(targets))
}

// Wait blocks until background refreshes started so far have finished.
func (manager *Manager) Wait() {
	manager.refreshes.Wait()
}
