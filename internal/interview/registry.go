package interview

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
)

// ErrSessionNotFound is returned for lookups of unknown or expired sessions.
var ErrSessionNotFound = errors.New("interview session not found")

type registryEntry struct {
	orchestrator *Orchestrator
	lastSeen     time.Time
}

// Registry is the process-wide mapping from session id to live orchestrator.
// Sessions not touched within the TTL are evicted by the sweeper.
type Registry struct {
	catalog   *Catalog
	completer ai.Completer
	logger    *zap.Logger
	ttl       time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*registryEntry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRegistry creates an empty registry. A non-positive ttl disables expiry.
func NewRegistry(catalog *Catalog, completer ai.Completer, logger *zap.Logger, ttl time.Duration) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		catalog:   catalog,
		completer: completer,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*registryEntry),
		stopCh:    make(chan struct{}),
	}
}

// Create constructs, registers and returns a new session orchestrator.
func (r *Registry) Create(profile CandidateProfile, jobDescription string) (*Orchestrator, error) {
	orchestrator, err := NewOrchestrator(r.catalog, r.completer, r.logger, profile, jobDescription)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[orchestrator.ID()] = &registryEntry{
		orchestrator: orchestrator,
		lastSeen:     r.now(),
	}
	r.mu.Unlock()

	return orchestrator, nil
}

// Get returns the live orchestrator for the given session id and refreshes
// its expiry deadline.
func (r *Registry) Get(sessionID string) (*Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry.lastSeen = r.now()

	return entry.orchestrator, nil
}

// SessionIDs returns the ids of all live sessions in no particular order.
func (r *Registry) SessionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartSweeper launches a goroutine that periodically evicts sessions whose
// last access is older than the TTL. It is a no-op when expiry is disabled.
func (r *Registry) StartSweeper(interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

// Stop terminates the sweeper goroutine.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Registry) sweep() {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			r.logger.Info("evicting expired interview session",
				zap.String("session_id", id),
				zap.Time("last_seen", entry.lastSeen),
			)
		}
	}
}
