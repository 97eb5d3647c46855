package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/ports"
)

// ErrSessionExists is returned by Create when the session ID is already live.
var ErrSessionExists = errors.New("session already exists")

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type liveSession struct {
	negotiation *bargain.Negotiation
	archived    bool
}

// View is a read-only picture of one negotiation.
type View struct {
	ID       string          `json:"id"`
	Snapshot domain.Snapshot `json:"snapshot"`
	Contract domain.Contract `json:"contract"`
}

// Manager orchestrates negotiation access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	archive ports.Archive

	mu       sync.Mutex
	locks    map[string]*lockEntry
	sessions map[string]*liveSession

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithArchive sets where transcripts of finished negotiations are written.
func WithArchive(archive ports.Archive) Option {
	return func(m *Manager) {
		m.archive = archive
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLifecycleHooks attaches hooks to every negotiation the manager creates.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithLogger configures a logger for the Manager and its negotiations.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source used for transcripts.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*liveSession),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) lookup(sessionID string) (*liveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return live, nil
}

// Create starts a new negotiation and returns its ID.
func (m *Manager) Create(ctx context.Context, cfg domain.Config, opts ...bargain.Option) (string, error) {
	base := []bargain.Option{
		bargain.WithLogger(m.logger),
		bargain.WithLifecycleHooks(m.hooks),
		bargain.WithClock(m.now),
	}
	n, err := bargain.New(cfg, append(base, opts...)...)
	if err != nil {
		return "", err
	}
	if _, err := n.Start(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[n.ID()]; exists {
		return "", fmt.Errorf("%w: %s", ErrSessionExists, n.ID())
	}
	m.sessions[n.ID()] = &liveSession{negotiation: n}

	m.logger.Info("Negotiation created", "session_id", n.ID(), "list_price", cfg.ListPrice)
	return n.ID(), nil
}

// Do runs fn with exclusive access to one negotiation. When the negotiation has
// reached END afterwards, its transcript is archived once.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *bargain.Negotiation) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		live, err := m.lookup(sessionID)
		if err != nil {
			return err
		}

		if err := fn(ctx, live.negotiation); err != nil {
			return err
		}
		return m.archiveIfDone(ctx, live)
	})
}

func (m *Manager) archiveIfDone(ctx context.Context, live *liveSession) error {
	n := live.negotiation
	if m.archive == nil || live.archived || n.Snapshot().Phase != domain.PhaseEnd {
		return nil
	}

	transcript := n.Transcript()
	if err := m.archive.Put(ctx, transcript); err != nil {
		m.logger.Error("Failed to archive transcript", "session_id", n.ID(), "err", err)
		return fmt.Errorf("failed to archive transcript: %w", err)
	}
	live.archived = true

	m.logger.Info("Negotiation archived",
		"session_id", n.ID(),
		"outcome", transcript.Outcome,
		"final_offer", transcript.FinalOffer,
	)
	return nil
}

// View returns the snapshot and contract of a negotiation.
func (m *Manager) View(ctx context.Context, sessionID string) (View, error) {
	var view View
	err := m.Do(ctx, sessionID, func(_ context.Context, n *bargain.Negotiation) error {
		view = View{ID: n.ID(), Snapshot: n.Snapshot(), Contract: n.Contract()}
		return nil
	})
	return view, err
}

// History returns the round history of a negotiation.
func (m *Manager) History(ctx context.Context, sessionID string) ([]domain.Round, error) {
	var history []domain.Round
	err := m.Do(ctx, sessionID, func(_ context.Context, n *bargain.Negotiation) error {
		history = n.History()
		return nil
	})
	return history, err
}

// Delete drops a live negotiation. Archived transcripts are kept.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		if _, ok := m.sessions[sessionID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		delete(m.sessions, sessionID)
		return nil
	})
}

// List returns the IDs of live negotiations in sorted order.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Transcript reads an archived transcript.
func (m *Manager) Transcript(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	if m.archive == nil {
		return nil, domain.ErrTranscriptNotFound
	}
	return m.archive.Get(ctx, sessionID)
}

// Archive returns the configured archive, or nil.
func (m *Manager) Archive() ports.Archive {
	return m.archive
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
