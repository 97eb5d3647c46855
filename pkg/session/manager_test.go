package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/pkg/adapters/memory"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/ports"
	"github.com/aretw0/bargain/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager()

	id, err := manager.Create(ctx, domain.DefaultConfig())
	require.NoError(t, err)

	view, err := manager.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, domain.PhaseWaitUser, view.Snapshot.Phase)
	assert.Equal(t, 500, view.Contract.Pricing.OfferToShow)

	err = manager.Do(ctx, id, func(ctx context.Context, n *bargain.Negotiation) error {
		_, err := n.SubmitPrice(ctx, 440)
		return err
	})
	require.NoError(t, err)

	history, err := manager.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 470, history[0].AIOffer)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	require.NoError(t, manager.Delete(ctx, id))
	_, err = manager.View(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, manager.Delete(ctx, id), domain.ErrSessionNotFound)
}

func TestManager_CreateRejectsInvalidConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.BarPrice = 450
	_, err := session.NewManager().Create(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestManager_CreateWithFixedID(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager()

	id, err := manager.Create(ctx, domain.DefaultConfig(), bargain.WithSessionID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = manager.Create(ctx, domain.DefaultConfig(), bargain.WithSessionID("fixed"))
	assert.ErrorIs(t, err, session.ErrSessionExists)
}

func TestManager_ArchivesOnEnd(t *testing.T) {
	ctx := context.Background()
	archive := memory.NewArchive()
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	manager := session.NewManager(session.WithArchive(archive), session.WithClock(func() time.Time { return at }))

	id, err := manager.Create(ctx, domain.DefaultConfig())
	require.NoError(t, err)

	run := func(fn func(context.Context, *bargain.Negotiation) (domain.Snapshot, error)) {
		t.Helper()
		require.NoError(t, manager.Do(ctx, id, func(ctx context.Context, n *bargain.Negotiation) error {
			_, err := fn(ctx, n)
			return err
		}))
	}

	run(func(ctx context.Context, n *bargain.Negotiation) (domain.Snapshot, error) { return n.SubmitPrice(ctx, 600) })
	_, err = manager.Transcript(ctx, id)
	assert.ErrorIs(t, err, domain.ErrTranscriptNotFound, "ACCEPT alone is not archived")

	run(func(ctx context.Context, n *bargain.Negotiation) (domain.Snapshot, error) { return n.Finalize(ctx) })

	transcript, err := manager.Transcript(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAccept, transcript.Outcome)
	assert.Equal(t, at, transcript.ArchivedAt)
	assert.Len(t, transcript.History, 2)
}

func TestManager_TranscriptWithoutArchive(t *testing.T) {
	_, err := session.NewManager().Transcript(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
}

// TestManager_SerializesTurns fires concurrent discount requests at one negotiation.
// Every request must observe the result of the previous one.
func TestManager_SerializesTurns(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager()
	id, err := manager.Create(ctx, domain.DefaultConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Do(ctx, id, func(ctx context.Context, n *bargain.Negotiation) error {
				_, err := n.AskDiscount(ctx)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := manager.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Snapshot.ConcessionsUsed)
	assert.Equal(t, 460, view.Snapshot.AIOffer)
	assert.Equal(t, domain.PhaseHold, view.Snapshot.Phase)
}

type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	ttls   []time.Duration
	open   int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttls = append(l.ttls, ttl)
	l.open++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.open--
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &recordingLocker{}
	manager := session.NewManager(session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	id, err := manager.Create(ctx, domain.DefaultConfig())
	require.NoError(t, err)
	_, err = manager.View(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, []string{id}, locker.locked)
	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
	assert.Zero(t, locker.open, "every lock is released")
}
