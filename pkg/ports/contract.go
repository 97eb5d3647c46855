package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunArchiveContract runs a suite of tests to verify that an Archive implementation
// adheres to the defined interface contract.
func RunArchiveContract(t *testing.T, archive Archive) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		want := sampleTranscript(sessionID, domain.PhaseAccept)

		err := archive.Put(ctx, want)
		require.NoError(t, err, "Put should not return error")

		got, err := archive.Get(ctx, sessionID)
		require.NoError(t, err, "Get should not return error")
		assertSameTranscript(t, want, got)
	})

	t.Run("Put replaces", func(t *testing.T) {
		require.NoError(t, archive.Put(ctx, sampleTranscript(sessionID, domain.PhaseReject)))

		got, err := archive.Get(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseReject, got.Outcome)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := archive.Get(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, archive.Put(ctx, sampleTranscript(sessionID, domain.PhaseAccept)))

		err := archive.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = archive.Get(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrTranscriptNotFound, "Get after Delete should return ErrTranscriptNotFound")

		assert.NoError(t, archive.Delete(ctx, sessionID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, archive.Put(ctx, sampleTranscript(id1, domain.PhaseAccept)))
		require.NoError(t, archive.Put(ctx, sampleTranscript(id2, domain.PhaseReject)))

		defer func() {
			_ = archive.Delete(ctx, id1)
			_ = archive.Delete(ctx, id2)
		}()

		ids, err := archive.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("Returned copies are independent", func(t *testing.T) {
		require.NoError(t, archive.Put(ctx, sampleTranscript(sessionID, domain.PhaseAccept)))
		defer func() { _ = archive.Delete(ctx, sessionID) }()

		first, err := archive.Get(ctx, sessionID)
		require.NoError(t, err)
		first.History[0].AIOffer = 1

		second, err := archive.Get(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 470, second.History[0].AIOffer)
	})
}

func sampleTranscript(sessionID string, outcome domain.Phase) *domain.Transcript {
	return &domain.Transcript{
		SessionID:   sessionID,
		Config:      domain.DefaultConfig(),
		Outcome:     outcome,
		FinalOffer:  450,
		Concessions: 2,
		History: []domain.Round{
			{Phase: domain.PhaseConcession, UserOffer: domain.Price(440), AIOffer: 470},
			{Phase: domain.PhaseConcession, UserOffer: domain.Price(430), AIOffer: 450},
			{Phase: outcome, UserOffer: domain.Price(455), AIOffer: 450},
		},
		ArchivedAt: time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
	}
}

func assertSameTranscript(t *testing.T, want, got *domain.Transcript) {
	t.Helper()
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.Outcome, got.Outcome)
	assert.Equal(t, want.FinalOffer, got.FinalOffer)
	assert.Equal(t, want.Concessions, got.Concessions)
	assert.Equal(t, want.History, got.History)
	assert.Equal(t, want.Config.ListPrice, got.Config.ListPrice)
	assert.Equal(t, want.Config.StepSchedule, got.Config.StepSchedule)
	assert.True(t, want.ArchivedAt.Equal(got.ArchivedAt), "archived_at %s != %s", want.ArchivedAt, got.ArchivedAt)
}
