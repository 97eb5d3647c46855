package sqldb_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/bargain/pkg/adapters/sqldb"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sqldb.Archive {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "archive.db")
	archive, err := sqldb.Open(context.Background(), sqldb.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	return archive
}

func TestSQLiteArchive_Contract(t *testing.T) {
	ports.RunArchiveContract(t, openSQLite(t))
}

func TestSQLiteArchive_ListNewestFirst(t *testing.T) {
	archive := openSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new", "mid"} {
		offset := map[string]time.Duration{"old": 0, "mid": time.Hour, "new": 2 * time.Hour}[id]
		require.NoError(t, archive.Put(ctx, &domain.Transcript{
			SessionID:  id,
			Outcome:    domain.PhaseAccept,
			FinalOffer: 400 + i,
			ArchivedAt: base.Add(offset),
		}))
	}

	ids, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestSQLiteArchive_SummaryColumns(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "archive.db")
	db, err := sql.Open(sqldb.DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	archive, err := sqldb.New(ctx, db)
	require.NoError(t, err)

	require.NoError(t, archive.Put(ctx, &domain.Transcript{
		SessionID:   "s1",
		Outcome:     domain.PhaseReject,
		FinalOffer:  420,
		Concessions: 3,
	}))

	var outcome string
	var finalOffer, concessions int
	err = db.QueryRowContext(ctx, `SELECT outcome, final_offer, concessions FROM transcripts WHERE session_id = ?`, "s1").
		Scan(&outcome, &finalOffer, &concessions)
	require.NoError(t, err)
	assert.Equal(t, "REJECT", outcome)
	assert.Equal(t, 420, finalOffer)
	assert.Equal(t, 3, concessions)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := sqldb.Open(ctx, "postgres", "whatever")
	assert.ErrorContains(t, err, "unsupported")

	_, err = sqldb.Open(ctx, sqldb.DriverMySQL, "not a dsn")
	assert.ErrorContains(t, err, "invalid mysql dsn")
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := sqldb.NormalizeMySQLDSN("bargain:secret@tcp(db.local:3306)/bargain")
	require.NoError(t, err)
	assert.Contains(t, dsn, "bargain:secret@tcp(db.local:3306)/bargain")
}
