package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/bargain/pkg/adapters/file"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Archive = (*file.Archive)(nil)

func TestFileArchive_Contract(t *testing.T) {
	ports.RunArchiveContract(t, file.New(t.TempDir()))
}

func TestFileArchive_Layout(t *testing.T) {
	dir := t.TempDir()
	archive := file.New(dir)
	ctx := context.Background()

	require.NoError(t, archive.Put(ctx, &domain.Transcript{SessionID: "s1", Outcome: domain.PhaseAccept}))

	data, err := os.ReadFile(filepath.Join(dir, "s1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome": "ACCEPT"`)

	// Leftover temp files from an interrupted write are not transcripts.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-s2-123"), []byte("{"), 0644))
	ids, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestFileArchive_RejectsUnsafeIDs(t *testing.T) {
	archive := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		_, err := archive.Get(ctx, id)
		assert.Error(t, err, "id %q", id)
		assert.NotErrorIs(t, err, domain.ErrTranscriptNotFound)
	}
}

func TestFileArchive_ListMissingDir(t *testing.T) {
	archive := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := archive.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
