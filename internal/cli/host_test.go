package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/bargain/pkg/adapters/file"
	"github.com/aretw0/bargain/pkg/adapters/memory"
	"github.com/aretw0/bargain/pkg/adapters/redis"
	"github.com/aretw0/bargain/pkg/adapters/sqldb"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, s Settings) *Host {
	t.Helper()
	h, err := NewHost(context.Background(), s, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewHost_Backends(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		settings Settings
		check    func(t *testing.T, h *Host)
	}{
		{
			name:     "memory",
			settings: Settings{ArchiveBackend: BackendMemory},
			check: func(t *testing.T, h *Host) {
				assert.IsType(t, &memory.Archive{}, h.Sessions.Archive())
			},
		},
		{
			name:     "file",
			settings: Settings{ArchiveBackend: BackendFile, ArchivePath: filepath.Join(dir, "transcripts")},
			check: func(t *testing.T, h *Host) {
				assert.IsType(t, &file.Archive{}, h.Sessions.Archive())
			},
		},
		{
			name:     "sqlite",
			settings: Settings{ArchiveBackend: BackendSQLite, ArchiveDSN: filepath.Join(dir, "transcripts.db")},
			check: func(t *testing.T, h *Host) {
				assert.IsType(t, &sqldb.Archive{}, h.Sessions.Archive())
				assert.Len(t, h.closers, 1)
			},
		},
		{
			name:     "redis",
			settings: Settings{ArchiveBackend: BackendRedis, RedisAddr: mr.Addr()},
			check: func(t *testing.T, h *Host) {
				assert.IsType(t, &redis.Archive{}, h.Sessions.Archive())
				assert.Len(t, h.closers, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t, tt.settings)
			assert.Equal(t, domain.DefaultConfig(), h.Config)
			tt.check(t, h)
		})
	}
}

func TestNewHost_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewHost(context.Background(), Settings{ArchiveBackend: BackendRedis, RedisAddr: addr}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestNewHost_Profile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lamp.yaml")
	content := "list_price: 1200\nbar_price: 900\nstop_floor: 950\npolicy:\n  product_title: Brass Lamp\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	h := newTestHost(t, Settings{ArchiveBackend: BackendMemory, Profile: path})
	assert.Equal(t, 1200, h.Config.ListPrice)
	assert.Equal(t, "Brass Lamp", h.Config.Policy.ProductTitle)

	_, err := NewHost(context.Background(), Settings{ArchiveBackend: BackendMemory, Profile: filepath.Join(t.TempDir(), "missing.yaml")}, nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Settings{LogLevel: "warn", LogFormat: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), -4))

	_, err = NewLogger(Settings{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestNewHost_ProtectedArchive(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, middleware.KeySize))
	dir := filepath.Join(t.TempDir(), "transcripts")
	h := newTestHost(t, Settings{
		ArchiveBackend: BackendFile,
		ArchivePath:    dir,
		ArchiveKeys:    []string{key},
		ArchiveRedact:  []string{RedactFloors},
	})

	ctx := context.Background()
	require.NoError(t, h.Sessions.Archive().Put(ctx, &domain.Transcript{
		SessionID:  "p-1",
		Config:     domain.DefaultConfig(),
		Outcome:    domain.PhaseReject,
		FinalOffer: 470,
	}))

	// On disk only the envelope is readable.
	raw, err := file.New(dir).Get(ctx, "p-1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Zero(t, raw.Config.ListPrice)

	opened, err := h.Sessions.Archive().Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 500, opened.Config.ListPrice)
	assert.Zero(t, opened.Config.BarPrice)
	assert.Zero(t, opened.Config.StopFloor)
}

func TestNewHost_BadArchiveKey(t *testing.T) {
	_, err := NewHost(context.Background(), Settings{ArchiveBackend: BackendMemory, ArchiveKeys: []string{"c2hvcnQ="}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")

	_, err = NewHost(context.Background(), Settings{ArchiveBackend: BackendMemory, ArchiveRedact: []string{"("}}, nil)
	assert.Error(t, err)
}
