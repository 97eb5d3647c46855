package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Regexp(t, `^bargain version \d+\.\d+\.\d+\n$`, out)
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("list_price = 800\nbar_price = 600\nstop_floor = 650\n"), 0644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("list_price: 300\nstop_floor: 420\n"), 0644))

	t.Run("Valid", func(t *testing.T) {
		out, err := execute(t, "", "validate", good)
		require.NoError(t, err)
		assert.Contains(t, out, "Profile is valid!")
	})

	t.Run("Print resolved profile", func(t *testing.T) {
		out, err := execute(t, "", "validate", good, "--print", "json")
		require.NoError(t, err)

		var cfg domain.Config
		require.NoError(t, json.Unmarshal([]byte(out), &cfg))
		assert.Equal(t, 800, cfg.ListPrice)
		assert.Equal(t, domain.DefaultStepSchedule, cfg.StepSchedule)
	})

	t.Run("Invalid", func(t *testing.T) {
		out, err := execute(t, "", "validate", bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		assert.Contains(t, out, "stop_floor")
	})

	t.Run("Missing argument", func(t *testing.T) {
		_, err := execute(t, "", "validate")
		assert.Error(t, err)
	})
}

func TestChatThenArchive(t *testing.T) {
	archiveDir := filepath.Join(t.TempDir(), "transcripts")
	flags := []string{"--archive", "file", "--archive-path", archiveDir, "--log-level", "error"}

	out, err := execute(t, "440\n/deal\n", append([]string{"chat", "--plain", "--session", "cli-1"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "I can offer **470**")
	assert.Contains(t, out, "closed: ACCEPT at 470")

	out, err = execute(t, "", append([]string{"archive", "ls"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "- cli-1  ACCEPT 470 (1 concessions)")

	out, err = execute(t, "", append([]string{"archive", "inspect", "cli-1"}, flags...)...)
	require.NoError(t, err)
	var transcript domain.Transcript
	require.NoError(t, json.Unmarshal([]byte(out), &transcript))
	assert.Equal(t, "cli-1", transcript.SessionID)
	assert.Equal(t, domain.PhaseAccept, transcript.Outcome)

	out, err = execute(t, "", append([]string{"archive", "rm", "cli-1"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed transcript 'cli-1'")

	out, err = execute(t, "", append([]string{"archive", "ls"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "No archived negotiations found.")
}

func TestChatCmd_EnvironmentBackend(t *testing.T) {
	t.Setenv("BARGAIN_ARCHIVE_BACKEND", "etcd")

	_, err := execute(t, "", "chat", "--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown archive backend")
}

func TestValidateCmd_ShippedProfiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "profiles", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			out, err := execute(t, "", "validate", path)
			require.NoError(t, err)
			assert.Contains(t, out, "Profile is valid!")
		})
	}
}
