package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/bargain/pkg/domain"
)

const ext = ".json"

// Archive implements ports.Archive using the local filesystem.
// It stores one indented JSON file per transcript in a configured directory.
type Archive struct {
	BasePath string
}

// New creates a new Archive with the given base path.
// If basePath is empty, it defaults to ".bargain/transcripts".
func New(basePath string) *Archive {
	if basePath == "" {
		basePath = filepath.Join(".bargain", "transcripts")
	}
	return &Archive{BasePath: basePath}
}

func (a *Archive) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid sessionID %q", sessionID)
	}
	return filepath.Join(a.BasePath, sessionID+ext), nil
}

// Put writes the transcript atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (a *Archive) Put(ctx context.Context, transcript *domain.Transcript) error {
	destPath, err := a.path(transcript.SessionID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure archive directory: %w", err)
	}

	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(a.BasePath, "tmp-"+transcript.SessionID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing transcript for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to transcript: %w", err)
	}
	return nil
}

// Get reads a transcript file.
func (a *Archive) Get(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	filePath, err := a.path(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var transcript domain.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &transcript, nil
}

// Delete removes the transcript file.
func (a *Archive) Delete(ctx context.Context, sessionID string) error {
	filePath, err := a.path(sessionID)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete transcript file: %w", err)
	}
	return nil
}

// List returns the IDs of all archived transcripts.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	return ids, nil
}
