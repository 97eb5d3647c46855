package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/bargain/pkg/ports"
)

// ListTranscripts prints the archived session IDs with their outcome.
func ListTranscripts(ctx context.Context, archive ports.Archive, w io.Writer) error {
	ids, err := archive.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing transcripts: %w", err)
	}

	if len(ids) == 0 {
		fmt.Fprintln(w, "No archived negotiations found.")
		return nil
	}

	fmt.Fprintln(w, "Archived Negotiations:")
	for _, id := range ids {
		t, err := archive.Get(ctx, id)
		if err != nil {
			// Expired between List and Get.
			continue
		}
		fmt.Fprintf(w, "- %s  %-6s %d (%d concessions)\n", id, t.Outcome, t.FinalOffer, t.Concessions)
	}
	return nil
}

// InspectTranscript pretty prints one transcript as JSON.
func InspectTranscript(ctx context.Context, archive ports.Archive, id string, w io.Writer) error {
	t, err := archive.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading transcript '%s': %w", id, err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling transcript: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveTranscripts deletes each ID and reports per ID. It fails if any removal failed.
func RemoveTranscripts(ctx context.Context, archive ports.Archive, ids []string, w io.Writer) error {
	failed := 0
	for _, id := range ids {
		if err := archive.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed transcript '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d transcripts", failed, len(ids))
	}
	return nil
}
