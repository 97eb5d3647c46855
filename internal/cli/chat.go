package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/internal/presentation/tui"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/runner"
)

// ChatOptions contains the configuration for the chat command.
type ChatOptions struct {
	SessionID   string
	JSON        bool
	Plain       bool
	ShowState   bool
	IdleTimeout time.Duration
}

// RunChat negotiates with one buyer over in/out until the negotiation closes.
// The closed negotiation is archived through the host's session manager and
// its transcript returned.
func RunChat(ctx context.Context, h *Host, opts ChatOptions, in io.Reader, out io.Writer) (*domain.Transcript, error) {
	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		textOpts := []runner.TextHandlerOption{runner.WithTextHandlerState(opts.ShowState)}
		if !opts.Plain {
			tui.PrintBanner(out, bargain.Version)
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		}
		handler = runner.NewTextHandler(in, out, textOpts...)
	}

	var createOpts []bargain.Option
	if opts.SessionID != "" {
		createOpts = append(createOpts, bargain.WithSessionID(opts.SessionID))
	}
	id, err := h.Sessions.Create(ctx, h.Config, createOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start negotiation: %w", err)
	}
	h.Logger.Info("Session Created", "session_id", id, "product", h.Config.Policy.ProductTitle)

	r := runner.NewRunner(
		runner.WithLogger(h.Logger),
		runner.WithInputHandler(handler),
		runner.WithIdleTimeout(opts.IdleTimeout),
	)

	// The runner closes the negotiation itself when ctx is cancelled, so the
	// session lock and the archive write must outlive ctx.
	detached := context.WithoutCancel(ctx)
	err = h.Sessions.Do(detached, id, func(_ context.Context, n *bargain.Negotiation) error {
		return r.Run(ctx, n)
	})
	if err != nil {
		return nil, err
	}

	transcript, err := h.Sessions.Transcript(detached, id)
	if err != nil {
		return nil, err
	}
	if err := h.Sessions.Delete(detached, id); err != nil {
		return nil, err
	}
	h.Logger.Info("Session Finished",
		"session_id", id,
		"outcome", transcript.Outcome,
		"final_offer", transcript.FinalOffer,
	)
	return transcript, nil
}
