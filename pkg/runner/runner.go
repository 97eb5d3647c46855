package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/pkg/domain"
)

// Runner handles the conversation loop of one negotiation.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// IdleTimeout fires a timeout event when input takes longer. Zero disables it.
	IdleTimeout time.Duration
}

// NewRunner creates a Runner. Without options it talks over Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run converses until the negotiation closes, then finalizes it.
// Cancelling ctx or closing the input rejects the negotiation with giveup.
func (r *Runner) Run(ctx context.Context, n *bargain.Negotiation) error {
	h := r.Handler
	if c, ok := h.(io.Closer); ok {
		defer c.Close()
	}

	if !n.Ended() {
		if n.State().Phase == domain.PhaseInit {
			if _, err := n.Start(ctx); err != nil {
				return fmt.Errorf("start error: %w", err)
			}
		}
		// Hosts may start the negotiation before handing it over. The opening
		// is due as long as the counterparty has not been answered yet.
		if len(n.History()) == 0 {
			if err := h.Output(ctx, n.View(domain.Summary{Intent: domain.IntentOther})); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
		}
	}

	for !n.Ended() {
		line, err := r.read(ctx, h)
		if err != nil {
			switch {
			case errors.Is(err, ErrInputTooLarge), errors.Is(err, ErrInvalidUTF8):
				if err := h.SystemOutput(ctx, err.Error()); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
				continue
			case ctx.Err() != nil, err == io.EOF:
				r.Logger.Debug("Runner input closed", "session_id", n.ID(), "err", err)
				return r.close(n, h, domain.EventGiveUp)
			case errors.Is(err, context.DeadlineExceeded):
				r.Logger.Debug("Runner input idle", "session_id", n.ID(), "timeout", r.IdleTimeout)
				return r.close(n, h, domain.EventTimeout)
			default:
				return fmt.Errorf("input error: %w", err)
			}
		}

		if line == "" {
			continue
		}
		summary := ReadSummary(line)
		confirm := summary.Intent == domain.IntentAccept && summary.Price == nil
		if kind, ok := command(line); ok {
			if kind == domain.EventGiveUp {
				return r.close(n, h, kind)
			}
			summary = domain.Summary{Intent: domain.IntentAccept, Notes: line}
			confirm = true
		}

		res, err := r.turn(ctx, n, summary, confirm)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidOffer) {
				if err := h.SystemOutput(ctx, err.Error()); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
				continue
			}
			return fmt.Errorf("turn error: %w", err)
		}
		if err := h.Output(ctx, res); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	return r.finalize(context.WithoutCancel(ctx), n, h)
}

// turn applies one reading of the counterparty. In a chat a plain "deal"
// without a price confirms the standing offer; Negotiation.Turn alone never
// closes a negotiation without a price.
func (r *Runner) turn(ctx context.Context, n *bargain.Negotiation, summary domain.Summary, confirm bool) (domain.TurnResult, error) {
	if !confirm {
		return n.Turn(ctx, summary)
	}
	if _, err := n.Confirm(ctx); err != nil {
		return domain.TurnResult{}, err
	}
	return n.View(summary), nil
}

func (r *Runner) read(ctx context.Context, h IOHandler) (string, error) {
	if r.IdleTimeout <= 0 {
		return h.Input(ctx)
	}
	inputCtx, cancel := context.WithTimeout(ctx, r.IdleTimeout)
	defer cancel()
	return h.Input(inputCtx)
}

// close rejects an open negotiation and finalizes it. It runs detached from
// the caller's context, which is usually already cancelled.
func (r *Runner) close(n *bargain.Negotiation, h IOHandler, kind domain.EventKind) error {
	ctx := context.Background()
	if _, err := n.Fire(ctx, domain.Event{Kind: kind}); err != nil {
		return fmt.Errorf("%s error: %w", kind, err)
	}
	if err := h.Output(ctx, n.View(domain.Summary{Intent: domain.IntentOther})); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return r.finalize(ctx, n, h)
}

func (r *Runner) finalize(ctx context.Context, n *bargain.Negotiation, h IOHandler) error {
	if _, err := n.Finalize(ctx); err != nil {
		return fmt.Errorf("finalize error: %w", err)
	}
	t := n.Transcript()
	r.Logger.Info("Negotiation closed",
		"session_id", n.ID(),
		"outcome", t.Outcome,
		"final_offer", t.FinalOffer,
		"concessions", t.Concessions,
	)
	return h.SystemOutput(ctx, fmt.Sprintf("negotiation %s closed: %s at %d after %d concessions",
		n.ID(), t.Outcome, t.FinalOffer, t.Concessions))
}

// command maps slash commands and bare quit words to events.
func command(line string) (domain.EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/deal", "/accept", "/confirm":
		return domain.EventConfirm, true
	case "/quit", "/giveup", "quit", "exit":
		return domain.EventGiveUp, true
	default:
		return "", false
	}
}
