package bargain

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/internal/runtime"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/oklog/ulid/v2"
)

// Negotiation is the high-level entry point of the library. It owns the state of a
// single negotiation and runs every input through the transition engine.
//
// A Negotiation is not safe for concurrent use. Hosts serving several callers keep
// negotiations in a session.Manager, which serializes access per session.
type Negotiation struct {
	engine    *runtime.Engine
	state     *domain.State
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	sessionID string
}

// Option defines a functional option for configuring a Negotiation.
type Option func(*Negotiation)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(n *Negotiation) {
		n.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Negotiation) {
		n.logger = logger
	}
}

// WithSessionID fixes the session identifier instead of generating a ULID.
func WithSessionID(id string) Option {
	return func(n *Negotiation) {
		n.sessionID = id
	}
}

// WithClock overrides the time source for events and transcripts.
func WithClock(now func() time.Time) Option {
	return func(n *Negotiation) {
		n.now = now
	}
}

// New validates cfg and creates a negotiation in INIT.
func New(cfg domain.Config, opts ...Option) (*Negotiation, error) {
	n := &Negotiation{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}

	if n.sessionID == "" {
		n.sessionID = ulid.Make().String()
	}
	if n.logger == nil {
		n.logger = logging.NewNop()
	}
	n.logger = n.logger.With("session_id", n.sessionID)

	engine, err := runtime.NewEngine(cfg,
		runtime.WithLifecycleHooks(n.hooks),
		runtime.WithLogger(n.logger),
		runtime.WithClock(n.now),
	)
	if err != nil {
		return nil, err
	}
	n.engine = engine
	n.state = engine.NewState(n.sessionID)
	return n, nil
}

// ID returns the session identifier.
func (n *Negotiation) ID() string {
	return n.sessionID
}

// Config returns a copy of the negotiation configuration.
func (n *Negotiation) Config() domain.Config {
	return n.engine.Config()
}

// Fire applies an arbitrary event. The state is only replaced when the engine
// accepts the event.
func (n *Negotiation) Fire(ctx context.Context, ev domain.Event) (domain.Snapshot, error) {
	next, err := n.engine.Fire(ctx, n.state, ev)
	if err != nil {
		n.logger.Warn("Event rejected", "event", ev.Kind, "phase", n.state.Phase, "err", err)
		return n.Snapshot(), err
	}
	n.state = next
	return n.Snapshot(), nil
}

// Start anchors the negotiation at the list price and waits for the counterparty.
func (n *Negotiation) Start(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventStart})
}

// SubmitPrice processes a counter-offer. Negative prices fail with domain.ErrInvalidOffer.
func (n *Negotiation) SubmitPrice(ctx context.Context, price int) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.SubmitPrice(price))
}

// SubmitNoPrice processes an input that carried no price. It only advances the anchor path.
func (n *Negotiation) SubmitNoPrice(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventNoPrice})
}

// AskDiscount requests a concession without naming a price.
func (n *Negotiation) AskDiscount(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventAskDiscount})
}

// Confirm accepts the standing offer.
func (n *Negotiation) Confirm(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventConfirm})
}

// GiveUp rejects the negotiation on behalf of the counterparty.
func (n *Negotiation) GiveUp(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventGiveUp})
}

// Timeout rejects the negotiation after inactivity.
func (n *Negotiation) Timeout(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventTimeout})
}

// Finalize closes an accepted or rejected negotiation into END.
func (n *Negotiation) Finalize(ctx context.Context) (domain.Snapshot, error) {
	return n.Fire(ctx, domain.Event{Kind: domain.EventFinalize})
}

// Signal fires a named external signal (confirm, giveup, timeout, finalize).
func (n *Negotiation) Signal(ctx context.Context, name string) (domain.Snapshot, error) {
	ev, err := domain.ParseSignal(name)
	if err != nil {
		return n.Snapshot(), err
	}
	return n.Fire(ctx, ev)
}

// Turn maps the structured reading of one utterance to an event, fires it and
// returns every view the reply renderer needs.
func (n *Negotiation) Turn(ctx context.Context, summary domain.Summary) (domain.TurnResult, error) {
	if summary.Intent == "" {
		summary.Intent = domain.IntentOther
	}

	_, err := n.Fire(ctx, eventFor(summary))
	if err != nil {
		return domain.TurnResult{}, err
	}
	return n.View(summary), nil
}

// View bundles the current views with the summary that led to them.
func (n *Negotiation) View(summary domain.Summary) domain.TurnResult {
	snap := n.Snapshot()
	contract := n.Contract()
	return domain.TurnResult{
		Summary:  summary,
		Snapshot: snap,
		Contract: contract,
		CoreView: runtime.BuildCoreView(summary, snap, contract),
	}
}

// eventFor picks the event carried by a summary. Only a price moves the
// negotiation; without one the intent is left to the reply renderer and the
// machine stays on the anchor path. Concessions without a price and
// confirmations are explicit calls (AskDiscount, Confirm, Signal).
func eventFor(summary domain.Summary) domain.Event {
	if summary.Price != nil {
		return domain.Event{Kind: domain.EventSubmitPrice, Offer: domain.CopyPrice(summary.Price)}
	}
	return domain.Event{Kind: domain.EventNoPrice}
}

// Snapshot returns the lightweight tracing view.
func (n *Negotiation) Snapshot() domain.Snapshot {
	return runtime.BuildSnapshot(n.engine.Config(), n.state)
}

// Contract returns the policy payload for the reply renderer.
func (n *Negotiation) Contract() domain.Contract {
	return runtime.BuildContract(n.engine.Config(), n.state)
}

// History returns a copy of the round history.
func (n *Negotiation) History() []domain.Round {
	return n.state.Clone().History
}

// State returns a copy of the full negotiation state.
func (n *Negotiation) State() *domain.State {
	return n.state.Clone()
}

// Ended reports whether the negotiation reached ACCEPT or REJECT.
func (n *Negotiation) Ended() bool {
	return n.state.Ended
}

// Transcript builds the audit record of the negotiation as it stands.
func (n *Negotiation) Transcript() *domain.Transcript {
	return domain.NewTranscript(n.engine.Config(), n.state, n.now())
}
