package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/pkg/domain"
)

// Engine is the negotiation state machine. It holds the immutable configuration of
// one negotiation and computes next states; it never keeps session state itself.
// Fire never modifies its input state, so a caller owning one State needs no locks.
type Engine struct {
	cfg    domain.Config
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine validates cfg and creates an engine for it.
func NewEngine(cfg domain.Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg.Clone(),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() domain.Config {
	return e.cfg.Clone()
}

// NewState creates the initial state of a session.
func (e *Engine) NewState(sessionID string) *domain.State {
	return domain.NewState(sessionID, e.cfg)
}

// Fire applies one event and returns the resulting state.
// Once a session has ended every event except finalize is a no-op.
func (e *Engine) Fire(ctx context.Context, state *domain.State, ev domain.Event) (*domain.State, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: nil state", domain.ErrInvalidTransition)
	}
	if ev.Kind == domain.EventSubmitPrice {
		if ev.Offer == nil {
			return nil, fmt.Errorf("%w: missing price", domain.ErrInvalidOffer)
		}
		if err := domain.ValidateOffer(*ev.Offer); err != nil {
			return nil, fmt.Errorf("%w: %d", err, *ev.Offer)
		}
	}

	next := state.Clone()
	if next.Ended && ev.Kind != domain.EventFinalize {
		e.logger.Debug("Event ignored on ended session",
			"session_id", next.SessionID,
			"event", ev.Kind,
			"phase", next.Phase,
		)
		return next, nil
	}

	var err error
	switch ev.Kind {
	case domain.EventStart:
		e.start(ctx, next, ev.Kind)
	case domain.EventNoPrice:
		e.start(ctx, next, ev.Kind)
	case domain.EventSubmitPrice:
		err = e.quote(ctx, next, ev.Kind, ev.Offer)
	case domain.EventAskDiscount:
		err = e.quote(ctx, next, ev.Kind, nil)
	case domain.EventConfirm:
		e.accept(ctx, next, ev.Kind, next.LastUserOffer)
	case domain.EventGiveUp, domain.EventTimeout:
		e.reject(ctx, next, ev.Kind)
	case domain.EventFinalize:
		err = e.finalize(ctx, next)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnhandledSignal, ev.Kind)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// start runs INIT -> ANCHOR -> WAIT_USER. It does nothing outside INIT.
func (e *Engine) start(ctx context.Context, s *domain.State, kind domain.EventKind) {
	if s.Phase != domain.PhaseInit {
		return
	}
	e.transition(ctx, s, kind, domain.PhaseAnchor, nil)
	// ANCHOR is a pass-through reserved for an opening statement.
	e.transition(ctx, s, kind, domain.PhaseWaitUser, nil)
}

// quote handles a counter-offer. A nil offer asks for a discount without a price.
func (e *Engine) quote(ctx context.Context, s *domain.State, kind domain.EventKind, offer *int) error {
	switch s.Phase {
	case domain.PhaseInit:
		e.start(ctx, s, kind)
	case domain.PhaseAnchor, domain.PhaseHold:
		e.transition(ctx, s, kind, domain.PhaseWaitUser, offer)
	case domain.PhaseWaitUser:
	case domain.PhaseConcession:
		return fmt.Errorf("%w: quote received in transient phase %s", domain.ErrInvalidTransition, s.Phase)
	case domain.PhaseAccept, domain.PhaseReject, domain.PhaseEnd:
		return fmt.Errorf("%w: quote received in closed phase %s", domain.ErrInvalidTransition, s.Phase)
	default:
		return fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidTransition, s.Phase)
	}

	decision, err := Decide(e.cfg, s, offer)
	if err != nil {
		e.logger.Error("Guard evaluation fault",
			"session_id", s.SessionID,
			"ai_offer", s.AIOffer,
			"concessions", s.Concessions,
			"err", err,
		)
		return err
	}

	switch decision {
	case DecideAccept:
		e.accept(ctx, s, kind, offer)
	case DecideConcede:
		e.concede(ctx, s, kind, offer)
	case DecideHold:
		e.hold(ctx, s, kind, offer)
	default:
		return fmt.Errorf("%w: unexpected decision %s", domain.ErrGuardViolation, decision)
	}
	return nil
}

// concede runs the transient CONCESSION phase and settles in HOLD or WAIT_USER.
func (e *Engine) concede(ctx context.Context, s *domain.State, kind domain.EventKind, offer *int) {
	c := Concede(e.cfg, ConcessionInput{
		Current:  s.AIOffer,
		Offer:    offer,
		Previous: s.LastUserOffer,
		Count:    s.Concessions,
	})
	if c.Accept {
		e.accept(ctx, s, kind, offer)
		return
	}

	e.transition(ctx, s, kind, domain.PhaseConcession, offer)

	previous := s.AIOffer
	s.Concessions++
	s.AIOffer = c.Offer
	s.LastUserOffer = domain.CopyPrice(offer)
	s.Record(domain.PhaseConcession, offer)

	e.logger.Debug("Concession applied",
		"session_id", s.SessionID,
		"previous", previous,
		"next", s.AIOffer,
		"k", s.Concessions,
		"jumped", c.Jumped,
	)
	if e.hooks.OnConcession != nil {
		e.hooks.OnConcession(ctx, &domain.ConcessionEvent{
			Timestamp: e.now(),
			SessionID: s.SessionID,
			Previous:  previous,
			Next:      s.AIOffer,
			UserOffer: domain.CopyPrice(offer),
			ListPrice: e.cfg.ListPrice,
			Count:     s.Concessions,
			Jumped:    c.Jumped,
		})
	}

	if reachedStop(e.cfg, s) || overLimit(e.cfg, s) {
		e.transition(ctx, s, kind, domain.PhaseHold, offer)
		return
	}
	e.transition(ctx, s, kind, domain.PhaseWaitUser, offer)
}

func (e *Engine) hold(ctx context.Context, s *domain.State, kind domain.EventKind, offer *int) {
	e.transition(ctx, s, kind, domain.PhaseHold, offer)
	s.LastUserOffer = domain.CopyPrice(offer)
	s.Record(domain.PhaseHold, offer)
}

func (e *Engine) accept(ctx context.Context, s *domain.State, kind domain.EventKind, offer *int) {
	e.transition(ctx, s, kind, domain.PhaseAccept, offer)
	s.Ended = true
	s.LastUserOffer = domain.CopyPrice(offer)
	s.Record(domain.PhaseAccept, offer)
}

func (e *Engine) reject(ctx context.Context, s *domain.State, kind domain.EventKind) {
	e.transition(ctx, s, kind, domain.PhaseReject, s.LastUserOffer)
	s.Ended = true
	s.Record(domain.PhaseReject, s.LastUserOffer)
}

// finalize closes an ACCEPT or REJECT into END. Repeating it on END is a no-op.
func (e *Engine) finalize(ctx context.Context, s *domain.State) error {
	switch s.Phase {
	case domain.PhaseEnd:
		return nil
	case domain.PhaseAccept, domain.PhaseReject:
		e.transition(ctx, s, domain.EventFinalize, domain.PhaseEnd, s.LastUserOffer)
		s.Record(domain.PhaseEnd, s.LastUserOffer)
		return nil
	default:
		return fmt.Errorf("%w: cannot finalize from %s", domain.ErrInvalidTransition, s.Phase)
	}
}

func (e *Engine) transition(ctx context.Context, s *domain.State, kind domain.EventKind, to domain.Phase, offer *int) {
	from := s.Phase
	s.Phase = to

	e.logger.Debug("Transition",
		"session_id", s.SessionID,
		"event", kind,
		"from", from,
		"to", to,
	)
	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp:   e.now(),
			SessionID:   s.SessionID,
			Event:       kind,
			From:        from,
			To:          to,
			UserOffer:   domain.CopyPrice(offer),
			AIOffer:     s.AIOffer,
			Concessions: s.Concessions,
		})
	}
}
