package runtime

import (
	"fmt"

	"github.com/aretw0/bargain/pkg/domain"
)

// Decision is the outcome selected for a quote at WAIT_USER.
type Decision int

const (
	DecideAccept Decision = iota + 1
	DecideConcede
	DecideHold
)

func (d Decision) String() string {
	switch d {
	case DecideAccept:
		return "accept"
	case DecideConcede:
		return "concede"
	case DecideHold:
		return "hold"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Phase is the phase a decision leads to.
func (d Decision) Phase() domain.Phase {
	switch d {
	case DecideAccept:
		return domain.PhaseAccept
	case DecideConcede:
		return domain.PhaseConcession
	default:
		return domain.PhaseHold
	}
}

func userAccepts(state *domain.State, offer *int) bool {
	return offer != nil && *offer >= state.AIOffer
}

func reachedStop(cfg domain.Config, state *domain.State) bool {
	return state.AIOffer <= cfg.StopFloor
}

func overLimit(cfg domain.Config, state *domain.State) bool {
	return state.Concessions >= cfg.MaxConcessions
}

func hasBudget(cfg domain.Config, state *domain.State) bool {
	return state.AIOffer > cfg.Floor()
}

// Decide evaluates the three guards for a quote. Exactly one must match; any other
// count is a contract fault reported as domain.ErrGuardViolation.
func Decide(cfg domain.Config, state *domain.State, offer *int) (Decision, error) {
	accepts := userAccepts(state, offer)
	concede := !accepts && !reachedStop(cfg, state) && !overLimit(cfg, state) && hasBudget(cfg, state)
	hold := !accepts && (reachedStop(cfg, state) || overLimit(cfg, state) || !hasBudget(cfg, state))

	var matched []Decision
	if accepts {
		matched = append(matched, DecideAccept)
	}
	if concede {
		matched = append(matched, DecideConcede)
	}
	if hold {
		matched = append(matched, DecideHold)
	}

	if len(matched) != 1 {
		return 0, fmt.Errorf("%w: %d guards matched (ai_offer=%d, k=%d)",
			domain.ErrGuardViolation, len(matched), state.AIOffer, state.Concessions)
	}
	return matched[0], nil
}
