package runtime

import (
	"math"

	"github.com/aretw0/bargain/pkg/domain"
)

// ConcessionInput is everything the calculator reads.
type ConcessionInput struct {
	// Current is the standing automated offer (A).
	Current int

	// Offer is the counterparty's price this round (U). Nil means no price was given.
	Offer *int

	// Previous is the counterparty's previous price, used by the acceleration rule.
	Previous *int

	// Count is the number of concessions already made (k).
	Count int
}

// Concession is the calculator's verdict.
type Concession struct {
	// Offer is the next automated price. Unset when Accept is true.
	Offer int

	// Accept is true when the counterparty already meets the standing offer.
	Accept bool

	// Jumped is true when the acceleration rule replaced the fractional step.
	Jumped bool
}

// Concede computes the next offer. It has no side effects; the engine applies
// the result to the session state.
func Concede(cfg domain.Config, in ConcessionInput) Concession {
	current := in.Current

	var candidate int
	jumped := false

	switch {
	case in.Offer == nil:
		candidate = current - cfg.Step(in.Count)

	case *in.Offer >= current:
		return Concession{Accept: true}

	case shouldJump(cfg, in):
		candidate = cfg.Floor()
		jumped = true

	default:
		u := *in.Offer
		gap := current - u
		raw := float64(u) + cfg.FractionTowardsUser*float64(gap)
		candidate = roundToBase(raw, cfg.RoundBase)
		if candidate >= current {
			candidate = current - cfg.MinTick
		}
	}

	// The floor overrides all prior arithmetic.
	candidate = max(candidate, cfg.StopFloor, cfg.BarPrice)

	return Concession{Offer: candidate, Jumped: jumped}
}

// shouldJump reports whether the acceleration rule applies this round.
func shouldJump(cfg domain.Config, in ConcessionInput) bool {
	if !cfg.Accelerate || in.Offer == nil || in.Previous == nil {
		return false
	}
	improvement := *in.Offer - *in.Previous
	return improvement >= cfg.JumpImproveThreshold || *in.Offer <= cfg.PsychZonePrice
}

// roundToBase rounds x to the nearest multiple of base, halves to even.
func roundToBase(x float64, base int) int {
	if base <= 1 {
		return int(math.RoundToEven(x))
	}
	b := float64(base)
	return int(math.RoundToEven(x/b) * b)
}
