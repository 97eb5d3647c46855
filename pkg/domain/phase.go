package domain

// Phase is a state of the negotiation machine.
type Phase string

const (
	PhaseInit       Phase = "INIT"
	PhaseAnchor     Phase = "ANCHOR"
	PhaseWaitUser   Phase = "WAIT_USER"
	PhaseConcession Phase = "CONCESSION"
	PhaseHold       Phase = "HOLD"
	PhaseAccept     Phase = "ACCEPT"
	PhaseReject     Phase = "REJECT"
	PhaseEnd        Phase = "END"
)

// Phases returns every phase in declaration order.
func Phases() []Phase {
	return []Phase{
		PhaseInit,
		PhaseAnchor,
		PhaseWaitUser,
		PhaseConcession,
		PhaseHold,
		PhaseAccept,
		PhaseReject,
		PhaseEnd,
	}
}

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseInit, PhaseAnchor, PhaseWaitUser, PhaseConcession,
		PhaseHold, PhaseAccept, PhaseReject, PhaseEnd:
		return true
	default:
		return false
	}
}

// IsOutcome reports whether p closes the negotiation (ACCEPT or REJECT).
func (p Phase) IsOutcome() bool {
	return p == PhaseAccept || p == PhaseReject
}

// IsTerminal reports whether p is the sink state.
func (p Phase) IsTerminal() bool {
	return p == PhaseEnd
}

func (p Phase) String() string {
	return string(p)
}

// Action names a move the reply renderer may describe.
type Action string

const (
	ActionConcession Action = "CONCESSION"
	ActionHold       Action = "HOLD"
	ActionAccept     Action = "ACCEPT"

	// ActionLowerPrice is only ever listed as forbidden.
	ActionLowerPrice Action = "LOWER_PRICE"
)
