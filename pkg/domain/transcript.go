package domain

import "time"

// Transcript is the archived audit record of a finished negotiation.
type Transcript struct {
	SessionID   string    `json:"session_id"`
	Config      Config    `json:"config"`
	Outcome     Phase     `json:"outcome"`
	FinalOffer  int       `json:"final_offer"`
	Concessions int       `json:"concessions"`
	History     []Round   `json:"history"`
	ArchivedAt  time.Time `json:"archived_at"`

	// Sealed carries the encrypted full transcript when the archive encrypts at
	// rest. Config and History are then empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewTranscript builds a transcript from the final state of a negotiation.
// The outcome is the last ACCEPT or REJECT recorded in the history. On ACCEPT
// the final offer is the agreed price, which is the buyer's price when it
// topped the standing offer.
func NewTranscript(cfg Config, state *State, at time.Time) *Transcript {
	outcome := state.Phase
	for i := len(state.History) - 1; i >= 0; i-- {
		if state.History[i].Phase.IsOutcome() {
			outcome = state.History[i].Phase
			break
		}
	}
	final := state.AIOffer
	if outcome == PhaseAccept && state.LastUserOffer != nil {
		final = max(final, *state.LastUserOffer)
	}
	return &Transcript{
		SessionID:   state.SessionID,
		Config:      cfg.Clone(),
		Outcome:     outcome,
		FinalOffer:  final,
		Concessions: state.Concessions,
		History:     state.Clone().History,
		ArchivedAt:  at.UTC(),
	}
}

// Clone returns a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	c := *t
	c.Config = t.Config.Clone()
	c.History = make([]Round, len(t.History))
	for i, r := range t.History {
		r.UserOffer = CopyPrice(r.UserOffer)
		c.History[i] = r
	}
	return &c
}
