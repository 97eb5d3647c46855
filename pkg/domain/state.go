package domain

// Round is one entry of the append-only negotiation history.
type Round struct {
	Phase     Phase `json:"phase"`
	UserOffer *int  `json:"user_offer"`
	AIOffer   int   `json:"ai_offer"`
}

// State represents the running values of one negotiation.
// It is mutated only by the transition engine, once per accepted input.
type State struct {
	// SessionID identifies the negotiation (used for logging and archiving).
	SessionID string `json:"session_id"`

	// Phase is the current machine state.
	Phase Phase `json:"phase"`

	// AIOffer is the automated party's current price. Starts at Config.ListPrice.
	AIOffer int `json:"ai_offer"`

	// LastUserOffer is the counterparty's latest processed price, if any.
	LastUserOffer *int `json:"last_user_offer,omitempty"`

	// Concessions counts CONCESSION rounds (k).
	Concessions int `json:"concessions"`

	// Ended is set on ACCEPT or REJECT. After that only Phase and History change.
	Ended bool `json:"ended"`

	History []Round `json:"history"`
}

// NewState creates a clean state anchored at the list price.
func NewState(sessionID string, cfg Config) *State {
	return &State{
		SessionID: sessionID,
		Phase:     PhaseInit,
		AIOffer:   cfg.ListPrice,
		History:   []Round{},
	}
}

// Clone returns a deep copy so callers never alias engine-owned data.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.LastUserOffer = CopyPrice(s.LastUserOffer)
	c.History = make([]Round, len(s.History))
	for i, r := range s.History {
		r.UserOffer = CopyPrice(r.UserOffer)
		c.History[i] = r
	}
	return &c
}

// Record appends a history entry.
func (s *State) Record(phase Phase, userOffer *int) {
	s.History = append(s.History, Round{
		Phase:     phase,
		UserOffer: CopyPrice(userOffer),
		AIOffer:   s.AIOffer,
	})
}

// Price returns a pointer to p, for optional price fields.
func Price(p int) *int {
	return &p
}

// CopyPrice duplicates an optional price.
func CopyPrice(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
