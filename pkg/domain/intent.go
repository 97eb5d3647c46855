package domain

import "strings"

// Intent is the structured intent produced by the external extractor.
type Intent string

const (
	IntentCounterOffer Intent = "counter_offer"
	IntentAccept       Intent = "accept"
	IntentAsk          Intent = "ask"
	IntentOther        Intent = "other"
)

// ParseIntent normalizes an extractor intent. Unknown values map to IntentOther.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentCounterOffer:
		return IntentCounterOffer
	case IntentAccept:
		return IntentAccept
	case IntentAsk:
		return IntentAsk
	default:
		return IntentOther
	}
}

// Summary is the structured reading of one customer utterance.
type Summary struct {
	Intent Intent `json:"intent" mapstructure:"intent"`
	Price  *int   `json:"customer_price" mapstructure:"customer_price"`
	Notes  string `json:"notes,omitempty" mapstructure:"notes"`
}

// ValidateOffer rejects prices that must never reach the state machine.
func ValidateOffer(price int) error {
	if price < 0 {
		return ErrInvalidOffer
	}
	return nil
}

// TurnResult bundles every view produced by one conversational turn.
type TurnResult struct {
	Summary  Summary  `json:"user_summary"`
	Snapshot Snapshot `json:"snapshot"`
	Contract Contract `json:"contract"`
	CoreView CoreView `json:"core_view"`
}
