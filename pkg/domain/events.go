package domain

import (
	"context"
	"fmt"
	"time"
)

// EventKind names an input of the state machine.
type EventKind string

const (
	EventStart       EventKind = "start"
	EventSubmitPrice EventKind = "submit_price"
	EventNoPrice     EventKind = "no_price"
	EventAskDiscount EventKind = "ask_discount"
	EventConfirm     EventKind = "confirm"
	EventGiveUp      EventKind = "giveup"
	EventTimeout     EventKind = "timeout"
	EventFinalize    EventKind = "finalize"
)

// Event is one input to the machine. Offer is only read for EventSubmitPrice.
type Event struct {
	Kind  EventKind
	Offer *int
}

// SubmitPrice builds a price event.
func SubmitPrice(price int) Event {
	return Event{Kind: EventSubmitPrice, Offer: Price(price)}
}

// Signals are the external events that can be sent by name (HTTP, MCP, CLI).
var signals = map[string]EventKind{
	string(EventConfirm):  EventConfirm,
	string(EventGiveUp):   EventGiveUp,
	string(EventTimeout):  EventTimeout,
	string(EventFinalize): EventFinalize,
}

// ParseSignal resolves a signal name into an event.
func ParseSignal(name string) (Event, error) {
	kind, ok := signals[name]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnhandledSignal, name)
	}
	return Event{Kind: kind}, nil
}

// TransitionEvent describes a phase change.
type TransitionEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
	Event       EventKind `json:"event"`
	From        Phase     `json:"from"`
	To          Phase     `json:"to"`
	UserOffer   *int      `json:"user_offer,omitempty"`
	AIOffer     int       `json:"ai_offer"`
	Concessions int       `json:"concessions"`
}

// ConcessionEvent describes one applied concession.
type ConcessionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Previous  int       `json:"previous"`
	Next      int       `json:"next"`
	UserOffer *int      `json:"user_offer,omitempty"`
	ListPrice int       `json:"list_price"`
	Count     int       `json:"count"`
	Jumped    bool      `json:"jumped"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnConcession func(context.Context, *ConcessionEvent)
}
