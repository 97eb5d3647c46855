package runner

import (
	"context"

	"github.com/aretw0/bargain/pkg/domain"
)

// IOHandler defines the strategy for talking to the counterparty.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the views produced by one turn.
	Output(ctx context.Context, res domain.TurnResult) error

	// Input reads the next utterance. It returns io.EOF when the
	// counterparty is gone and ctx.Err() when ctx ends first.
	Input(ctx context.Context) (string, error)

	// SystemOutput shows a message that is not part of the conversation.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms reply markdown before it is written.
// This allows TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
