/*
Package runner drives a negotiation from a line-oriented conversation.

It sits between a bargain.Negotiation and the outside world: each line read
through an IOHandler is sanitized, turned into a domain.Summary by
ParseSummary and fed to Negotiation.Turn. The resulting views are handed back
to the handler, which renders a reply.

# Key Components

  - Runner: the conversation loop. It maps interrupts to giveup and idle
    timeouts to timeout, and finalizes the negotiation once it closes.
  - IOHandler: decouples how turns are read and shown (text, JSON lines).
  - TextHandler: interactive terminal usage with an optional markdown renderer.
  - ComposeReply: a deterministic reply that quotes only ShownPrice.
  - GuardReply: rewrites prices in externally drafted replies to the allowed one.
  - SanitizeInput: strips escape sequences and controls and folds full-width
    characters before extraction.

# Usage

	n, _ := bargain.New(cfg)
	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithIdleTimeout(2*time.Minute),
	)
	if err := r.Run(ctx, n); err != nil {
		log.Fatal(err)
	}
*/
package runner
