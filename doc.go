/*
Package bargain is a deterministic negotiation engine for automated, multi-round
price bargaining between a seller-side agent and a counterparty.

It implements a finite state machine over the phases INIT, ANCHOR, WAIT_USER,
CONCESSION, HOLD, ACCEPT, REJECT and END. Prices are decided by the machine alone:
a concession calculator moves the automated offer towards the counterparty's price,
never rising and never falling below a configured floor. The natural-language side
of a conversation only reads the views the engine produces.

# Concept

Each input is one event (a price, a discount request, or a signal such as confirm or
giveup). The engine evaluates three mutually exclusive guards, accept, concede or
hold, and records the result in an append-only history. After every input two views
are available:

  - Snapshot: a lightweight record for tracing (phase, offers, concessions used).
  - Contract: the policy payload for the reply renderer. It carries the only price
    the renderer may show, the hard floor it must not cross and the allowed actions.

# Usage

	cfg := domain.DefaultConfig()
	n, err := bargain.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	n.Start(ctx)
	snap, _ := n.SubmitPrice(ctx, 440)
	fmt.Println(snap.Phase, snap.AIOffer) // WAIT_USER 470

	contract := n.Contract()
	fmt.Println(contract.Pricing.OfferToShow)

For conversational hosts, Turn takes an extracted intent and optional price and
returns the snapshot, contract and a compact core view in one call. Only a price
moves the machine; without one it stays on the anchor path. Confirming the standing
offer or asking for a step without a price are explicit calls (Confirm, AskDiscount).

# Hosting

The pkg/session package keeps live negotiations behind a per-session lock and writes
finished transcripts to a ports.Archive (memory, file, Redis or SQL). The HTTP and
MCP adapters under pkg/adapters expose the same operations to remote callers, and
cmd/bargain wires everything into a CLI.
*/
package bargain
