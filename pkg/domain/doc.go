/*
Package domain contains the core domain models of the bargain engine.

It defines the negotiation phases, the immutable session Configuration, the mutable
Session State and the read-only views (Snapshot, Contract, CoreView) handed to the
reply renderer. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Config: Business guardrails of one negotiation (list price, floors, pacing).
  - State: Running values of a session (phase, current offer, concessions, history).
  - Event: An input to the state machine (a price, a signal, finalize).
  - Contract: The policy payload the reply renderer must obey.
  - Transcript: The archived record of a finished negotiation.
*/
package domain
