/*
Package ports defines the driven ports (interfaces) of the negotiation host.

These interfaces decouple session hosting from external implementations, allowing
finished negotiations to be archived in various storage backends and live sessions
to be coordinated across replicas.

# Key Interfaces

  - Archive: Persists the transcript of a finished negotiation for audit.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
