/*
Package ports defines the driven ports (interfaces) of the splash controller.

These interfaces decouple the controller from time, randomness, storage and the
outside world, so tests can drive it deterministically and hosts can plug in
their own backends.

# Key Interfaces

  - Clock / Timer: Schedules delayed callbacks (system or manual clock).
  - RandomSource: Supplies samples for delay ramping and fault injection.
  - SnapshotStore: Persists controller snapshots per session.
  - DistributedLocker: Coordinates session starts across replicas.
  - Probe: Startup connectivity check against the hosted backend.
  - Controller: The surface a session manager needs from a splash controller.
*/
package ports
