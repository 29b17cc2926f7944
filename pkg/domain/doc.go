/*
Package domain contains the core models of the splash controller.

It defines the loading steps, the immutable controller snapshot, the step catalog
(the ordered registry of loading stages), the timing profile that drives the
scheduler and the pure progress derivation consumed by presentation layers.
This package is kept free of I/O and timers.

# Key Entities

  - Catalog: The fixed, ordered list of step descriptors.
  - Step: A loading stage with its completed/errored flags.
  - Snapshot: An immutable view of the controller (steps, index, visibility, message).
  - Progress: Derived fill ratio and visibility for rendering.
  - TransientStepFault: The single, always-recoverable fault kind.
*/
package domain
