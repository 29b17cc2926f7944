// Package clock provides ports.Clock implementations: the system clock for
// production and a manual clock that tests advance explicitly.
package clock
