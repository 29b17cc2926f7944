/*
Package session hosts many splash controllers keyed by session ID.

It starts controllers through a factory, persists every published snapshot to a
store so finished sessions stay readable, and guards starts with a local
per-session mutex plus an optional distributed lock across replicas.
*/
package session
