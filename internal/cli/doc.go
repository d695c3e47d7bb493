// Package cli holds the pieces shared by the pylon, rendezvous and
// transit-relay binaries: fang execution with a signal-aware context, the
// error handler that prints usage for argument mistakes, and the
// Prometheus metrics listener of the two servers.
package cli
