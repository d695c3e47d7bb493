// Package app wires application dependencies for the CLI.
//
// It resolves the configuration from file, environment and flags, opens
// the log backend, and builds the rendezvous client and wormhole connector
// that every Session the CLI creates shares.
package app
