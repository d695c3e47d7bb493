// Package commands defines the pylon CLI.
//
// # Commands
//
//   - send <file>       Print a code and send the file to whoever enters it
//   - receive [code]    Enter a code and receive the offered file
//   - version           Print build information
//
// # Implementation
//
// The root command loads the TOML config (if any), overlays PYLON_*
// environment variables and the global flags, and builds an app.Wire
// before any subcommand runs. Each transfer uses a fresh session from
// that wire. Codes, verifiers and results go to stdout; logs and the
// progress line go to stderr.
package commands
