// Package log provides the logging backend shared by the Pylon binaries,
// built on go-logging.
//
// A Backend owns one output (stdout, a file, or nothing) and hands out
// per-module loggers. Components take a *logging.Logger and never build
// their own backend, so the CLI decides where everything goes.
package log
