// Package config holds the identity and endpoint bundle a Pylon session is
// bootstrapped from, plus the on-disk TOML document the CLI reads.
//
// Config is a plain value: a session copies it on construction and never
// observes later changes. Default returns fresh defaults on every call;
// there is no package-level mutable state.
package config
