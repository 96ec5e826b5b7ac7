// Package config loads, normalizes, and validates the TOML configuration
// shared by the subgen daemon and CLI.
package config
