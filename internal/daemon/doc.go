// Package daemon runs the background service: it enforces single-instance
// execution, owns the job engine lifecycle, and serves the HTTP API used by
// the CLI.
package daemon
