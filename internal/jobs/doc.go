// Package jobs persists the subtitle job queue in SQLite and defines the
// job lifecycle shared by the engine, daemon API, and CLI.
package jobs
