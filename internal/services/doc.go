// Package services provides shared error classification and context
// propagation helpers used by the pipeline components and the job engine.
//
// Errors produced by collaborators are tagged with one of the exported
// sentinel markers so the engine can decide how a failure is surfaced on
// the job record. Context helpers carry job, stage, and request identity
// through the pipeline call chain for logging.
package services
