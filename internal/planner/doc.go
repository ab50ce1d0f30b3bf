// Package planner handles the planning phase of export operations.
//
// The planner turns a caller-selected set of inputs into concrete "write these
// sources to this output path" entries. It detects path collisions between
// inputs, applies the caller's resolutions, substitutes detected roots and
// picks non-colliding output names before any write begins.
//
// Key responsibilities:
//   - Analyze inputs for relative paths contributed by more than one source
//   - Default each conflict to the last-scanned source, surfaced for override
//   - Build one plan entry per input (individual mode) or one merged entry
//   - Generate unique output names in the destination directory
package planner
