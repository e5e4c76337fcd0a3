// Package pipeline runs the per-structure extraction chain
// (read → align → project → build) for every dataset record on a pool of
// workers, and returns the kept records in input order.
//
// The only contract to implement is Extractor. This keeps the pipeline
// swappable and testable.
package pipeline
