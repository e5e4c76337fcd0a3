// Package writers persists a finished run.
//
// Layout:
//   • Every output file is a named artifact in a registry (registry.go).
//   • WriteSet renders all artifacts to temporary files and renames them
//     only when every one succeeded, so the arrays always form a matched set.
//   • Skipped records stream to a JSONL log while the batch runs.
//   • An optional S3 sink copies the finished set to object storage.
package writers
