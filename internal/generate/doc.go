// Package generate drives a full manifest generation run.
//
// Run locks the output directory, builds one manifest per (domain, split),
// compares the source and target vocabularies once, and records the run in
// the history database. Missing domain or split directories are skipped
// with a warning and never fail the run.
package generate
