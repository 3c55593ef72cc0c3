// Package manifest builds and parses image list manifests.
//
// A manifest is plain text with one "<path> <label>" record per line. The
// builder walks root/<class>/<image>, derives a class vocabulary from the
// sorted subdirectory names (or takes an authoritative one from the caller),
// and writes one record per image whose extension is accepted. Records are
// grouped by class in vocabulary order.
//
// Paths are written verbatim, so a path containing a space cannot round-trip
// through readers that split on whitespace. Parse takes the last field as the
// label, which tolerates spaces in the path portion.
package manifest
