// Package classcheck compares the class vocabularies of a source and a target
// domain.
//
// Vocabularies must match as ordered sequences because label indices come
// from position. An empty side (typically a missing directory) skips the
// comparison rather than producing a spurious mismatch.
package classcheck
