// Package preflight provides readiness checks for the directories and state
// files udalist depends on.
//
// The build command runs RunAll before generating and stops on a failed
// required check. "udalist doctor" renders every result. Missing domain or
// split directories are reported as optional failures because the builder
// skips them without error.
package preflight
