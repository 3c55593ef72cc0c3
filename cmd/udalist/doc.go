// Package main hosts the udalist CLI entrypoint and command graph.
//
// The Cobra command tree resolves the configuration file once, builds the
// logger, and hands off to the internal packages: build and check drive the
// generate pipeline, inspect and manifest read what was written, doctor runs
// preflight checks, and history browses recorded runs.
package main
