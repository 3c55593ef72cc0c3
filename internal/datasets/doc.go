// Package datasets binds generated manifests to fixed class vocabularies.
//
// A Dataset declares its domains, the splits each domain supports and the
// class list every manifest is interpreted against. Task and split names are
// validated before any file is touched.
package datasets
