// Package defs reads the vendor's bundled media definition files.
//
// A defs file is a line-oriented text file identified by an `IDENT 3:0`
// line and versioned by a `$CARALLONVERSION major.minor.patch` line. Records
// start with a bare `$NAME` line and carry `$$KEY value` fields. File walks
// those records forward-only; ImageFile adds the CSV index and binary data
// sidecars that hold swatch images keyed by dcid.
//
// Every format violation is reported as an error wrapping ErrDefs so callers
// can tell malformed vendor data apart from storage failures.
package defs
