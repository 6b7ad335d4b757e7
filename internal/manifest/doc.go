// Package manifest reads migration definitions from a JSON project file.
//
// The entries live under a configurable jq path (".peachjar.migrations" by
// default). A missing path yields no entries; a malformed entry rejects the
// whole document.
package manifest
