// Package migrations resolves the set of migration jobs for a run from
// explicit input slots or, when none are given, from the project manifest.
package migrations
