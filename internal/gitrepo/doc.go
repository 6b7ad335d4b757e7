// Package gitrepo parses git remote locations and reads commit information
// from a local checkout through the shell executor.
package gitrepo
