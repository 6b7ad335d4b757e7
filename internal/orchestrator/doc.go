// Package orchestrator runs the migrate flow: it checks run preconditions,
// resolves migration jobs, submits them concurrently and reduces their
// results to a single outcome reported once.
package orchestrator
