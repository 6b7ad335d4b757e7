// Package argo submits migration workflows through the argo CLI and reads
// back their terminal phase.
//
// Submission uses --wait, so the subsequent status read observes the final
// phase; there is no polling loop.
package argo
