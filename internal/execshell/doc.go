// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the immutable Environment overlay
// shared by every subprocess of a run so argo, helm, and git invocations stay
// testable.
package execshell
