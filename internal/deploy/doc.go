// Package deploy upgrades the invoking repository's Helm release and waits for it to roll out.
package deploy
