// Package utils holds the configuration loader, logger factory and command
// context helpers shared by every argomigrate command.
package utils
