// Package pathutils resolves user-supplied filesystem paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// WorkingDirectoryProvider resolves the process working directory.
type WorkingDirectoryProvider func() (string, error)

// Resolver expands home shortcuts and anchors relative paths.
type Resolver struct {
	homeDirectoryProvider    HomeDirectoryProvider
	workingDirectoryProvider WorkingDirectoryProvider
	homeDirectory            string
	homeDirectoryError       error
	homeDirectoryGuard       sync.Once
}

// NewResolver constructs a Resolver backed by the operating system.
func NewResolver() *Resolver {
	return NewResolverWithProviders(os.UserHomeDir, os.Getwd)
}

// NewResolverWithProviders constructs a Resolver with custom lookups; nil providers fall back to the operating system.
func NewResolverWithProviders(homeProvider HomeDirectoryProvider, workingDirectoryProvider WorkingDirectoryProvider) *Resolver {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if workingDirectoryProvider == nil {
		workingDirectoryProvider = os.Getwd
	}
	return &Resolver{homeDirectoryProvider: homeProvider, workingDirectoryProvider: workingDirectoryProvider}
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Paths naming another user ("~bob") are returned unchanged.
func (resolver *Resolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}

	tildeWithSeparator := tildeSymbolConstant + string(os.PathSeparator)
	for _, prefix := range []string{tildeForwardSlashPrefixConstant, tildeWithSeparator} {
		if strings.HasPrefix(candidatePath, prefix) {
			return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, prefix))
		}
	}

	return candidatePath
}

// Absolute expands home shortcuts and anchors relative paths at the working directory.
// An empty candidate resolves to the working directory itself.
func (resolver *Resolver) Absolute(candidatePath string) (string, error) {
	expandedPath := resolver.ExpandHome(strings.TrimSpace(candidatePath))
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath), nil
	}

	workingDirectory, workingDirectoryError := resolver.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return "", workingDirectoryError
	}
	return filepath.Join(workingDirectory, expandedPath), nil
}

func (resolver *Resolver) resolveHomeDirectory() string {
	resolver.homeDirectoryGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
