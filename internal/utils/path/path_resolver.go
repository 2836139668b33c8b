package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant                 = "~"
	tildeForwardSlashPrefixConstant     = "~/"
	pathResolutionErrorTemplateConstant = "unable to resolve path %q: %w"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// WorkingDirectoryProvider resolves the directory relative paths are anchored to.
type WorkingDirectoryProvider func() (string, error)

// PathResolver turns user supplied paths such as ~/src or ../checkouts into clean absolute paths.
type PathResolver struct {
	homeDirectoryProvider    HomeDirectoryProvider
	workingDirectoryProvider WorkingDirectoryProvider
	homeDirectory            string
	homeDirectoryError       error
	initializationGuard      sync.Once
}

// NewPathResolver constructs a PathResolver using the operating system lookups.
func NewPathResolver() *PathResolver {
	return NewPathResolverWithProviders(os.UserHomeDir, os.Getwd)
}

// NewPathResolverWithProviders constructs a PathResolver with custom providers.
func NewPathResolverWithProviders(homeProvider HomeDirectoryProvider, workingDirectoryProvider WorkingDirectoryProvider) *PathResolver {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if workingDirectoryProvider == nil {
		workingDirectoryProvider = os.Getwd
	}
	return &PathResolver{homeDirectoryProvider: homeProvider, workingDirectoryProvider: workingDirectoryProvider}
}

// ExpandHome resolves a leading tilde to the user's home directory.
func (resolver *PathResolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := resolver.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	}
	return candidatePath
}

// Resolve trims whitespace, expands the home directory, and anchors relative paths to the
// working directory. An empty input resolves to the working directory itself.
func (resolver *PathResolver) Resolve(candidatePath string) (string, error) {
	expandedPath := resolver.ExpandHome(strings.TrimSpace(candidatePath))
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath), nil
	}

	workingDirectory, workingDirectoryError := resolver.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(pathResolutionErrorTemplateConstant, candidatePath, workingDirectoryError)
	}
	return filepath.Join(workingDirectory, expandedPath), nil
}

func (resolver *PathResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
