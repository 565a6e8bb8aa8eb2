// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     version
// Description: Central version information for the CLI and its components
// Created:     2026-10-12
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for kontrakt components
const (
	// Platform version
	Platform = "0.3.0"

	// Component versions
	Console   = "0.3.0"
	Artifacts = "0.2.0"
	Bundle    = "1.0.0" // child process network bundle format
)

// Build information, set via -ldflags
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "console":
		return Console
	case "artifacts":
		return Artifacts
	case "bundle":
		return Bundle
	default:
		return Platform
	}
}

// Info returns a multi-line version report for program
func Info(program string) string {
	return fmt.Sprintf("%s v%s\n  Git Commit: %s\n  Build Date: %s\n  Go Version: %s\n  OS/Arch:    %s/%s\n",
		program, Platform, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
