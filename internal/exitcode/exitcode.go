package exitcode

import (
	"os"
	"strings"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// DependencyError indicates a required external tool is missing or unusable
	DependencyError = 3

	// FetchError indicates the source repository could not be cloned or checked out
	FetchError = 4

	// PackagingError indicates the executable packaging step failed
	PackagingError = 5

	// HostIntegrationError indicates a host configuration step failed
	HostIntegrationError = 6

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	errMsg := strings.ToLower(err.Error())

	// Missing or broken external tools
	if strings.Contains(errMsg, "[deps-") {
		return DependencyError
	}

	// Clone/checkout failures
	if strings.Contains(errMsg, "[fetch-") {
		return FetchError
	}

	// Packager invocation failures
	if strings.Contains(errMsg, "[pack-") {
		return PackagingError
	}

	// Companion app, shortcut, and autostart failures
	if strings.Contains(errMsg, "[host-") {
		return HostIntegrationError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case DependencyError:
		return "Required external tool missing or unusable"
	case FetchError:
		return "Source fetch failed"
	case PackagingError:
		return "Executable packaging failed"
	case HostIntegrationError:
		return "Host integration failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
