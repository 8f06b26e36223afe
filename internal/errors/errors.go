package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Dependency errors (DEPS-001 to DEPS-099)
	ErrCodeToolMissing        ErrorCode = "DEPS-001"
	ErrCodeToolInstallFailed  ErrorCode = "DEPS-002"
	ErrCodeRuntimeWrongPin    ErrorCode = "DEPS-003"
	ErrCodeInstallerDownload  ErrorCode = "DEPS-004"
	ErrCodeProbeExhausted     ErrorCode = "DEPS-005"
	ErrCodeUninstallFailed    ErrorCode = "DEPS-006"

	// Fetch errors (FETCH-001 to FETCH-099)
	ErrCodeCloneFailed    ErrorCode = "FETCH-001"
	ErrCodeCheckoutFailed ErrorCode = "FETCH-002"

	// Frontend errors (FRONTEND-001 to FRONTEND-099)
	ErrCodeFrontendMissing     ErrorCode = "FRONTEND-001"
	ErrCodeFrontendInstall     ErrorCode = "FRONTEND-002"
	ErrCodeFrontendBuildFailed ErrorCode = "FRONTEND-003"

	// Staging errors (STAGE-001 to STAGE-099)
	ErrCodeBackendMissing      ErrorCode = "STAGE-001"
	ErrCodeLoaderPkgMissing    ErrorCode = "STAGE-002"
	ErrCodeRequirementsInstall ErrorCode = "STAGE-003"

	// Packaging errors (PACK-001 to PACK-099)
	ErrCodePackagerFailed ErrorCode = "PACK-001"

	// Deployment errors (DEPLOY-001 to DEPLOY-099)
	ErrCodeExecutableMissing ErrorCode = "DEPLOY-001"
	ErrCodeMarkerMissing     ErrorCode = "DEPLOY-002"

	// Host integration errors (HOST-001 to HOST-099)
	ErrCodeCompanionNotFound ErrorCode = "HOST-001"
	ErrCodeFlagFileFailed    ErrorCode = "HOST-002"
	ErrCodeShortcutFailed    ErrorCode = "HOST-003"
	ErrCodeAutostartFailed   ErrorCode = "HOST-004"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeCopyFailed      ErrorCode = "IO-005"
)

// BuildError represents an enhanced error with code, suggestions, and documentation
type BuildError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// New creates a new BuildError
func New(code ErrorCode, message string) *BuildError {
	return &BuildError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new BuildError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *BuildError {
	return &BuildError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *BuildError) WithSuggestion(suggestion string) *BuildError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *BuildError) WithSuggestions(suggestions ...string) *BuildError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *BuildError) WithDocs(url string) *BuildError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewToolMissingError creates an error for a required tool that is entirely absent
func NewToolMissingError(tool string) *BuildError {
	return New(ErrCodeToolMissing, fmt.Sprintf("required tool not found: %s", tool)).
		WithSuggestion(fmt.Sprintf("Install %s and make sure it is on your PATH", tool)).
		WithSuggestion(fmt.Sprintf("Run '%s --version' in a fresh terminal to verify", tool))
}

// NewRuntimePinError creates an error for a runtime that does not match the pinned version
func NewRuntimePinError(tool, want, got string) *BuildError {
	return New(ErrCodeRuntimeWrongPin, fmt.Sprintf("%s %s found, but %s is required", tool, got, want)).
		WithSuggestion(fmt.Sprintf("Install %s %s, or let the installer replace the current version", tool, want))
}

// NewCloneFailedError creates a repository clone error
func NewCloneFailedError(repo string, cause error) *BuildError {
	return Wrap(ErrCodeCloneFailed, fmt.Sprintf("failed to clone repository: %s", repo), cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the repository URL is reachable")
}

// NewCheckoutFailedError creates a reference checkout error
func NewCheckoutFailedError(ref string, cause error) *BuildError {
	return Wrap(ErrCodeCheckoutFailed, fmt.Sprintf("failed to check out release: %s", ref), cause).
		WithSuggestion("Verify the release tag or branch exists").
		WithSuggestion("Use 'main' to build the latest sources")
}

// NewFrontendMissingError creates an error for an absent frontend subtree
func NewFrontendMissingError(path string) *BuildError {
	return New(ErrCodeFrontendMissing, fmt.Sprintf("frontend directory not found: %s", path)).
		WithSuggestion("The fetched release may predate the web frontend; pick a newer release")
}

// NewBackendMissingError creates an error for an absent backend subtree
func NewBackendMissingError(path string) *BuildError {
	return New(ErrCodeBackendMissing, fmt.Sprintf("backend directory not found: %s", path)).
		WithSuggestion("The fetched release does not contain a backend tree; pick a newer release")
}

// NewPackagerFailedError creates a packaging invocation error
func NewPackagerFailedError(variant string, cause error) *BuildError {
	return Wrap(ErrCodePackagerFailed, fmt.Sprintf("packaging the %s executable failed", variant), cause).
		WithSuggestion("Run 'pyinstaller --version' to verify the packager installation").
		WithSuggestion("Inspect the captured packager output above for the root cause")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *BuildError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}
