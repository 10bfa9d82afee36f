// Package errors defines stable error codes and the OrcError type used at
// CLI and tool boundaries.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IndexMissing indicates the project has not been indexed yet
	IndexMissing ErrorCode = "INDEX_MISSING"
	// IndexStale indicates the index no longer matches the working tree
	IndexStale ErrorCode = "INDEX_STALE"
	// IndexLocked indicates another process holds the index lock
	IndexLocked ErrorCode = "INDEX_LOCKED"
	// ParseFailed indicates a source file could not be parsed
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ConfigInvalid indicates the configuration file is malformed
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// PatternInvalid indicates an ignore or search pattern is malformed
	PatternInvalid ErrorCode = "PATTERN_INVALID"
	// ProviderUnavailable indicates no AI provider is configured
	ProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	// ProviderFailed indicates the AI provider call failed after retries
	ProviderFailed ErrorCode = "PROVIDER_FAILED"
	// NotInitialized indicates the .orc directory does not exist
	NotInitialized ErrorCode = "NOT_INITIALIZED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests editing the configuration file
	EditConfig FixActionType = "edit-config"
	// SetEnv suggests setting an environment variable
	SetEnv FixActionType = "set-env"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	EnvVar      string        `json:"envVar,omitempty"`
}

// OrcError represents an ORC error with code, message, and suggestions
type OrcError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new OrcError
func New(code ErrorCode, message string, cause error) *OrcError {
	return &OrcError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *OrcError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *OrcError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *OrcError) WithDetails(details interface{}) *OrcError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	IndexMissing: {
		{
			Type:        RunCommand,
			Command:     "orc index",
			Safe:        true,
			Description: "Build the code index for this project",
		},
	},
	IndexStale: {
		{
			Type:        RunCommand,
			Command:     "orc index --force",
			Safe:        true,
			Description: "Rebuild the index from the current working tree",
		},
	},
	IndexLocked: {
		{
			Type:        RunCommand,
			Command:     "orc status",
			Safe:        true,
			Description: "Check whether another orc command is still running",
		},
	},
	NotInitialized: {
		{
			Type:        RunCommand,
			Command:     "orc init",
			Safe:        true,
			Description: "Initialize the .orc project directory",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditConfig,
			Description: "Fix the reported field in .orc/config.yaml, or run 'orc config reset'",
		},
	},
	ProviderUnavailable: {
		{
			Type:        SetEnv,
			EnvVar:      "ORC_API_KEY",
			Description: "Set the API key for the configured provider",
		},
		{
			Type:        RunCommand,
			Command:     "orc config set ai.provider ollama",
			Safe:        true,
			Description: "Switch to a local provider that needs no API key",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
