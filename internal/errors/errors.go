package errors

import (
	"fmt"
	"strings"

	"github.com/secretsproxy/secrets-cli/internal/proxy"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// ProxyError is raised when a command cannot complete a secrets proxy
// operation. It carries either the structured error the proxy returned
// (application failure) or the wrapped transport cause (I/O failure), plus
// the name of the originating command.
type ProxyError struct {
	Command string
	Status  int
	Err     *proxy.ErrorRes
	Cause   error
}

func (e *ProxyError) Error() string {
	var msg string
	switch {
	case e.Cause != nil:
		msg = fmt.Sprintf("Command '%s' could not reach the secrets proxy: %v", e.Command, e.Cause)
	case e.Err != nil && e.Err.Message != "":
		msg = fmt.Sprintf("Command '%s' failed (status %d): %s", e.Command, e.Status, e.Err.Message)
	default:
		msg = fmt.Sprintf("Command '%s' failed with status %d and no error details from the proxy", e.Command, e.Status)
	}

	if s := e.suggestion(); s != "" {
		msg += "\n  💡 Try: " + s
	}
	return msg
}

func (e *ProxyError) Unwrap() error {
	return e.Cause
}

func (e *ProxyError) suggestion() string {
	if e.Cause != nil {
		return transportSuggestion(e.Cause)
	}
	return statusSuggestion(e.Status)
}

// statusSuggestion returns a hint for common proxy status codes
func statusSuggestion(status int) string {
	switch {
	case status == 401:
		return "Run 'secrets login' to obtain a fresh token"
	case status == 403:
		return "Verify that your user has access to the application group"
	case status == 404:
		return "Check the application group and secret names"
	case status == 409:
		return "The resource already exists. Use 'secrets update' instead of 'secrets add'"
	case status >= 500:
		return "The secrets proxy reported a server error. Wait a moment and try again"
	}
	return ""
}

// transportSuggestion returns a hint based on the transport failure text
func transportSuggestion(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return "The request timed out. Check your network connection or raise the configured timeout"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check the proxy URL in your configuration"
	}
	if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509") {
		return "TLS verification failed. Check the trust store in your configuration"
	}
	return ""
}
