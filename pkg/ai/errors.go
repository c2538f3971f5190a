package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput indicates operation parameters were rejected before dispatch.
var ErrInvalidInput = errors.New("invalid input")

// ParseError reports provider text that is not a parseable JSON document.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return "parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a JSON document whose shape does not match the operation.
// Field is the path of the first failing field.
type SchemaError struct {
	Op     OpType
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	field := e.Field
	if field == "" {
		field = "<root>"
	}
	return fmt.Sprintf("schema error: %s: field %s: %s", e.Op, field, e.Reason)
}

// TransportError wraps a failed or timed out provider call.
type TransportError struct {
	ProviderID string
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider %s: timeout: %v", e.ProviderID, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.ProviderID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConfigurationError is fatal at startup.
type ConfigurationError struct {
	Reason  string
	Missing []OpType
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return "ai configuration: " + e.Reason
	}
	names := make([]string, 0, len(e.Missing))
	for _, op := range e.Missing {
		names = append(names, string(op))
	}
	return fmt.Sprintf("ai configuration: %s: %s", e.Reason, strings.Join(names, ", "))
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
