package reducer

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes composition errors.
type ConfigErrorCode string

const (
	// ErrCodeDuplicateHandler indicates two handlers were given for one tag.
	ErrCodeDuplicateHandler ConfigErrorCode = "DUPLICATE_HANDLER"
)

// DuplicateHandlerMessage is the message carried by duplicate-handler errors.
const DuplicateHandlerMessage = "Each action can only have one handler!"

// ConfigError is returned by Create when the handlers cannot be composed.
// It signals a programming mistake, not a runtime condition.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Tag is the offending action tag.
	Tag string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s (tag=%q)", e.Code, e.Message, e.Tag)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDuplicateHandlerError creates the ConfigError for a repeated tag.
func NewDuplicateHandlerError(tag string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDuplicateHandler,
		Message: DuplicateHandlerMessage,
		Tag:     tag,
	}
}

// IsDuplicateHandlerError returns true if err is, or wraps, a duplicate
// handler error.
func IsDuplicateHandlerError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeDuplicateHandler
	}
	return false
}
