package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// OrderingError reports constraints between mutation operations that cannot be satisfied.
// Tags lists the operation tags involved, in cycle order.
type OrderingError struct {
	Tags []string
	Err  error
}

func (e *OrderingError) Error() string {
	if len(e.Tags) == 0 {
		return fmt.Sprintf("ordering: %v", e.Err)
	}
	return fmt.Sprintf("ordering: %v [%s]", e.Err, strings.Join(e.Tags, " -> "))
}

func (e *OrderingError) Unwrap() error { return e.Err }

// TargetResolutionError reports that no deployment target could be selected.
type TargetResolutionError struct {
	Name string
	Err  error
}

func (e *TargetResolutionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("deployment target: %v", e.Err)
	}
	return fmt.Sprintf("deployment target '%s': %v", e.Name, e.Err)
}

func (e *TargetResolutionError) Unwrap() error { return e.Err }

// ApplicationError reports a decorator whose contract is violated by the resource state.
type ApplicationError struct {
	Operation string
	Resource  string
	Err       error
}

func (e *ApplicationError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *ApplicationError) Unwrap() error { return e.Err }

func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsOrderingError(err error) bool {
	var oe *OrderingError
	return errors.As(err, &oe)
}

func IsTargetResolutionError(err error) bool {
	var te *TargetResolutionError
	return errors.As(err, &te)
}

func IsApplicationError(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}

func configErrorf(field, format string, a ...any) error {
	return &ConfigurationError{Field: field, Err: fmt.Errorf(format, a...)}
}

// NewConfigurationError builds a ConfigurationError for field.
func NewConfigurationError(field, format string, a ...any) error {
	return configErrorf(field, format, a...)
}
