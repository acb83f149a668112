package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidConfig is wrapped by every ConfigurationError.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ConfigurationError names one offending configuration field.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s %s (got %#v)", e.Field, e.Reason, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate reports every invalid field of c. The returned error is a
// *multierror.Error whose entries are *ConfigurationError.
func Validate(c Config) error {
	var result *multierror.Error

	if c.Height < 0 {
		result = multierror.Append(result, &ConfigurationError{
			Field: "height", Value: c.Height, Reason: "must be non-negative",
		})
	}
	if strings.TrimSpace(c.ColorFromLeft) == "" {
		result = multierror.Append(result, &ConfigurationError{
			Field: "colorFromLeft", Value: c.ColorFromLeft, Reason: "must be a non-empty color",
		})
	}
	if strings.TrimSpace(c.ColorFromRight) == "" {
		result = multierror.Append(result, &ConfigurationError{
			Field: "colorFromRight", Value: c.ColorFromRight, Reason: "must be a non-empty color",
		})
	}

	return result.ErrorOrNil()
}

// InvalidFields lists the field names carried by a Validate error.
func InvalidFields(err error) []string {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) {
			return []string{cerr.Field}
		}
		return nil
	}
	fields := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		var cerr *ConfigurationError
		if errors.As(e, &cerr) {
			fields = append(fields, cerr.Field)
		}
	}
	return fields
}
