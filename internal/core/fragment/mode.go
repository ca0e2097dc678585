// Package fragment converts configuration records into typed Kubernetes fragments.
//
// Converters are pure: they read a record, return a value from k8s.io/api and
// never touch the resource model. A record that is missing a required field is
// reported as a domain.ConfigurationError naming the field.
package fragment

import (
	"fmt"
	"strconv"
	"strings"

	"kgen/internal/core/domain"
)

// ParseMode parses a file mode string. A leading zero selects octal, anything
// else is decimal, so "0600" is 384 and "600" is 600.
func ParseMode(mode string) (int32, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return 0, fmt.Errorf("empty file mode")
	}
	base := 10
	if strings.HasPrefix(mode, "0") && len(mode) > 1 {
		base = 8
	}
	v, err := strconv.ParseInt(mode, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode '%s'", mode)
	}
	if v < 0 {
		return 0, fmt.Errorf("file mode '%s' is negative", mode)
	}
	return int32(v), nil
}

// mode parses mode for field, falling back to the default file mode when unset.
func mode(field, value string) (int32, error) {
	if value == "" {
		value = domain.DefaultFileMode
	}
	m, err := ParseMode(value)
	if err != nil {
		return 0, domain.NewConfigurationError(field, "%v", err)
	}
	return m, nil
}

func optionalMode(field, value string) (*int32, error) {
	if value == "" {
		return nil, nil
	}
	m, err := mode(field, value)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
