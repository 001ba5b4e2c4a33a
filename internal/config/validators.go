package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/cristianoliveira/appfeed/internal/colors"
)

// Validator validates and normalizes a configuration value.
// Returns the normalized value and an error if validation fails.
type Validator func(key, value, defaultValue string) (normalized string, err error)

type validatorRegistry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

var registry = &validatorRegistry{
	validators: make(map[string]Validator),
}

// RegisterValidator registers a validator for a configuration key.
// Panics if a validator is already registered for the key.
func RegisterValidator(key string, validator Validator) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.validators[key]; exists {
		panic(fmt.Sprintf("validator already registered for key: %s", key))
	}
	registry.validators[key] = validator
}

func getValidator(key string) Validator {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.validators[key]
}

// PositiveIntValidator returns a validator that ensures a value is a positive integer.
func PositiveIntValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			colors.Warning(fmt.Sprintf("invalid %s value '%s': must be a positive integer, using default: %s", key, value, defaultValue))
			return defaultValue, nil
		}
		return value, nil
	}
}

// BoundedIntValidator is PositiveIntValidator with an inclusive upper bound.
func BoundedIntValidator(max int) Validator {
	positive := PositiveIntValidator()
	return func(key, value, defaultValue string) (string, error) {
		normalized, err := positive(key, value, defaultValue)
		if err != nil {
			return normalized, err
		}
		if n, _ := strconv.Atoi(normalized); n > max {
			colors.Warning(fmt.Sprintf("invalid %s value '%s': must be at most %d, using %d", key, value, max, max))
			return strconv.Itoa(max), nil
		}
		return normalized, nil
	}
}

// PositiveFloatValidator returns a validator that ensures a value is a positive number.
func PositiveFloatValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			colors.Warning(fmt.Sprintf("invalid %s value '%s': must be a positive number, using default: %s", key, value, defaultValue))
			return defaultValue, nil
		}
		return value, nil
	}
}

// EnumValidator returns a validator that ensures a value is one of the allowed enum values.
func EnumValidator(allowed map[string]bool) Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		valueLower := strings.ToLower(value)
		if !allowed[valueLower] {
			colors.Warning(fmt.Sprintf("invalid %s value '%s': must be one of: %s; using default: %s", key, value, allowedValues(allowed), defaultValue))
			return defaultValue, nil
		}
		return valueLower, nil
	}
}

// BoolValidator returns a validator that normalizes and validates boolean values.
func BoolValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		normalized := normalizeBool(value)
		if normalized != "true" && normalized != "false" {
			colors.Warning(fmt.Sprintf("invalid boolean value for %s: '%s', must be one of: 1, true, yes, on, 0, false, no, off; using default: %s", key, value, defaultValue))
			return defaultValue, nil
		}
		return normalized, nil
	}
}

// ScheduleValidator accepts standard five-field cron expressions and
// descriptors such as @daily or @every 1h.
func ScheduleValidator() Validator {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		if _, err := parser.Parse(value); err != nil {
			colors.Warning(fmt.Sprintf("invalid schedule for %s: '%s': %v; using default: %s", key, value, err, defaultValue))
			return defaultValue, nil
		}
		return value, nil
	}
}

// URLValidator accepts empty values and absolute http(s) URLs. Trailing
// slashes are trimmed.
func URLValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return "", nil
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			colors.Warning(fmt.Sprintf("invalid URL for %s: '%s', must be an absolute http(s) URL; using default: %s", key, value, defaultValue))
			return defaultValue, nil
		}
		return strings.TrimRight(value, "/"), nil
	}
}

func initValidators() {
	positiveInt := PositiveIntValidator()
	RegisterValidator("page_size", BoundedIntValidator(100))
	RegisterValidator("jwt_ttl_hours", positiveInt)
	RegisterValidator("rate_limit_burst", positiveInt)
	RegisterValidator("cleanup_days", positiveInt)
	RegisterValidator("logging_max_files", positiveInt)

	RegisterValidator("rate_limit_rps", PositiveFloatValidator())
	RegisterValidator("cleanup_schedule", ScheduleValidator())
	RegisterValidator("server_url", URLValidator())

	RegisterValidator("list_format", EnumValidator(map[string]bool{"simple": true, "table": true, "json": true, "yaml": true}))
	RegisterValidator("logging_level", EnumValidator(map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}))

	boolValidator := BoolValidator()
	RegisterValidator("logging_enabled", boolValidator)
	RegisterValidator("debug", boolValidator)
	RegisterValidator("quiet", boolValidator)
}

// normalizeBool converts various boolean representations to "true"/"false".
func normalizeBool(val string) string {
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return "true"
	case "0", "false", "no", "off":
		return "false"
	default:
		return val
	}
}

func allowedValues(allowed map[string]bool) string {
	values := make([]string, 0, len(allowed))
	for k := range allowed {
		values = append(values, k)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
