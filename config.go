package hookscope

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultExtensions are the file extensions instrumented when a config does
// not name any.
var DefaultExtensions = []string{".go", ".risor"}

// ConfigError reports a malformed configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("hookscope: %s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Config is the recognised harness configuration.
type Config struct {
	// Roots are the directories searched for files to instrument.
	Roots []string `mapstructure:"roots" yaml:"roots" json:"roots"`

	// Extensions of instrumented files. Defaults to DefaultExtensions.
	Extensions []string `mapstructure:"extensions" yaml:"extensions" json:"extensions"`

	// Include and Exclude select the test files the harness applies to.
	Include []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`

	// IncludeImports and ExcludeImports select which discovered files are
	// instrumented.
	IncludeImports []string `mapstructure:"includeImports" yaml:"includeImports" json:"includeImports"`
	ExcludeImports []string `mapstructure:"excludeImports" yaml:"excludeImports" json:"excludeImports"`
}

var listFields = []string{"roots", "extensions", "include", "exclude", "includeImports", "excludeImports"}

// ParseConfig validates raw and decodes it into a Config. Every recognised
// field must be a list; roots is required and must not be empty.
func ParseConfig(raw map[string]any) (*Config, error) {
	for _, field := range listFields {
		v, ok := raw[field]
		if !ok {
			continue
		}
		if !isList(v) {
			return nil, &ConfigError{Field: field, Reason: fmt.Sprintf("must be a list, got %T", v)}
		}
	}

	roots, ok := raw["roots"]
	if !ok {
		return nil, &ConfigError{Field: "roots", Reason: "required"}
	}
	if reflect.ValueOf(roots).Len() == 0 {
		return nil, &ConfigError{Field: "roots", Reason: "must not be empty"}
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: false,
	})
	if err != nil {
		return nil, fmt.Errorf("hookscope: config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &ConfigError{Field: "config", Reason: err.Error()}
	}

	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultExtensions...)
	}
	return &cfg, nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}
