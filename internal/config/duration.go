package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "15m" or "1h30m" parse
// directly.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or a bare number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs int64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration value at line %d", value.Line)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
