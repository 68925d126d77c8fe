package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that reads "2s", "00:20:00" or a bare number of
// seconds ("15") from TOML strings, env vars and flags.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Set and Type let Duration act as a pflag value.
func (d *Duration) Set(value string) error { return d.UnmarshalText([]byte(value)) }

func (d *Duration) Type() string { return "duration" }

// ParseDuration accepts Go duration syntax, hh:mm:ss clock syntax, or an
// integer number of seconds. Negative values are rejected.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("duration %q must not be negative", value)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if strings.Contains(value, ":") {
		return parseClock(value)
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", value)
	}
	return parsed, nil
}

func parseClock(value string) (time.Duration, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected hh:mm:ss", value)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q: expected hh:mm:ss", value)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}
