package slate

import (
	"strings"
	"time"
)

// Event keys are `<service>:<timestamp>:<kind>`. The timestamp is a
// fixed-width, zero-padded ISO-8601 UTC instant with microsecond resolution,
// so byte-lexicographic key order equals chronological order within one
// service. Two events from the same service in the same microsecond with the
// same kind collide; the later write wins. That is an accepted tradeoff.
const (
	eventTimeLayout = "2006-01-02T15:04:05.000000Z07:00"
	keySeparator    = ":"
)

// EventKey builds the composite key for an event. The separator must not
// appear inside service or kind, or field boundaries become ambiguous;
// offending inputs are rejected rather than escaped.
func EventKey(service string, ts time.Time, kind string) (string, error) {
	if err := validateKeyField("service", service); err != nil {
		return "", err
	}
	if err := validateKeyField("kind", kind); err != nil {
		return "", err
	}
	return service + keySeparator + FormatEventTime(ts) + keySeparator + kind, nil
}

// EventPrefix returns the shared key prefix of all events logged by service.
func EventPrefix(service string) string {
	return service + keySeparator
}

// FormatEventTime renders ts in the fixed-width key timestamp format.
func FormatEventTime(ts time.Time) string {
	return ts.UTC().Format(eventTimeLayout)
}

// ParseEventKey splits a composite event key back into its fields. The
// timestamp contains separator characters itself, so the service is
// everything before the first separator and the kind everything after the
// last.
func ParseEventKey(key string) (service string, ts time.Time, kind string, err error) {
	first := strings.Index(key, keySeparator)
	last := strings.LastIndex(key, keySeparator)
	if first < 0 || first == last {
		return "", time.Time{}, "", invalidInput("event key %q is not service:timestamp:kind", key)
	}

	service = key[:first]
	kind = key[last+1:]
	ts, err = time.Parse(eventTimeLayout, key[first+1:last])
	if err != nil {
		return "", time.Time{}, "", invalidInput("event key %q has malformed timestamp: %v", key, err)
	}
	if service == "" || kind == "" {
		return "", time.Time{}, "", invalidInput("event key %q has empty fields", key)
	}
	return service, ts, kind, nil
}

func validateKeyField(name, value string) error {
	if value == "" {
		return invalidInput("%s must not be empty", name)
	}
	if strings.Contains(value, keySeparator) {
		return invalidInput("%s %q must not contain %q", name, value, keySeparator)
	}
	return nil
}
