// Package codec centralizes record-envelope encoding.
//
// Slate intentionally treats codec selection as a breaking-change boundary:
// if you change codecs, persisted values created by older codecs may no
// longer decode.
package codec

import "fmt"

// Codec encodes/decodes record envelopes.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name. Callers that persist
// the codec name alongside their data can select the matching codec on load.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
