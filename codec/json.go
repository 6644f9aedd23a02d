package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Record envelopes are maps of JSON-compatible values, which JSON encodes
// stably and portably. The wire shapes stored by the engine are exactly the
// shapes returned to remote callers, so a self-describing text codec keeps
// stored values inspectable with standard tooling.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// NOTE: This affects newly-written values only. Values persisted under a
// different codec will fail to decode.
var Default Codec = JSON{}
