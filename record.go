package slate

import "github.com/zzstoatzz/slate/codec"

// Event is the stored envelope for one logged event. Events are immutable
// facts: they are appended and queried, never updated. The composite key is
// duplicated in ID so a decoded value is self-describing.
type Event struct {
	ID        string         `json:"id"`
	Service   string         `json:"service"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Entry is the stored envelope for one memory record.
type Entry struct {
	Key       string         `json:"key"`
	Value     any            `json:"value"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// A value that fails to decode is corruption, never absence: the engine
// returned bytes for the key, they just do not form a valid envelope.

func decodeEvent(c codec.Codec, key string, value []byte) (*Event, error) {
	var ev Event
	if err := c.Unmarshal(value, &ev); err != nil {
		return nil, corrupt(key, err)
	}
	return &ev, nil
}

func decodeEntry(c codec.Codec, key string, value []byte) (*Entry, error) {
	var e Entry
	if err := c.Unmarshal(value, &e); err != nil {
		return nil, corrupt(key, err)
	}
	return &e, nil
}
