package storage

import (
	"bytes"
	"encoding/json"
	"time"
)

// Layouts accepted when reading persisted timestamps. Naive layouts carry no
// zone and are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is an instant that tolerates unparsable persisted values: a
// value that matches none of the known layouts is kept verbatim and written
// back unchanged, so loading never fails because of a bad date.
type Timestamp struct {
	t       time.Time
	raw     string
	literal bool // raw is a JSON literal, not string text
}

// At wraps t, normalised to UTC.
func At(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// Time returns the instant. It is the zero time when the value is missing or
// could not be parsed.
func (ts Timestamp) Time() time.Time { return ts.t }

// Valid reports whether ts holds a parsed instant.
func (ts Timestamp) Valid() bool { return !ts.t.IsZero() }

// IsZero reports whether ts carries neither an instant nor raw text.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() && ts.raw == "" }

// Raw returns the original text of an unparsable value.
func (ts Timestamp) Raw() string { return ts.raw }

// Equal compares instants, or raw text when neither side parsed.
func (ts Timestamp) Equal(other Timestamp) bool {
	if ts.Valid() || other.Valid() {
		return ts.t.Equal(other.t)
	}
	return ts.raw == other.raw && ts.literal == other.literal
}

func (ts Timestamp) String() string {
	if ts.Valid() {
		return ts.t.Format(time.RFC3339Nano)
	}
	return ts.raw
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.Valid():
		return json.Marshal(ts.t.UTC().Format(time.RFC3339Nano))
	case ts.literal:
		return []byte(ts.raw), nil
	case ts.raw != "":
		return json.Marshal(ts.raw)
	default:
		return []byte("null"), nil
	}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// not a string at all; keep the literal so it survives a rewrite
		ts.raw = string(bytes.TrimSpace(data))
		ts.literal = true
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}

// ParseTimestamp parses s with the known layouts, falling back to a raw value.
func ParseTimestamp(s string) Timestamp {
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t: t.UTC()}
		}
	}
	return Timestamp{raw: s}
}
