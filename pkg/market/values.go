package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Flag is a boolean that accepts JSON booleans and their string spellings
// ("true", "TRUE", "False", ...). null and "" decode as false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		*f = false
		return nil
	}

	s, err := strconv.Unquote(raw)
	if err != nil {
		// Not a string: a bare true/false literal
		s = raw
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		*f = true
	case "false", "0", "":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value %s", raw)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Price is a non-negative amount. It decodes from numbers or numeric strings
// and encodes as a string, which is how the API stores it.
type Price float64

// ParsePrice parses a decimal price string.
func ParsePrice(s string) (Price, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid price %q: must not be negative", s)
	}
	return Price(v), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		*p = 0
		return nil
	}

	s := raw
	if unquoted, err := strconv.Unquote(raw); err == nil {
		s = unquoted
		if strings.TrimSpace(s) == "" {
			*p = 0
			return nil
		}
	}

	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// String returns the shortest decimal form, e.g. "19.99" or "5".
func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// Display returns the price as shown to users, e.g. "$19.99".
func (p Price) Display() string {
	return "$" + p.String()
}

// WireTimeLayout is the timestamp layout the client sends: second precision, no zone.
const WireTimeLayout = "2006-01-02T15:04:05"

// timestampLayouts are tried in order when decoding.
var timestampLayouts = []string{
	time.RFC3339Nano,
	WireTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp wraps time.Time with lenient decoding. Empty strings, null and
// "N/A" decode as the zero time.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// ParseTimestamp parses any of the layouts the API is known to emit.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		*t = Timestamp{}
		return nil
	}

	s, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: expected a string", raw)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.UTC().Format(WireTimeLayout))
}

// Date formats the timestamp as a short date, or "-" when unset.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
