package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ColorRef is a color-ish field that appears in two historical shapes:
// a bare string ("Navy") or an object with a name and hex value.
// Stored records contain both, so both must round-trip unchanged.
type ColorRef struct {
	Name string `json:"name,omitempty"`
	Hex  string `json:"hex,omitempty"`
	// Raw holds the bare-string form. Exactly one of Raw or Name/Hex
	// is populated.
	Raw string `json:"-"`
}

// NamedColor creates the structured form.
func NamedColor(name, hex string) ColorRef {
	return ColorRef{Name: name, Hex: hex}
}

// RawColor creates the legacy bare-string form.
func RawColor(raw string) ColorRef {
	return ColorRef{Raw: raw}
}

// IsZero reports whether no color is set.
func (c ColorRef) IsZero() bool {
	return c.Raw == "" && c.Name == "" && c.Hex == ""
}

// Display returns the human-readable color name regardless of shape.
func (c ColorRef) Display() string {
	if c.Raw != "" {
		return c.Raw
	}
	return c.Name
}

type namedColorPayload struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

// MarshalJSON writes the bare string when Raw is set, else the object.
func (c ColorRef) MarshalJSON() ([]byte, error) {
	if c.Raw != "" {
		return json.Marshal(c.Raw)
	}
	if c.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(namedColorPayload{Name: c.Name, Hex: c.Hex})
}

// UnmarshalJSON accepts a string, an object, or null.
func (c *ColorRef) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*c = ColorRef{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = ColorRef{Raw: s}
		return nil
	}
	var payload namedColorPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return err
	}
	*c = ColorRef{Name: payload.Name, Hex: payload.Hex}
	return nil
}

// Value implements driver.Valuer (stored as its JSON form).
func (c ColorRef) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ColorRef) Scan(value interface{}) error {
	if value == nil {
		*c = ColorRef{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported color value type %T", value)
	}
}
