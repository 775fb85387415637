package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Customization is the opaque option payload attached to a cart line (size,
// toppings, spice level, ...). It participates in line identity: two lines for
// the same menu item with different customizations are distinct.
type Customization map[string]string

// fingerprintEscaper keeps the separator characters unambiguous so distinct
// maps can never render the same fingerprint.
var fingerprintEscaper = strings.NewReplacer(`\`, `\\`, "=", `\=`, ";", `\;`)

// Fingerprint renders a deterministic identity string for dedup lookups.
// Keys are sorted so insertion order never changes the result; nil and empty
// maps collapse to the same fingerprint.
func (c Customization) Fingerprint() string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteByte(';')
		}
		builder.WriteString(fingerprintEscaper.Replace(k))
		builder.WriteByte('=')
		builder.WriteString(fingerprintEscaper.Replace(c[k]))
	}
	return builder.String()
}

// GormDataType maps the field to a JSONB column during schema parsing.
func (Customization) GormDataType() string {
	return "jsonb"
}

// Value implements driver.Valuer, persisting the map as JSON.
func (c Customization) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("customization: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for JSON/JSONB columns.
func (c *Customization) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("customization: unsupported Scan type %T", value)
	}

	if len(raw) == 0 {
		*c = nil
		return nil
	}
	return json.Unmarshal(raw, c)
}
