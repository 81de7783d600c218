package dictionary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata describes an operator or an application.
type Metadata struct {
	Name         string         `json:"name,omitempty"`
	DisplayName  string         `json:"display_name,omitempty"`
	Description  string         `json:"description,omitempty"`
	Category     string         `json:"category,omitempty"`
	Country      string         `json:"country,omitempty"`
	Brand        string         `json:"brand,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Platforms    []string       `json:"platforms,omitempty"`
	Applications []string       `json:"applications,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// IsZero reports whether no field carries a value.
func (m Metadata) IsZero() bool {
	return m.Name == "" && m.DisplayName == "" && m.Description == "" &&
		m.Category == "" && m.Country == "" && m.Brand == "" &&
		len(m.Tags) == 0 && len(m.Platforms) == 0 && len(m.Applications) == 0 &&
		len(m.Extra) == 0
}

func (m Metadata) clone() Metadata {
	out := m
	out.Tags = append([]string(nil), m.Tags...)
	out.Platforms = append([]string(nil), m.Platforms...)
	out.Applications = append([]string(nil), m.Applications...)
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

var knownMetadataKeys = map[string]struct{}{
	"name": {}, "display_name": {}, "description": {}, "category": {}, "country": {},
	"brand": {}, "operator": {}, "tags": {}, "platforms": {}, "applications": {},
}

// decodeMetadataMap turns a raw {name: metadata} object into trimmed keys.
// Scalar metadata is stored under scalarField ("display_name" or "name").
func decodeMetadataMap(raw any, scalarField string) map[string]Metadata {
	out := map[string]Metadata{}
	obj, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for name, value := range obj {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		fields, isObj := value.(map[string]any)
		if !isObj {
			fields = map[string]any{scalarField: scalarString(value)}
		}
		out[key] = decodeMetadata(fields)
	}
	return out
}

func decodeMetadata(fields map[string]any) Metadata {
	m := Metadata{
		Name:         stringField(fields, "name"),
		DisplayName:  stringField(fields, "display_name"),
		Description:  stringField(fields, "description"),
		Category:     stringField(fields, "category"),
		Country:      stringField(fields, "country"),
		Brand:        stringField(fields, "brand"),
		Tags:         stringList(fields["tags"]),
		Platforms:    stringList(fields["platforms"]),
		Applications: stringList(fields["applications"]),
	}
	if m.Brand == "" {
		m.Brand = stringField(fields, "operator")
	}
	for k, v := range fields {
		if _, known := knownMetadataKeys[k]; known {
			continue
		}
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		m.Extra[k] = v
	}
	return m
}

func stringField(fields map[string]any, key string) string {
	return strings.TrimSpace(scalarString(fields[key]))
}

// scalarString renders JSON scalars; objects, arrays and null render empty.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool, float64, int, int64:
		return fmt.Sprint(t)
	}
	return ""
}

// stringList keeps string items in order, trimmed and deduplicated. A single string
// becomes a one-item list; non-string items are dropped.
func stringList(v any) []string {
	var items []any
	switch t := v.(type) {
	case string:
		items = []any{t}
	case []any:
		items = t
	default:
		return nil
	}
	return UniqueStrings(items)
}

// UniqueStrings returns the distinct non-empty string values of items, order-preserving.
func UniqueStrings(items []any) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
