package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrPayloadShape marks a document that lacks the fixed nesting down to the
// location list. It fails the whole normalization.
var ErrPayloadShape = errors.New("unexpected payload shape")

// LocationPath is the fixed key path from the document root to the location list.
var LocationPath = []string{
	"cwaopendata",
	"resources",
	"resource",
	"data",
	"agrWeatherForecasts",
	"weatherForecasts",
	"location",
}

// RawForecastPayload is the forecast document after the fixed nesting has been
// walked. Everything below the location list stays weakly typed.
type RawForecastPayload struct {
	Locations []RawLocation
}

// RawLocation keeps the weather elements undecoded so that one malformed
// location cannot fail the others.
type RawLocation struct {
	Name            string
	WeatherElements json.RawMessage
}

type rawLocation struct {
	LocationName    *string         `json:"locationName"`
	WeatherElements json.RawMessage `json:"weatherElements"`
}

// ParsePayload walks LocationPath and splits the location list.
func ParsePayload(body []byte) (*RawForecastPayload, error) {
	current := json.RawMessage(body)

	for i, key := range LocationPath {
		var level map[string]json.RawMessage
		if err := json.Unmarshal(current, &level); err != nil || level == nil {
			return nil, fmt.Errorf("%w: %s is not an object", ErrPayloadShape, pathString(i))
		}
		next, ok := level[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q at %s", ErrPayloadShape, key, pathString(i))
		}
		current = next
	}

	var items []json.RawMessage
	if err := json.Unmarshal(current, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: %s is not a list", ErrPayloadShape, pathString(len(LocationPath)))
	}

	payload := &RawForecastPayload{Locations: make([]RawLocation, 0, len(items))}
	for _, item := range items {
		var loc rawLocation
		if err := json.Unmarshal(item, &loc); err != nil {
			// not an object, or a non-string name: nothing usable in it
			payload.Locations = append(payload.Locations, RawLocation{})
			continue
		}
		name := ""
		if loc.LocationName != nil {
			name = *loc.LocationName
		}
		payload.Locations = append(payload.Locations, RawLocation{
			Name:            name,
			WeatherElements: loc.WeatherElements,
		})
	}

	return payload, nil
}

func pathString(depth int) string {
	if depth == 0 {
		return "document root"
	}
	return strings.Join(LocationPath[:depth], ".")
}

// Field is one name/value pair of a JSON object, kept in document order.
type Field struct {
	Name  string
	Value json.RawMessage
}

// DailyEntry is one record of a channel's daily list. Field order follows the
// source document.
type DailyEntry struct {
	Fields []Field
}

// Get returns the raw value of the first field with the given name.
func (e DailyEntry) Get(name string) (json.RawMessage, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value of a field when it is a JSON string or number.
func (e DailyEntry) String(name string) (string, bool) {
	raw, ok := e.Get(name)
	if !ok {
		return "", false
	}
	return ScalarText(raw)
}

func (e *DailyEntry) UnmarshalJSON(b []byte) error {
	fields, err := orderedFields(b)
	if err != nil {
		return err
	}
	e.Fields = fields
	return nil
}

// ScalarText renders a JSON string or number as text. Other kinds report false.
func ScalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	}
	return "", false
}

// ObjectKeys returns the keys of a JSON object in document order.
func ObjectKeys(raw json.RawMessage) ([]string, error) {
	fields, err := orderedFields(raw)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Name)
	}
	return keys, nil
}

func orderedFields(b []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}
