// Package explore prints the shape of a forecast document one nesting level
// at a time. It is a debugging aid for when the upstream layout changes.
package explore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"cwa-dashboard/internal/models"
)

var ErrMissingLevel = errors.New("missing level")

// Level describes one step on the path.
type Level struct {
	Path string
	Kind string
	// Count is the length of an array level.
	Count int
	// Keys are the object keys, or the keys of element 0 for an array.
	Keys []string
}

// Steps is the walked path: down to the location list, then into the condition
// channel of the first location.
func Steps() []string {
	steps := append([]string{}, models.LocationPath...)
	return append(steps, "weatherElements", "Wx", "daily")
}

// Walk describes the root and every level of Steps. Descending by key from an
// array goes through its first element. On a missing level it returns the
// levels seen so far together with an error.
func Walk(body []byte) ([]Level, error) {
	current := json.RawMessage(bytes.TrimSpace(body))
	path := "data"

	root, err := describe(path, current)
	if err != nil {
		return nil, err
	}
	levels := []Level{root}

	for _, key := range Steps() {
		if kindOf(current) == "array" {
			var items []json.RawMessage
			if err := json.Unmarshal(current, &items); err != nil || len(items) == 0 {
				return levels, fmt.Errorf("%w: %s is an empty list", ErrMissingLevel, path)
			}
			current = items[0]
			path += "[0]"
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil || obj == nil {
			return levels, fmt.Errorf("%w: %s is not an object", ErrMissingLevel, path)
		}
		next, ok := obj[key]
		if !ok {
			return levels, fmt.Errorf("%w: %s has no key %q", ErrMissingLevel, path, key)
		}

		current = next
		path = key
		level, err := describe(path, current)
		if err != nil {
			return levels, err
		}
		levels = append(levels, level)
	}

	return levels, nil
}

func describe(path string, raw json.RawMessage) (Level, error) {
	level := Level{Path: path, Kind: kindOf(raw)}

	switch level.Kind {
	case "invalid":
		return level, fmt.Errorf("%s: not valid JSON", path)
	case "object":
		keys, err := models.ObjectKeys(raw)
		if err != nil {
			return level, fmt.Errorf("%s: %w", path, err)
		}
		level.Keys = keys
	case "array":
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return level, fmt.Errorf("%s: %w", path, err)
		}
		level.Count = len(items)
		if len(items) > 0 && kindOf(items[0]) == "object" {
			keys, err := models.ObjectKeys(items[0])
			if err != nil {
				return level, fmt.Errorf("%s[0]: %w", path, err)
			}
			level.Keys = keys
		}
	}
	return level, nil
}

func kindOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return "invalid"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// Print writes the levels in the order they were walked.
func Print(w io.Writer, levels []Level) {
	for _, l := range levels {
		fmt.Fprintf(w, "%s type: %s\n", l.Path, l.Kind)
		switch l.Kind {
		case "object":
			fmt.Fprintf(w, "%s keys:\n", l.Path)
			spew.Fdump(w, l.Keys)
		case "array":
			fmt.Fprintf(w, "%s count: %d\n", l.Path, l.Count)
			if l.Keys != nil {
				fmt.Fprintf(w, "%s[0] keys:\n", l.Path)
				spew.Fdump(w, l.Keys)
			}
		}
	}
}

// Run walks body and prints what it found, including the levels before a
// failure.
func Run(w io.Writer, body []byte) error {
	levels, err := Walk(body)
	Print(w, levels)
	if err != nil {
		fmt.Fprintln(w, strings.Repeat("-", 40))
		return err
	}
	return nil
}
