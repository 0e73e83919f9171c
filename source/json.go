package source

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by JSON when the document does not parse.
var ErrInvalidJSON = errors.New("invalid JSON document")

// JSON visits the array or object found at path inside doc.
//
// Arrays are visited in index order with the decimal index as key. Objects
// are visited in document order; their keys are captured when JSON is
// called. An empty path selects the document root. A missing path or a
// scalar target yields an empty sequence.
//
// Paths use gjson syntax ("users", "data.items"); a leading "$." as used by
// JSONPath is accepted and stripped.
func JSON(doc []byte, path string, fn func(value gjson.Result, key string) error) (Source, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidJSON
	}

	target := gjson.ParseBytes(doc)
	if p := normalizeJSONPath(path); p != "" {
		target = target.Get(p)
	}

	var (
		keys   []string
		values = make(map[string]gjson.Result)
	)
	switch {
	case target.IsArray():
		for i, v := range target.Array() {
			key := strconv.Itoa(i)
			keys = append(keys, key)
			values[key] = v
		}
	case target.IsObject():
		target.ForEach(func(k, v gjson.Result) bool {
			key := k.String()
			if _, dup := values[key]; !dup {
				keys = append(keys, key)
			}
			values[key] = v
			return true
		})
	}

	return Keyed(keys, func(k string) (gjson.Result, bool) {
		v, ok := values[k]
		return v, ok
	}, fn), nil
}

// normalizeJSONPath converts the common JSONPath prefixes to gjson form.
func normalizeJSONPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "$" || path == "@this" {
		return ""
	}
	path = strings.TrimPrefix(path, "$")
	return strings.TrimPrefix(path, ".")
}
