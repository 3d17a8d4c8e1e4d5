package validation

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ParsePositiveNumber accepts the value a JSON body parser produced for a
// numeric field (float64, json.Number, or a numeric string; clients send
// both "2" and 2) and returns it as a float64 strictly greater than zero.
func ParsePositiveNumber(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, errors.New("not a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, errors.New("not a number")
		}
		f = parsed
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, errors.New("not a number")
	}
	if f <= 0 {
		return 0, errors.New("must be greater than zero")
	}
	return f, nil
}

// SplitTags splits a comma-separated tag parameter, trimming whitespace and
// dropping empties.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
