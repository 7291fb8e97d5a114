package processor

import (
	"regexp"
	"strconv"
	"strings"
)

// Record is a parsed summary keyed by the labels used in the summary text.
type Record map[string]any

// numericValue matches a whole number, or a rating such as "4.5 stars".
var numericValue = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?)(?: stars)?$`)

// ParseSummary reverses Summarize on a best-effort basis. Fields are split
// on ". " so free text containing that sequence is cut short.
func ParseSummary(doc string) Record {
	rec := make(Record)
	doc = strings.TrimSpace(doc)
	fields := strings.Split(doc, ". ")

	for i, field := range fields {
		if i == len(fields)-1 {
			field = strings.TrimSuffix(field, ".")
		}
		parts := strings.Split(field, ": ")
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		rec[key] = parseValue(stripQuotes(value))
	}
	return rec
}

func ParseSummaries(docs []string) []Record {
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		records = append(records, ParseSummary(doc))
	}
	return records
}

func stripQuotes(v string) string {
	i := strings.Index(v, `"`)
	j := strings.LastIndex(v, `"`)
	if i < 0 || j-i < 2 {
		return v
	}
	return v[:i] + v[i+1:j] + v[j+1:]
}

// parseValue returns a float64 when the whole value is a number, or a
// number followed by " stars". Free text that merely starts with a digit
// and currency values stay strings.
func parseValue(v string) any {
	if strings.Contains(v, "$") {
		return v
	}
	m := numericValue.FindStringSubmatch(strings.TrimSuffix(v, "."))
	if m == nil {
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(m[1], "."), 64)
	if err != nil {
		return v
	}
	return f
}

// String returns the field as text, formatting numbers without a
// trailing zero fraction.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}
