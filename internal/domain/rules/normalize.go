package rules

import (
	"encoding/json"
	"strings"
)

// NormalizeList flattens the shapes clients historically sent for
// array-like preference fields. Contract: accepts a JSON array, a single
// scalar value, or a JSON-encoded array packed into a string, and always
// emits a de-duplicated sequence with blank entries dropped.
func NormalizeList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err == nil {
		return dedupeNonEmpty(values)
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil
	}

	trimmed := strings.TrimSpace(single)
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &values); err == nil {
			return dedupeNonEmpty(values)
		}
	}

	return dedupeNonEmpty([]string{trimmed})
}

func dedupeNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
