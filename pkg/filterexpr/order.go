package filterexpr

import (
	"errors"
	"fmt"
	"strings"
)

// OrderKey is one "field [asc|desc]" segment of an order_by clause.
type OrderKey struct {
	Field string
	Desc  bool
}

// OrderSchema whitelists sortable fields and names the key appended as a tiebreaker.
type OrderSchema struct {
	Fields      map[string]struct{}
	FallbackKey string
}

// ParseOrderBy parses "english desc, index" into at most two keys. The fallback key
// is appended when the clause does not already mention it; an empty clause yields nil.
func ParseOrderBy(raw string, schema OrderSchema) ([]OrderKey, error) {
	if schema.FallbackKey != "" {
		if _, ok := schema.Fields[schema.FallbackKey]; !ok {
			return nil, fmt.Errorf("fallback order key %q missing from schema fields", schema.FallbackKey)
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var keys []OrderKey
	seen := make(map[string]struct{})
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		key := parts[0]
		if _, ok := schema.Fields[key]; !ok {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key)
		}

		var desc bool
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		default:
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}
		keys = append(keys, OrderKey{Field: key, Desc: desc})
	}

	if len(keys) > 2 {
		return nil, errors.New("order_by supports at most two keys")
	}
	if _, ok := seen[schema.FallbackKey]; !ok && schema.FallbackKey != "" && len(keys) > 0 {
		keys = append(keys, OrderKey{Field: schema.FallbackKey})
	}
	return keys, nil
}
