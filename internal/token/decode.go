// ==============================
// File: internal/token/decode.go
// ==============================
package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Raw is one loosely-typed vendor object. Vendors rename fields across
// endpoint versions, so every accessor takes an ordered alias list and
// returns the first key that is present and convertible.
type Raw map[string]any

// envelopeKeys are the wrapper keys vendors put around list payloads.
// A payload may also be a bare JSON array.
var envelopeKeys = []string{"data", "coins", "tokens", "pairs", "pools", "rows", "result"}

// UnwrapList decodes a vendor list payload, accepting either a bare array
// or an object wrapping the array under one of the known envelope keys.
func UnwrapList(body []byte) ([]Raw, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var list []Raw
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode array payload: %w", err)
		}
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("decode object payload: %w", err)
	}

	for _, key := range envelopeKeys {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		innerTrimmed := bytes.TrimSpace(inner)
		if len(innerTrimmed) == 0 || string(innerTrimmed) == "null" {
			continue
		}
		// Envelopes nest one level on some endpoints ({"data":{"rows":[...]}}).
		if innerTrimmed[0] == '{' {
			return UnwrapList(inner)
		}
		var list []Raw
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, fmt.Errorf("decode %q payload: %w", key, err)
		}
		return list, nil
	}

	return nil, fmt.Errorf("no recognizable list in payload")
}

// UnwrapObject decodes a single-object payload, unwrapping the same
// envelope keys when present.
func UnwrapObject(body []byte) (Raw, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("not an object payload")
	}

	var obj Raw
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}

	for _, key := range envelopeKeys {
		if inner, ok := obj[key].(map[string]any); ok {
			return Raw(inner), nil
		}
	}
	return obj, nil
}

// Str returns the first present non-empty string among the aliases.
func (r Raw) Str(aliases ...string) string {
	for _, key := range aliases {
		if v, ok := r[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Float returns the first present numeric value among the aliases.
// Vendors emit numbers both as JSON numbers and as quoted strings.
func (r Raw) Float(aliases ...string) float64 {
	v, _ := r.FloatOK(aliases...)
	return v
}

// FloatOK is Float plus a found flag, for callers that must distinguish
// "absent" from zero.
func (r Raw) FloatOK(aliases ...string) (float64, bool) {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed, true
			}
		case json.Number:
			if parsed, err := n.Float64(); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

// Bool returns the first present boolean among the aliases. Numeric 1/0
// and "true"/"false" strings count; anything else is skipped.
func (r Raw) Bool(aliases ...string) bool {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case float64:
			return b != 0
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		}
	}
	return false
}

// Has reports whether any alias is present with a non-null value.
func (r Raw) Has(aliases ...string) bool {
	for _, key := range aliases {
		if v, ok := r[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// Sub returns a nested object under the first present alias.
func (r Raw) Sub(aliases ...string) Raw {
	for _, key := range aliases {
		if v, ok := r[key].(map[string]any); ok {
			return Raw(v)
		}
	}
	return nil
}

// Time returns the first present timestamp among the aliases. Accepts unix
// seconds, unix milliseconds and RFC3339 strings; the unit is inferred from
// magnitude (values past year 2286 in seconds are treated as milliseconds).
func (r Raw) Time(aliases ...string) time.Time {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch ts := v.(type) {
		case float64:
			if ts <= 0 {
				continue
			}
			if ts > 1e12 {
				return time.UnixMilli(int64(ts)).UTC()
			}
			return time.Unix(int64(ts), 0).UTC()
		case string:
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				return parsed.UTC()
			}
			if n, err := strconv.ParseInt(ts, 10, 64); err == nil && n > 0 {
				if n > 1e12 {
					return time.UnixMilli(n).UTC()
				}
				return time.Unix(n, 0).UTC()
			}
		}
	}
	return time.Time{}
}
