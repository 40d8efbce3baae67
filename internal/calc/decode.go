package calc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrNotObject is returned by DecodeForm when the body is not a JSON object.
var ErrNotObject = errors.New("form body is not a JSON object")

// DecodeForm reads a JSON object into a FormData. Fields with the wrong shape
// (non-numeric numbers, null, objects where a list is expected) are dropped and
// so read as zero values. Numeric strings are accepted; a single comma is read
// as the decimal separator, except before exactly three digits ("1,234"), which
// is ambiguous with a thousands separator and dropped. Unknown keys are ignored.
func DecodeForm(r io.Reader) (FormData, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return FormData{}, fmt.Errorf("decode form: %w", err)
	}
	if raw == nil {
		return FormData{}, fmt.Errorf("decode form: %w", ErrNotObject)
	}

	clean := make(map[string]any, len(raw))
	for key, value := range raw {
		kind, ok := fieldKind(key)
		if !ok {
			continue
		}
		if v, ok := coerce(kind, value); ok {
			clean[key] = v
		}
	}

	buf, err := json.Marshal(clean)
	if err != nil {
		return FormData{}, fmt.Errorf("re-encode form: %w", err)
	}
	var form FormData
	if err := json.Unmarshal(buf, &form); err != nil {
		return FormData{}, fmt.Errorf("decode cleaned form: %w", err)
	}
	form.Certifications = uniqueStrings(form.Certifications)
	return form, nil
}

func coerce(kind string, value any) (any, bool) {
	switch kind {
	case KindNumber:
		return toNumber(value)
	case KindString:
		return toString(value)
	case KindStrings:
		return toStrings(value)
	case KindWorkers:
		items, ok := value.([]any)
		if !ok {
			return nil, false
		}
		workers := make([]Worker, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			rate, _ := toNumber(m["hourlyRate"])
			hours, _ := toNumber(m["hours"])
			workers = append(workers, Worker{HourlyRate: rate, Hours: hours})
		}
		return workers, true
	case KindPhases:
		items, ok := value.([]any)
		if !ok {
			return nil, false
		}
		phases := make([]ProcessingPhase, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := toString(m["name"])
			desc, _ := toString(m["description"])
			waste, _ := toNumber(m["wastePercentage"])
			added, _ := toNumber(m["addedWeight"])
			phases = append(phases, ProcessingPhase{
				Name:            name,
				Description:     desc,
				WastePercentage: waste,
				AddedWeight:     added,
			})
		}
		return phases, true
	}
	return nil, false
}

func toNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		if i := strings.IndexByte(s, ','); i >= 0 {
			// A comma is only ever a decimal separator. "1,234" reads as a
			// thousands separator just as well, so it is dropped, not guessed.
			if strings.Contains(s, ".") || strings.Count(s, ",") > 1 || len(s)-i-1 == 3 {
				return 0, false
			}
			s = s[:i] + "." + s[i+1:]
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func toStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := toString(item); ok {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		return []string{v}, true
	}
	return nil, false
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
