package unified

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/retirewiselabs/retirewised/internal/store"
)

// encodeFields converts an entity into a schemaless document body. The id is
// stripped: it lives in the store key, never in the stored body.
func encodeFields(v any) (store.Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding entity: %w", err)
	}
	var fields store.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("encoding entity: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

// decodeDocument converts a stored document back into a typed entity,
// injecting the store key as the entity id.
func decodeDocument[T any](doc store.Document) (T, error) {
	var v T
	fields := doc.Fields.Clone()
	if fields == nil {
		fields = store.Fields{}
	}
	fields["id"] = doc.ID
	data, err := json.Marshal(fields)
	if err != nil {
		return v, fmt.Errorf("decoding document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding document %s: %w", doc.ID, err)
	}
	return v, nil
}

// decodeAll converts a document listing into typed entities.
func decodeAll[T any](docs []store.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decodeDocument[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// patchFloat reads a numeric patch value, tolerating the int/float ambiguity
// of hand-built patches and JSON-decoded ones.
func patchFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// patchString reads a string patch value.
func patchString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// patchTime reads a timestamp patch value, either a time.Time or an RFC 3339
// string.
func patchTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339Nano, t)
		}
		return parsed, err == nil
	}
	return time.Time{}, false
}
