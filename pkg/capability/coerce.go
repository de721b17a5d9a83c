package capability

import "fmt"

// Coerce converts an untyped JSON value into the exact shape the kind
// declares. Coercions are total and explicit: no implicit narrowing or
// widening beyond the numeric types encoding/json can produce.
func (k Kind) Coerce(v interface{}) (interface{}, error) {
	switch k {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", String, jsonKindOf(v))
		}
		return s, nil
	case Number:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("expected %s, got %s", Number, jsonKindOf(v))
		}
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected %s, got %s", Boolean, jsonKindOf(v))
		}
		return b, nil
	case Any:
		return v, nil
	default:
		return nil, fmt.Errorf("unknown parameter kind %q", string(k))
	}
}

// jsonKindOf names the JSON shape of a decoded value for error messages.
func jsonKindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
