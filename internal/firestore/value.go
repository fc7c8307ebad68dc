package firestore

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/welling-fm/fireinspect/internal/errors"
)

// Value is a Firestore wire value: an object with exactly one typed key such
// as {"stringValue": "x"} or {"integerValue": "3"}.
type Value map[string]any

// Reference is a document reference value
type Reference string

// GeoPoint is a geographic point value
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// RawValue carries a wire value of a type this package does not model. It is
// written back unchanged.
type RawValue Value

// Encode converts a Go value to its wire form.
func Encode(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Value{"nullValue": nil}, nil
	case bool:
		return Value{"booleanValue": t}, nil
	case string:
		return Value{"stringValue": t}, nil
	case int:
		return Value{"integerValue": strconv.Itoa(t)}, nil
	case int32:
		return Value{"integerValue": strconv.FormatInt(int64(t), 10)}, nil
	case int64:
		return Value{"integerValue": strconv.FormatInt(t, 10)}, nil
	case float32:
		return encodeDouble(float64(t)), nil
	case float64:
		return encodeDouble(t), nil
	case time.Time:
		return Value{"timestampValue": t.UTC().Format(time.RFC3339Nano)}, nil
	case []byte:
		return Value{"bytesValue": base64.StdEncoding.EncodeToString(t)}, nil
	case Reference:
		return Value{"referenceValue": string(t)}, nil
	case GeoPoint:
		return Value{"geoPointValue": map[string]any{"latitude": t.Latitude, "longitude": t.Longitude}}, nil
	case RawValue:
		return Value(t), nil
	case []string:
		values := make([]any, 0, len(t))
		for _, s := range t {
			values = append(values, Value{"stringValue": s})
		}
		return arrayValue(values), nil
	case []any:
		values := make([]any, 0, len(t))
		for i, e := range t {
			ev, err := Encode(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			values = append(values, ev)
		}
		return arrayValue(values), nil
	case []map[string]any:
		values := make([]any, 0, len(t))
		for i, e := range t {
			ev, err := Encode(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			values = append(values, ev)
		}
		return arrayValue(values), nil
	case map[string]any:
		fields, err := EncodeFields(t)
		if err != nil {
			return nil, err
		}
		return Value{"mapValue": map[string]any{"fields": fields}}, nil
	default:
		return nil, errors.Newf("unsupported value type %T", v).
			Component("firestore").
			Category(errors.CategoryValidation).
			Build()
	}
}

func encodeDouble(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Value{"doubleValue": "NaN"}
	case math.IsInf(f, 1):
		return Value{"doubleValue": "Infinity"}
	case math.IsInf(f, -1):
		return Value{"doubleValue": "-Infinity"}
	}
	return Value{"doubleValue": f}
}

func arrayValue(values []any) Value {
	if len(values) == 0 {
		return Value{"arrayValue": map[string]any{}}
	}
	return Value{"arrayValue": map[string]any{"values": values}}
}

// EncodeFields converts a document's field map.
func EncodeFields(fields map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(fields))
	for _, k := range sortedKeys(fields) {
		v, err := Encode(fields[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode converts a wire value to a Go value. Integers decode as int64,
// doubles as float64, maps as map[string]any and arrays as []any.
func Decode(v Value) (any, error) {
	if len(v) != 1 {
		return nil, decodeError("value must have exactly one type key, got %d", len(v))
	}
	for kind, raw := range v {
		return decodeKind(v, kind, raw)
	}
	return nil, nil
}

func decodeKind(v Value, kind string, raw any) (any, error) {
	switch kind {
	case "nullValue":
		return nil, nil
	case "booleanValue":
		b, ok := raw.(bool)
		if !ok {
			return nil, decodeError("booleanValue is %T", raw)
		}
		return b, nil
	case "stringValue":
		s, ok := raw.(string)
		if !ok {
			return nil, decodeError("stringValue is %T", raw)
		}
		return s, nil
	case "integerValue":
		switch n := raw.(type) {
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, decodeError("integerValue %q: %v", n, err)
			}
			return i, nil
		case float64:
			return int64(n), nil
		}
		return nil, decodeError("integerValue is %T", raw)
	case "doubleValue":
		switch n := raw.(type) {
		case float64:
			return n, nil
		case string:
			switch n {
			case "NaN":
				return math.NaN(), nil
			case "Infinity":
				return math.Inf(1), nil
			case "-Infinity":
				return math.Inf(-1), nil
			}
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, decodeError("doubleValue %q: %v", n, err)
			}
			return f, nil
		}
		return nil, decodeError("doubleValue is %T", raw)
	case "timestampValue":
		s, ok := raw.(string)
		if !ok {
			return nil, decodeError("timestampValue is %T", raw)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, decodeError("timestampValue %q: %v", s, err)
		}
		return ts.UTC(), nil
	case "bytesValue":
		s, ok := raw.(string)
		if !ok {
			return nil, decodeError("bytesValue is %T", raw)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, decodeError("bytesValue: %v", err)
		}
		return b, nil
	case "referenceValue":
		s, ok := raw.(string)
		if !ok {
			return nil, decodeError("referenceValue is %T", raw)
		}
		return Reference(s), nil
	case "geoPointValue":
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeError("geoPointValue is %T", raw)
		}
		lat, _ := m["latitude"].(float64)
		lng, _ := m["longitude"].(float64)
		return GeoPoint{Latitude: lat, Longitude: lng}, nil
	case "arrayValue":
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeError("arrayValue is %T", raw)
		}
		items, _ := m["values"].([]any)
		out := make([]any, 0, len(items))
		for i, item := range items {
			iv, ok := asValue(item)
			if !ok {
				return nil, decodeError("arrayValue[%d] is %T", i, item)
			}
			d, err := Decode(iv)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	case "mapValue":
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeError("mapValue is %T", raw)
		}
		fields := map[string]Value{}
		switch f := m["fields"].(type) {
		case map[string]any:
			for k, fv := range f {
				val, ok := asValue(fv)
				if !ok {
					return nil, decodeError("mapValue field %q is %T", k, fv)
				}
				fields[k] = val
			}
		case map[string]Value:
			fields = f
		}
		return DecodeFields(fields)
	default:
		return RawValue(v), nil
	}
}

// DecodeFields converts a document's wire fields.
func DecodeFields(fields map[string]Value) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		d, err := Decode(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = d
	}
	return out, nil
}

func asValue(x any) (Value, bool) {
	switch t := x.(type) {
	case Value:
		return t, true
	case map[string]any:
		return Value(t), true
	}
	return nil, false
}

func decodeError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("firestore").
		Category(errors.CategoryFileParsing).
		Build()
}
