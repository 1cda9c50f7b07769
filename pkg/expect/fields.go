package expect

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Field looks a key up in a decoded JSON object. Absence and non-object
// documents both yield a *FieldError.
func Field(data interface{}, name string) (interface{}, error) {
	obj, ok := data.(map[string]interface{})
	if !ok {
		return nil, &FieldError{Field: name, Expected: "object", Got: kindOf(data)}
	}
	v, ok := obj[name]
	if !ok {
		return nil, &FieldError{Field: name, Missing: true}
	}
	return v, nil
}

// FieldEquals asserts the named field exists and equals want. Numeric
// values compare by magnitude regardless of their decoded representation.
func FieldEquals(data interface{}, name string, want interface{}) error {
	got, err := Field(data, name)
	if err != nil {
		return err
	}
	if !valuesEqual(got, want) {
		return &FieldError{Field: name, Expected: want, Got: got}
	}
	return nil
}

// FieldType asserts the named field holds a value of the given JSON kind:
// string, number, integer, boolean, object, array or null. An integer
// satisfies number.
func FieldType(data interface{}, name, want string) error {
	got, err := Field(data, name)
	if err != nil {
		return err
	}
	kind := kindOf(got)
	if kind == want || (want == "number" && kind == "integer") {
		return nil
	}
	return &FieldError{Field: name, Expected: want, Got: kind}
}

// NonEmptyList asserts the document is an array with at least one item.
func NonEmptyList(data interface{}) error {
	list, ok := data.([]interface{})
	if !ok {
		return &FieldError{Field: "length", Expected: "array", Got: kindOf(data)}
	}
	if len(list) == 0 {
		return &FieldError{Field: "length", Expected: "> 0", Got: 0}
	}
	return nil
}

// ListLen asserts the document is an array of exactly n items.
func ListLen(data interface{}, n int) error {
	list, ok := data.([]interface{})
	if !ok {
		return &FieldError{Field: "length", Expected: "array", Got: kindOf(data)}
	}
	if len(list) != n {
		return &FieldError{Field: "length", Expected: n, Got: len(list)}
	}
	return nil
}

// MinLen asserts the document is an array of at least n items.
func MinLen(data interface{}, n int) error {
	list, ok := data.([]interface{})
	if !ok {
		return &FieldError{Field: "length", Expected: "array", Got: kindOf(data)}
	}
	if len(list) < n {
		return &FieldError{Field: "length", Expected: fmt.Sprintf(">= %d", n), Got: len(list)}
	}
	return nil
}

// Item indexes into a decoded JSON array.
func Item(data interface{}, i int) (interface{}, error) {
	list, ok := data.([]interface{})
	if !ok {
		return nil, &FieldError{Field: fmt.Sprintf("[%d]", i), Expected: "array", Got: kindOf(data)}
	}
	if i < 0 || i >= len(list) {
		return nil, &FieldError{Field: fmt.Sprintf("[%d]", i), Expected: fmt.Sprintf("index < %d", len(list)), Got: i}
	}
	return list[i], nil
}

func kindOf(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return "integer"
		}
		return "number"
	case float64:
		if x == math.Trunc(x) {
			return "integer"
		}
		return "number"
	case int, int32, int64:
		return "integer"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func valuesEqual(got, want interface{}) bool {
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	if gok && wok {
		return gf == wf
	}
	return reflect.DeepEqual(got, want)
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
