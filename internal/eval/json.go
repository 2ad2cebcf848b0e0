package eval

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ToJSON converts a Value to a plain interface{} tree suitable for
// encoding/json: strings, numbers, booleans, arrays and objects map to
// the corresponding value kinds. A constructor value becomes a JSON
// object carrying its fields plus a reserved "_constructor" field so
// json.decode can round-trip it back to the same tag.
func ToJSON(v Value) (interface{}, error) {
	switch val := v.(type) {
	case *IntValue:
		return val.V, nil
	case *BoolValue:
		return val.V, nil
	case *StringValue:
		return val.V, nil
	case *UnitValue:
		return nil, nil
	case *ListValue:
		out := make([]interface{}, len(val.Elements))
		for i, e := range val.Elements {
			j, err := ToJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case *ConstructorValue:
		obj := make(map[string]interface{}, len(val.Fields)+1)
		for _, name := range SortedFieldNames(val) {
			j, err := ToJSON(val.Fields[name])
			if err != nil {
				return nil, err
			}
			obj[name] = j
		}
		obj["_constructor"] = val.Tag
		return obj, nil
	case *ActorRefValue:
		return nil, fmt.Errorf("cannot encode an actor reference to JSON")
	default:
		return nil, fmt.Errorf("cannot encode value of kind %s to JSON", v.Kind())
	}
}

// EncodeJSON produces the canonical, deterministic JSON text for a Value
// (object keys sorted), used by json.encode.
func EncodeJSON(v Value) (string, error) {
	tree, err := ToJSON(v)
	if err != nil {
		return "", err
	}
	data, err := marshalSorted(tree)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshalSorted marshals a tree of map[string]interface{}/[]interface{}
// with object keys in sorted order, since Go's encoding/json already
// sorts map[string]interface{} keys — this wrapper exists so the
// intent is explicit and the behavior is pinned regardless of future
// encoding/json changes.
func marshalSorted(tree interface{}) ([]byte, error) {
	return json.Marshal(tree)
}

// DecodeJSON parses JSON text into a Value. Objects carrying a
// "_constructor" field decode to a ConstructorValue with that tag; plain
// objects (the common case for data received from outside the language)
// decode to a constructor tagged "Object" whose fields are the object's
// keys — a documented interop wart: downstream matches need an explicit
// Object variant to consume them.
func DecodeJSON(text string) (Value, error) {
	var tree interface{}
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		return nil, fmt.Errorf("JSON decode error: %w", err)
	}
	return FromJSON(tree)
}

// FromJSON converts a decoded interface{} tree (as produced by
// encoding/json.Unmarshal into interface{}) into a Value.
func FromJSON(tree interface{}) (Value, error) {
	switch t := tree.(type) {
	case nil:
		return Unit(), nil
	case bool:
		return &BoolValue{V: t}, nil
	case string:
		return &StringValue{V: t}, nil
	case float64:
		// encoding/json always decodes JSON numbers as float64; this
		// module provides no floating point, so truncate toward zero.
		return &IntValue{V: int(t)}, nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("JSON decode error: non-integer number %q", t.String())
		}
		return &IntValue{V: int(i)}, nil
	case []interface{}:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ListValue{Elements: elems}, nil
	case map[string]interface{}:
		tag := "Object"
		if ctor, ok := t["_constructor"]; ok {
			if s, ok := ctor.(string); ok {
				tag = s
			}
		}
		names := make([]string, 0, len(t))
		for k := range t {
			if k == "_constructor" {
				continue
			}
			names = append(names, k)
		}
		sort.Strings(names)
		fields := make(map[string]Value, len(names))
		for _, k := range names {
			v, err := FromJSON(t[k])
			if err != nil {
				return nil, err
			}
			fields[k] = v
		}
		return &ConstructorValue{Tag: tag, FieldNames: names, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("JSON decode error: unsupported JSON value %T", tree)
	}
}
