package cql2

import (
	"encoding/json"
	"strconv"
)

// ParseJSON parses a cql2-json document into an Expr, per the mapping
// table in §4.5.
func ParseJSON(text string) (Expr, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, invalidJSONf("%s", err)
	}
	return valueToExpr(raw)
}

func valueToExpr(raw any) (Expr, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case float64:
		return Float(v), nil
	case string:
		return Literal(v), nil
	case []any:
		items := make([]Expr, len(v))
		for i, it := range v {
			e, err := valueToExpr(it)
			if err != nil {
				return nil, err
			}
			items[i] = e
		}
		return &Array{Items: items}, nil
	case map[string]any:
		return objectToExpr(v)
	default:
		return nil, invalidJSONf("unsupported JSON value of type %T", raw)
	}
}

func objectToExpr(m map[string]any) (Expr, error) {
	switch {
	case m["op"] != nil:
		opName, ok := m["op"].(string)
		if !ok {
			return nil, invalidJSONf(`"op" must be a string`)
		}
		rawArgs, _ := m["args"].([]any)
		args := make([]Expr, len(rawArgs))
		for i, a := range rawArgs {
			e, err := valueToExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return NewOperation(opName, args...), nil
	case m["property"] != nil:
		name, ok := m["property"].(string)
		if !ok {
			return nil, invalidJSONf(`"property" must be a string`)
		}
		return &Property{Name: name}, nil
	case m["interval"] != nil:
		raw, ok := m["interval"].([]any)
		if !ok || len(raw) != 2 {
			return nil, invalidJSONf(`"interval" must be a 2-element array`)
		}
		start, err := intervalEndpointToExpr(raw[0])
		if err != nil {
			return nil, err
		}
		end, err := intervalEndpointToExpr(raw[1])
		if err != nil {
			return nil, err
		}
		return &Interval{Start: start, End: end}, nil
	case m["timestamp"] != nil:
		child, err := valueToExpr(m["timestamp"])
		if err != nil {
			return nil, err
		}
		return &Timestamp{Child: child}, nil
	case m["date"] != nil:
		child, err := valueToExpr(m["date"])
		if err != nil {
			return nil, err
		}
		return &Date{Child: child}, nil
	case m["bbox"] != nil:
		raw, ok := m["bbox"].([]any)
		if !ok {
			return nil, invalidJSONf(`"bbox" must be an array`)
		}
		values := make([]Expr, len(raw))
		for i, v := range raw {
			e, err := valueToExpr(v)
			if err != nil {
				return nil, err
			}
			values[i] = e
		}
		return &BBox{Values: values}, nil
	case m["type"] != nil && m["coordinates"] != nil:
		return &Geometry{GeoJSON: m}, nil
	default:
		return nil, invalidJSONf("object does not match any known cql2-json shape: %v", keysOf(m))
	}
}

func intervalEndpointToExpr(raw any) (Expr, error) {
	if s, ok := raw.(string); ok && s == ".." {
		return IntervalOpen{}, nil
	}
	return valueToExpr(raw)
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// ToValue renders expr into the generic JSON value tree described by
// §4.5's mapping table (ready for json.Marshal).
func ToValue(e Expr) (any, error) {
	switch v := e.(type) {
	case Bool:
		return bool(v), nil
	case Float:
		return float64(v), nil
	case Literal:
		return string(v), nil
	case Null:
		return nil, nil
	case *Property:
		return map[string]any{"property": v.Name}, nil
	case *Array:
		items := make([]any, len(v.Items))
		for i, it := range v.Items {
			val, err := ToValue(it)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return items, nil
	case *BBox:
		items := make([]any, len(v.Values))
		for i, it := range v.Values {
			val, err := ToValue(it)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return map[string]any{"bbox": items}, nil
	case *Geometry:
		return v.toGeoJSONValue()
	case *Date:
		child, err := ToValue(v.Child)
		if err != nil {
			return nil, err
		}
		return map[string]any{"date": child}, nil
	case *Timestamp:
		child, err := ToValue(v.Child)
		if err != nil {
			return nil, err
		}
		return map[string]any{"timestamp": child}, nil
	case IntervalOpen:
		return "..", nil
	case *Interval:
		start, err := ToValue(v.Start)
		if err != nil {
			return nil, err
		}
		end, err := ToValue(v.End)
		if err != nil {
			return nil, err
		}
		return map[string]any{"interval": []any{start, end}}, nil
	case *Operation:
		if want, ok := fixedArity[v.Op]; ok && len(v.Args) != want {
			return nil, arityError(v.Op, len(v.Args), strconv.Itoa(want))
		}
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			val, err := ToValue(a)
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		return map[string]any{"op": v.Op, "args": args}, nil
	default:
		return nil, coercionError("cannot serialize %T to JSON", e)
	}
}

// ToJSON renders expr as compact cql2-json.
func ToJSON(e Expr) (string, error) {
	v, err := ToValue(e)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", ioError(err)
	}
	return string(b), nil
}

// ToJSONPretty renders expr as indented cql2-json.
func ToJSONPretty(e Expr) (string, error) {
	v, err := ToValue(e)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", ioError(err)
	}
	return string(b), nil
}
