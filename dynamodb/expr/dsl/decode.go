package dsl

import (
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/time-loop/typedorm/dynamodb/expr"
)

// rawEntry and ordered keep the key order of a decoded mapping.
type rawEntry struct {
	key   string
	value any
}

type ordered []rawEntry

// FromMap decodes a loosely typed specification such as one produced by encoding/json.
// Go maps are unordered, so keys of each level are taken in lexical order.
func FromMap(m map[string]any) (Spec, error) {
	o, err := orderedFromMap(reflect.ValueOf(m))
	if err != nil {
		return nil, err
	}
	return decodeSpec(o)
}

// FromYAML decodes a specification document, keeping the order keys appear in.
func FromYAML(data []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// UnmarshalYAML lets a Spec be embedded in larger YAML documents.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	raw, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	o, ok := raw.(ordered)
	if !ok {
		return expr.ShapeError("", "specification must be a mapping, got %s", node.ShortTag())
	}
	spec, err := decodeSpec(o)
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

func fromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return ordered{}, nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		o := make(ordered, 0, len(node.Content)/2)
		seen := map[string]bool{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i].Value
			if seen[k] {
				return nil, expr.ShapeError(k, "duplicate key at line %d", node.Content[i].Line)
			}
			seen[k] = true
			v, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			o = append(o, rawEntry{key: k, value: v})
		}
		return o, nil
	case yaml.SequenceNode:
		seq := make([]any, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode scalar at line %d: %w", node.Line, err)
		}
		return v, nil
	}
}

func orderedFromMap(v reflect.Value) (ordered, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, expr.ShapeError("", "specification keys must be strings, got %s", v.Type().Key())
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	o := make(ordered, 0, len(keys))
	for _, k := range keys {
		val, err := normalize(v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())))
		if err != nil {
			return nil, err
		}
		o = append(o, rawEntry{key: k, value: val})
	}
	return o, nil
}

// normalize turns maps into ordered and slices (other than []byte) into []any.
func normalize(v reflect.Value) (any, error) {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Interface:
		return nil, nil
	case reflect.Map:
		return orderedFromMap(v)
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface(), nil
		}
		seq := make([]any, v.Len())
		for i := range seq {
			e, err := normalize(v.Index(i))
			if err != nil {
				return nil, err
			}
			seq[i] = e
		}
		return seq, nil
	default:
		return v.Interface(), nil
	}
}

func decodeSpec(o ordered) (Spec, error) {
	spec := make(Spec, 0, len(o))
	for _, e := range o {
		if IsCombinator(e.key) {
			body, ok := e.value.(ordered)
			if !ok {
				return nil, expr.ShapeError(e.key, "combinator value must be a specification, got %T", e.value)
			}
			child, err := decodeSpec(body)
			if err != nil {
				return nil, err
			}
			spec = append(spec, Entry{Key: e.key, Node: Group{Op: Combinator(e.key), Body: child}})
			continue
		}
		op, err := decodeOperand(e.key, e.value)
		if err != nil {
			return nil, err
		}
		spec = append(spec, Entry{Key: e.key, Node: op})
	}
	return spec, nil
}

func decodeOperand(path string, v any) (Operand, error) {
	switch val := v.(type) {
	case string:
		switch val {
		case AttributeExists:
			return Exists(), nil
		case AttributeNotExists:
			return NotExists(), nil
		}
		return nil, expr.ShapeError(path, "string value must be %s or %s, got %q", AttributeExists, AttributeNotExists, val)
	case ordered:
		op, operand, err := singleOperator(path, val)
		if err != nil {
			return nil, err
		}
		if isScalar(operand) {
			return decodeScalar(path, op, operand)
		}
		return decodeRangeOrSize(path, op, operand)
	default:
		return nil, expr.ShapeError(path, "value must be an existence sentinel or a single operator mapping, got %T", v)
	}
}

func singleOperator(path string, o ordered) (Operator, any, error) {
	if len(o) != 1 {
		return "", nil, expr.ShapeError(path, "operator mapping must contain exactly one operator, got %d", len(o))
	}
	return Operator(o[0].key), o[0].value, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case ordered, []any:
		return false
	}
	return true
}

func decodeScalar(path string, op Operator, v any) (Comparison, error) {
	if !IsScalarOperator(op) {
		return Comparison{}, expr.UnsupportedOperatorError(string(op), "unsupported operator for a scalar operand on %q", path)
	}
	return Comparison{Op: op, Value: v}, nil
}

func decodeRangeOrSize(path string, op Operator, v any) (Operand, error) {
	switch op {
	case OpBetween:
		seq, ok := v.([]any)
		if !ok || len(seq) != 2 {
			return nil, expr.ArityError(path, "BETWEEN requires exactly 2 values")
		}
		return Range{Op: op, Low: seq[0], High: seq[1]}, nil
	case OpIn:
		seq, ok := v.([]any)
		if !ok || len(seq) == 0 {
			return nil, expr.ArityError(path, "IN requires a non-empty list of values")
		}
		return Membership{Op: op, Values: seq}, nil
	case OpSize:
		inner, ok := v.(ordered)
		if !ok {
			return nil, expr.ShapeError(path, "SIZE requires a single operator mapping, got %T", v)
		}
		if len(inner) != 1 {
			return nil, expr.ArityError(path, "SIZE requires exactly one operator, got %d", len(inner))
		}
		innerOp, operand := Operator(inner[0].key), inner[0].value
		if !isScalar(operand) {
			return nil, expr.UnsupportedOperatorError(string(innerOp), "SIZE on %q only supports scalar comparisons", path)
		}
		c, err := decodeScalar(path, innerOp, operand)
		if err != nil {
			return nil, err
		}
		return SizeOf{Op: c.Op, Value: c.Value}, nil
	default:
		return nil, expr.UnsupportedOperatorError(string(op), "unsupported operator for a list or mapping operand on %q", path)
	}
}
