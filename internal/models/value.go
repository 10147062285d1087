package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the closed set of types a rule can compare against.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindBool
	KindString
	KindList
	KindMap
	KindTime
)

// Value is a typed wrapper over the heterogeneous data rules evaluate on.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind
	Num  float64
	Bool bool
	Str  string
	List []Value
	Map  map[string]Value
	Time time.Time
}

func Null() Value                    { return Value{Kind: KindNull} }
func Number(n float64) Value         { return Value{Kind: KindNumber, Num: n} }
func Boolean(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func Str(s string) Value             { return Value{Kind: KindString, Str: s} }
func ListOf(items ...Value) Value    { return Value{Kind: KindList, List: items} }
func MapOf(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }
func TimeOf(t time.Time) Value       { return Value{Kind: KindTime, Time: t} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsNumber converts numeric-like values to float64. Strings are parsed,
// booleans and times are not considered numeric.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// AsString renders the value for comparison and for result reporting.
func (v Value) AsString() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	case KindTime:
		return v.Time.Format(time.RFC3339)
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			parts = append(parts, item.AsString())
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		b, _ := json.Marshal(v.flatten())
		return string(b)
	}
	return ""
}

func (v Value) flatten() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str
	case KindTime:
		return v.Time.Format(time.RFC3339)
	case KindList:
		out := make([]any, 0, len(v.List))
		for _, item := range v.List {
			out = append(out, item.flatten())
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for k, item := range v.Map {
			out[k] = item.flatten()
		}
		return out
	}
	return nil
}

var dateFormats = []string{time.RFC3339, "2006-01-02", "02/01/2006"}

// ParseRuleValue converts a rule's stored textual value into a typed Value
// according to its declared type. A malformed value degrades to a raw string
// Value and reports the parse error so callers can log it without failing
// the evaluation.
func ParseRuleValue(raw string, valueType RuleValueType) (Value, error) {
	trimmed := strings.TrimSpace(raw)

	switch valueType {
	case ValueTypeNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Str(raw), fmt.Errorf("invalid number %q: %w", raw, err)
		}
		return Number(n), nil

	case ValueTypeBoolean:
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return Boolean(true), nil
		case "false", "0", "no":
			return Boolean(false), nil
		}
		return Str(raw), fmt.Errorf("invalid boolean %q", raw)

	case ValueTypeList:
		return parseListValue(raw)

	case ValueTypeDate:
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return TimeOf(t), nil
			}
		}
		return Str(raw), fmt.Errorf("invalid date %q", raw)

	case ValueTypeString:
		return Str(raw), nil
	}

	return Str(raw), fmt.Errorf("unknown value type %q", valueType)
}

// parseListValue accepts either a JSON array or a comma-separated string.
func parseListValue(raw string) (Value, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "[") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return Str(raw), fmt.Errorf("invalid list %q: %w", raw, err)
		}
		values := make([]Value, 0, len(items))
		for _, item := range items {
			values = append(values, FromAny(item))
		}
		return ListOf(values...), nil
	}

	parts := strings.Split(trimmed, ",")
	values := make([]Value, 0, len(parts))
	for _, p := range parts {
		values = append(values, Str(strings.TrimSpace(p)))
	}
	return ListOf(values...), nil
}

// FromAny converts decoded JSON data into a typed Value.
func FromAny(item any) Value {
	switch t := item.(type) {
	case nil:
		return Null()
	case float64:
		return Number(t)
	case bool:
		return Boolean(t)
	case string:
		return Str(t)
	case []any:
		values := make([]Value, 0, len(t))
		for _, inner := range t {
			values = append(values, FromAny(inner))
		}
		return ListOf(values...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, inner := range t {
			m[k] = FromAny(inner)
		}
		return MapOf(m)
	}
	return Str(fmt.Sprintf("%v", item))
}

// EvaluationContext is the immutable read-only snapshot a rule set is
// evaluated against, namespaced by the rule's field type.
type EvaluationContext struct {
	Farmer   map[string]Value
	Farm     map[string]Value
	KYC      map[string]Value
	Credit   map[string]Value
	Location map[string]Value
	Custom   map[string]Value
}

// Namespace returns the map backing a rule field type. Unknown field types
// resolve against the custom namespace.
func (c *EvaluationContext) Namespace(fieldType RuleFieldType) map[string]Value {
	switch fieldType {
	case FieldFarmer:
		return c.Farmer
	case FieldFarm:
		return c.Farm
	case FieldKYC:
		return c.KYC
	case FieldCredit:
		return c.Credit
	case FieldLocation:
		return c.Location
	}
	return c.Custom
}

// Resolve walks a dot-separated path into a namespace. Path segments index
// maps by key and lists by integer position. A missing segment resolves to
// the null Value.
func (c *EvaluationContext) Resolve(fieldType RuleFieldType, path string) Value {
	ns := c.Namespace(fieldType)
	if ns == nil || path == "" {
		return Null()
	}

	segments := strings.Split(path, ".")
	current, ok := ns[segments[0]]
	if !ok {
		return Null()
	}

	for _, seg := range segments[1:] {
		switch current.Kind {
		case KindMap:
			next, ok := current.Map[seg]
			if !ok {
				return Null()
			}
			current = next
		case KindList:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(current.List) {
				return Null()
			}
			current = current.List[idx]
		default:
			return Null()
		}
	}
	return current
}
