// Package rawjson decodes upstream JSON into a closed set of shapes so
// callers branch on Kind instead of asserting on interface{} trees.
package rawjson

import (
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

type Kind uint8

const (
	KindMalformed Kind = iota
	KindRecord
	KindList
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindScalar:
		return "scalar"
	default:
		return "malformed"
	}
}

var decoder = sonic.Config{UseInt64: true, CopyString: true}.Froze()

// Value is one decoded JSON node.
type Value struct {
	kind   Kind
	record Record
	list   []any
	scalar any
}

// Record is a JSON object with tolerant typed accessors.
type Record map[string]any

// Parse never fails: undecodable input becomes a Malformed value.
func Parse(raw []byte) Value {
	var out any
	if err := decoder.Unmarshal(raw, &out); err != nil {
		return Value{kind: KindMalformed}
	}
	return FromAny(out)
}

func FromAny(v any) Value {
	switch typed := v.(type) {
	case map[string]any:
		return Value{kind: KindRecord, record: Record(typed)}
	case Record:
		return Value{kind: KindRecord, record: typed}
	case []any:
		return Value{kind: KindList, list: typed}
	default:
		return Value{kind: KindScalar, scalar: typed}
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Record() (Record, bool) {
	return v.record, v.kind == KindRecord
}

func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]Value, 0, len(v.list))
	for _, item := range v.list {
		out = append(out, FromAny(item))
	}
	return out, true
}

func (v Value) Scalar() (any, bool) {
	return v.scalar, v.kind == KindScalar
}

// Records flattens v into object entries: a record is a singleton, a list
// yields its record entries, anything else yields none. skipped counts list
// entries that were not records.
func (v Value) Records() (records []Record, skipped int) {
	switch v.kind {
	case KindRecord:
		return []Record{v.record}, 0
	case KindList:
		records = make([]Record, 0, len(v.list))
		for _, item := range v.list {
			rec, ok := FromAny(item).Record()
			if !ok {
				skipped++
				continue
			}
			records = append(records, rec)
		}
		return records, skipped
	default:
		return nil, 0
	}
}

func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

func (r Record) Value(key string) (Value, bool) {
	raw, ok := r[key]
	if !ok {
		return Value{}, false
	}
	return FromAny(raw), true
}

func (r Record) Record(key string) (Record, bool) {
	v, ok := r.Value(key)
	if !ok {
		return nil, false
	}
	return v.Record()
}

func (r Record) List(key string) ([]Value, bool) {
	v, ok := r.Value(key)
	if !ok {
		return nil, false
	}
	return v.List()
}

// String returns string values as-is and formats numbers; other types miss.
func (r Record) String(key string) (string, bool) {
	switch typed := r[key].(type) {
	case string:
		return typed, true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	default:
		return "", false
	}
}

func (r Record) Bool(key string) (bool, bool) {
	typed, ok := r[key].(bool)
	return typed, ok
}

// Int accepts integers, finite floats (truncated) and numeric strings.
func (r Record) Int(key string) (int64, bool) {
	return asInt64(r[key])
}

func asInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return 0, false
		}
		return int64(typed), true
	case float32:
		return asInt64(float64(typed))
	case string:
		s := strings.TrimSpace(typed)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return asInt64(f)
		}
		return 0, false
	default:
		return 0, false
	}
}
