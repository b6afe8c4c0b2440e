package graphdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Props is a node's property map as returned by `RETURN properties(n) AS key`.
type Props map[string]any

// CollectProps reads every record of result and returns the map stored under key.
func CollectProps(ctx context.Context, result neo4j.ResultWithContext, key string) ([]Props, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Props, 0, len(records))
	for _, rec := range records {
		p, err := recordProps(rec, key)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FirstProps returns the first record's map under key, or nil when there are no records.
func FirstProps(ctx context.Context, result neo4j.ResultWithContext, key string) (Props, error) {
	all, err := CollectProps(ctx, result, key)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// SingleInt reads an integer column from a single-row result such as a count.
func SingleInt(ctx context.Context, result neo4j.ResultWithContext, key string) (int64, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	v, ok := records[0].Get(key)
	if !ok {
		return 0, fmt.Errorf("graphdb: column %q missing", key)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("graphdb: column %q is %T, want int64", key, v)
	}
	return n, nil
}

func recordProps(rec *neo4j.Record, key string) (Props, error) {
	v, ok := rec.Get(key)
	if !ok {
		return nil, fmt.Errorf("graphdb: column %q missing", key)
	}
	switch m := v.(type) {
	case map[string]any:
		return Props(m), nil
	case neo4j.Node:
		return Props(m.Props), nil
	default:
		return nil, fmt.Errorf("graphdb: column %q is %T, want map", key, v)
	}
}

func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// OptionalString returns nil when the property is absent or null.
func (p Props) OptionalString(key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func (p Props) Float(key string) float64 {
	f, _ := p.OptionalFloat(key)
	return f
}

func (p Props) OptionalFloat(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (p Props) FloatPtr(key string) *float64 {
	f, ok := p.OptionalFloat(key)
	if !ok {
		return nil
	}
	return &f
}

func (p Props) Time(key string) time.Time {
	switch v := p[key].(type) {
	case time.Time:
		return v
	case neo4j.LocalDateTime:
		return v.Time()
	case string:
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	default:
		return time.Time{}
	}
}

func (p Props) OptionalTime(key string) *time.Time {
	if _, ok := p[key]; !ok || p[key] == nil {
		return nil
	}
	t := p.Time(key)
	return &t
}

// JSON decodes a property stored as a JSON string into dst. Absent properties leave dst untouched.
func (p Props) JSON(key string, dst any) error {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return fmt.Errorf("graphdb: decode %q: %w", key, err)
	}
	return nil
}

// EncodeJSON renders v for storage as a string property; nil stays nil so the property is not set.
func EncodeJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

// NullIfEmpty maps "" to nil so optional string properties are left unset.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullIfNil dereferences optional numeric parameters.
func NullIfNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
