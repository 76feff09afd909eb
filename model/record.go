package model

import (
	"fmt"

	"github.com/Nioron07/Easy-Acumatica/schema"
)

// Record is a generic structural container for one entity instance, keyed by
// field name against its synthesized type descriptor. It stands in for the
// thousands of concrete entity types the API exposes without requiring a
// generated struct per entity.
type Record struct {
	typ    *EntityType
	values map[string]any
}

// New returns an empty record of this type.
func (t *EntityType) New() *Record {
	return &Record{typ: t, values: make(map[string]any)}
}

// Type returns the record's type descriptor.
func (r *Record) Type() *EntityType {
	return r.typ
}

// Set assigns a field value. Wrapper slots take scalars, entity slots take
// *Record, list slots take []*Record, opaque slots take any value.
func (r *Record) Set(field string, v any) error {
	if _, ok := r.typ.slots[field]; !ok {
		return fmt.Errorf("model: %s has no field %q", r.typ.Name, field)
	}
	r.values[field] = v
	return nil
}

// Get returns the value assigned to a field.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Payload converts the record into the wire shape the contract API expects:
// scalar values wrapped as {"value": v}, nested records recursed, lists kept
// as plain arrays of payloads, and opaque payloads passed through untouched.
// Unset fields are omitted entirely.
func (r *Record) Payload() map[string]any {
	payload := make(map[string]any, len(r.values))
	for _, slot := range r.typ.Slots {
		v, ok := r.values[slot.Name]
		if !ok || v == nil {
			continue
		}
		switch slot.Kind {
		case schema.RefEntity:
			if nested, ok := v.(*Record); ok {
				payload[slot.Name] = nested.Payload()
				continue
			}
			payload[slot.Name] = v
		case schema.RefList:
			payload[slot.Name] = listPayload(v)
		case schema.RefOpaque:
			payload[slot.Name] = v
		default:
			payload[slot.Name] = map[string]any{"value": v}
		}
	}
	return payload
}

func listPayload(v any) any {
	switch items := v.(type) {
	case []*Record:
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, item.Payload())
		}
		return out
	case []any:
		out := make([]any, 0, len(items))
		for _, item := range items {
			if rec, ok := item.(*Record); ok {
				out = append(out, rec.Payload())
				continue
			}
			out = append(out, item)
		}
		return out
	default:
		return v
	}
}
