// Package model synthesizes runtime structural types from a normalized
// schema snapshot. Synthesis is cycle-safe: mutually referencing entities
// (Contact -> BusinessAccount -> Contact) resolve without recursion or any
// declaration-order constraint.
package model

import (
	"sort"

	easyacumatica "github.com/Nioron07/Easy-Acumatica"
	"github.com/Nioron07/Easy-Acumatica/schema"
)

// WrapperType is the runtime form of a primitive value wrapper: a
// single-field container holding one scalar domain value.
type WrapperType struct {
	Name string
	Kind schema.WrapperKind
}

// FieldSlot is one resolved field of a synthesized type. For entity and
// list slots, Target points into the same TypeSet; for wrapper slots,
// Wrapper names the scalar domain.
type FieldSlot struct {
	Name    string
	Kind    schema.RefKind
	Wrapper *WrapperType // set when Kind == RefWrapper
	Target  *EntityType  // set when Kind == RefEntity or RefList
}

// EntityType is one runtime structural type: a named, ordered descriptor of
// resolved field slots. Instances are created empty in pass 1 and filled in
// pass 2, so a slot's Target always points at a live type even inside
// reference cycles.
type EntityType struct {
	Name  string
	Kind  schema.EntityKind
	Slots []*FieldSlot
	slots map[string]*FieldSlot
}

// Slot returns the named field slot.
func (t *EntityType) Slot(name string) (*FieldSlot, bool) {
	s, ok := t.slots[name]
	return s, ok
}

// TypeSet is the immutable result of one synthesis run: every runtime type
// of one schema snapshot plus the fixed wrapper instances.
type TypeSet struct {
	types    map[string]*EntityType
	wrappers map[schema.WrapperKind]*WrapperType
	names    []string // sorted
}

// Type returns the synthesized type registered under the given name.
func (s *TypeSet) Type(name string) (*EntityType, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names returns all synthesized type names in lexicographic order.
func (s *TypeSet) Names() []string {
	return s.names
}

// Wrapper returns the runtime wrapper instance for a scalar domain.
func (s *TypeSet) Wrapper(k schema.WrapperKind) (*WrapperType, bool) {
	w, ok := s.wrappers[k]
	return w, ok
}

// Synthesize builds one runtime structural type per entity definition of the
// snapshot, in three steps:
//
//  1. Wrapper instances, which depend on nothing.
//  2. Pass 1: an empty, named placeholder per entity, registered in a
//     name->placeholder arena. Every name exists before any field is filled.
//  3. Pass 2: fill each placeholder's slots by arena lookup. Cyclic
//     references simply store a pointer to the other placeholder.
//
// The two-pass arena replaces any topological ordering of the reference
// graph. References that resolve to no arena entry are collected across the
// whole run and reported together in one UnresolvedReferenceError.
func Synthesize(m *schema.Model) (*TypeSet, error) {
	set := &TypeSet{
		types:    make(map[string]*EntityType),
		wrappers: make(map[schema.WrapperKind]*WrapperType, 10),
	}
	for _, k := range schema.Catalog() {
		set.wrappers[k] = &WrapperType{Name: k.String(), Kind: k}
	}

	// Pass 1: placeholders.
	for _, name := range m.Names() {
		def, _ := m.Entity(name)
		if def.Kind == schema.KindValueWrapper {
			continue
		}
		set.types[name] = &EntityType{
			Name:  name,
			Kind:  def.Kind,
			slots: make(map[string]*FieldSlot, len(def.Fields)),
		}
		set.names = append(set.names, name)
	}

	// Pass 2: fill slots against the fully named arena.
	var dangling []easyacumatica.DanglingRef
	for _, name := range set.names {
		def, _ := m.Entity(name)
		typ := set.types[name]
		for _, f := range def.Fields {
			slot := &FieldSlot{Name: f.Name, Kind: f.Type.Kind}
			switch f.Type.Kind {
			case schema.RefWrapper:
				slot.Wrapper = set.wrappers[f.Type.Wrapper]
			case schema.RefEntity, schema.RefList:
				target, ok := set.types[f.Type.Entity]
				if !ok {
					dangling = append(dangling, easyacumatica.DanglingRef{
						Entity: name,
						Field:  f.Name,
						Ref:    f.Type.Entity,
					})
					continue
				}
				slot.Target = target
			case schema.RefOpaque:
				// Uninterpreted payload slot, nothing to resolve.
			}
			typ.Slots = append(typ.Slots, slot)
			typ.slots[f.Name] = slot
		}
	}
	if len(dangling) > 0 {
		sort.Slice(dangling, func(i, j int) bool {
			if dangling[i].Entity != dangling[j].Entity {
				return dangling[i].Entity < dangling[j].Entity
			}
			return dangling[i].Field < dangling[j].Field
		})
		return nil, easyacumatica.NewUnresolvedReferenceError(dangling)
	}
	return set, nil
}
