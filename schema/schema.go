// Package schema normalizes the remote contract-API schema document into
// entity, field and custom-action definitions consumed by the model
// synthesizer and the stub emitter.
package schema

import "sort"

// EntityKind classifies a definition within one schema snapshot.
type EntityKind uint8

// List of entity kinds.
const (
	// KindEntity is a regular business-entity record type.
	KindEntity EntityKind = iota
	// KindCustomAction is an entity-scoped server-side operation definition.
	KindCustomAction
	// KindValueWrapper is a single-field container for one scalar domain.
	KindValueWrapper
)

func (k EntityKind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindCustomAction:
		return "custom action"
	case KindValueWrapper:
		return "value wrapper"
	default:
		return "unknown"
	}
}

// RefKind tags the variant held by a FieldType.
type RefKind uint8

// List of field-type variants.
const (
	RefInvalid RefKind = iota
	// RefWrapper references one of the fixed primitive wrapper types.
	RefWrapper
	// RefEntity is a nullable single reference to another entity.
	RefEntity
	// RefList is an ordered sequence of nullable entity references.
	RefList
	// RefOpaque is an uninterpreted payload, used only by the reserved
	// "parameters" field of custom actions.
	RefOpaque
)

// FieldType is the normalized type descriptor of a single field: a tagged
// union over wrapper references, entity references and entity lists. Every
// reference target is nullable at the field level.
type FieldType struct {
	Kind    RefKind
	Wrapper WrapperKind // set when Kind == RefWrapper
	Entity  string      // set when Kind == RefEntity or RefList
}

// WrapperRef returns a FieldType referencing a primitive wrapper.
func WrapperRef(k WrapperKind) FieldType {
	return FieldType{Kind: RefWrapper, Wrapper: k}
}

// EntityRef returns a FieldType holding a nullable reference to the named entity.
func EntityRef(name string) FieldType {
	return FieldType{Kind: RefEntity, Entity: name}
}

// ListOf returns a FieldType holding an ordered sequence of nullable
// references to the named entity.
func ListOf(name string) FieldType {
	return FieldType{Kind: RefList, Entity: name}
}

// Opaque returns the FieldType used for uninterpreted payloads.
func Opaque() FieldType {
	return FieldType{Kind: RefOpaque}
}

// Target returns the referenced entity name for entity and list references,
// and the empty string otherwise.
func (t FieldType) Target() string {
	if t.Kind == RefEntity || t.Kind == RefList {
		return t.Entity
	}
	return ""
}

// Field is one named, typed slot of an entity definition.
type Field struct {
	Name string
	Type FieldType
}

// EntityDefinition describes one named definition of a schema snapshot with
// its ordered field set. Definitions are produced once per schema fetch and
// are immutable thereafter.
type EntityDefinition struct {
	Name   string
	Kind   EntityKind
	Fields []Field
}

// Field returns the type of the named field.
func (d *EntityDefinition) Field(name string) (FieldType, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return FieldType{}, false
}

// ActionTarget returns the acted-upon entity of a custom action, read from
// its reserved "entity" field.
func (d *EntityDefinition) ActionTarget() (string, bool) {
	if d.Kind != KindCustomAction {
		return "", false
	}
	ft, ok := d.Field("entity")
	if !ok || ft.Kind != RefEntity {
		return "", false
	}
	return ft.Entity, true
}

// HasParameters reports if a custom action declares the optional reserved
// "parameters" payload.
func (d *EntityDefinition) HasParameters() bool {
	ft, ok := d.Field("parameters")
	return ok && ft.Kind == RefOpaque
}

// Model is one immutable, normalized schema snapshot: every entity, custom
// action and value wrapper keyed by its unique name.
type Model struct {
	entities map[string]*EntityDefinition
	names    []string // sorted
}

func newModel(entities map[string]*EntityDefinition) *Model {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Model{entities: entities, names: names}
}

// Entity returns the definition registered under the given name.
func (m *Model) Entity(name string) (*EntityDefinition, bool) {
	d, ok := m.entities[name]
	return d, ok
}

// Names returns all definition names in lexicographic order. The returned
// slice must not be modified.
func (m *Model) Names() []string {
	return m.names
}

// Len returns the number of definitions in the snapshot.
func (m *Model) Len() int {
	return len(m.entities)
}

// Actions returns all custom-action definitions in lexicographic order.
func (m *Model) Actions() []*EntityDefinition {
	var as []*EntityDefinition
	for _, name := range m.names {
		if d := m.entities[name]; d.Kind == KindCustomAction {
			as = append(as, d)
		}
	}
	return as
}
