package schema

import (
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	easyacumatica "github.com/Nioron07/Easy-Acumatica"
)

// Reserved property names the API manages itself. They never become user
// fields; entities get a single synthetic "id" slot instead.
var reservedProps = map[string]bool{
	"id":        true,
	"note":      true,
	"rowNumber": true,
	"error":     true,
	"_links":    true,
}

type rawDocument struct {
	Components struct {
		Schemas map[string]rawSchema `json:"schemas"`
	} `json:"components"`
}

type rawSchema struct {
	Ref        string                 `json:"$ref"`
	Type       string                 `json:"type"`
	AllOf      []rawSchema            `json:"allOf"`
	Required   []string               `json:"required"`
	Properties map[string]rawProperty `json:"properties"`
}

type rawProperty struct {
	Ref    string       `json:"$ref"`
	Type   string       `json:"type"`
	Format string       `json:"format"`
	Items  *rawProperty `json:"items"`
}

// Parse normalizes a raw swagger.json document into an immutable schema
// snapshot. It is pure: the same document always yields the same Model.
//
// Heterogeneous raw type descriptors collapse into the three FieldType
// variants; entities carrying the reserved "entity"/"parameters" shape are
// tagged as custom actions. Parse fails with a SchemaError when a property
// descriptor matches no known wrapper or entity naming convention.
func Parse(raw []byte) (*Model, error) {
	var doc rawDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, easyacumatica.NewSchemaError("", "", "decoding schema document", err)
	}
	schemas := doc.Components.Schemas
	if len(schemas) == 0 {
		return nil, easyacumatica.NewSchemaError("", "", "document has no components.schemas", nil)
	}
	entities := make(map[string]*EntityDefinition, len(schemas))
	for name, rs := range schemas {
		def, err := normalize(name, rs)
		if err != nil {
			return nil, err
		}
		entities[name] = def
	}
	return newModel(entities), nil
}

// Merge combines two snapshots fetched in one run (e.g. from multiple
// endpoint versions) into one. Identical duplicate definitions are
// tolerated; the same name with conflicting field sets is a SchemaError.
func Merge(a, b *Model) (*Model, error) {
	entities := make(map[string]*EntityDefinition, a.Len()+b.Len())
	for name, d := range a.entities {
		entities[name] = d
	}
	for name, d := range b.entities {
		prev, ok := entities[name]
		if !ok {
			entities[name] = d
			continue
		}
		if prev.Kind != d.Kind || !slices.Equal(prev.Fields, d.Fields) {
			return nil, easyacumatica.NewSchemaError(name, "",
				"entity defined twice with conflicting field sets", nil)
		}
	}
	return newModel(entities), nil
}

func normalize(name string, rs rawSchema) (*EntityDefinition, error) {
	if k, ok := WrapperByName(name); ok {
		return &EntityDefinition{
			Name:   name,
			Kind:   KindValueWrapper,
			Fields: []Field{{Name: "value", Type: WrapperRef(k)}},
		}, nil
	}
	switch {
	case len(rs.AllOf) > 0:
		return normalizeEntity(name, rs)
	case isActionShape(rs):
		return normalizeAction(name, rs)
	default:
		fields, err := normalizeProps(name, rs.Properties, nil)
		if err != nil {
			return nil, err
		}
		return &EntityDefinition{Name: name, Kind: KindEntity, Fields: fields}, nil
	}
}

// normalizeEntity handles the top-level entity pattern: an allOf of the base
// Entity reference plus one or more property bags. The merged bag is
// normalized and a synthetic "id" slot is prepended.
func normalizeEntity(name string, rs rawSchema) (*EntityDefinition, error) {
	props := make(map[string]rawProperty)
	for _, item := range rs.AllOf {
		for pn, p := range item.Properties {
			props[pn] = p
		}
	}
	fields := []Field{{Name: "id", Type: WrapperRef(WrapperGuid)}}
	fields, err := normalizeProps(name, props, fields)
	if err != nil {
		return nil, err
	}
	return &EntityDefinition{Name: name, Kind: KindEntity, Fields: fields}, nil
}

// isActionShape reports if a non-allOf object matches the custom-action
// contract: a required "entity" reference to the acted-upon entity.
func isActionShape(rs rawSchema) bool {
	p, ok := rs.Properties["entity"]
	if !ok || p.Ref == "" {
		return false
	}
	return !IsWrapperName(refName(p.Ref))
}

func normalizeAction(name string, rs rawSchema) (*EntityDefinition, error) {
	target := refName(rs.Properties["entity"].Ref)
	fields := []Field{{Name: "entity", Type: EntityRef(target)}}
	if _, ok := rs.Properties["parameters"]; ok {
		fields = append(fields, Field{Name: "parameters", Type: Opaque()})
	}
	rest := make(map[string]rawProperty)
	for pn, p := range rs.Properties {
		if pn == "entity" || pn == "parameters" {
			continue
		}
		rest[pn] = p
	}
	fields, err := normalizeProps(name, rest, fields)
	if err != nil {
		return nil, err
	}
	return &EntityDefinition{Name: name, Kind: KindCustomAction, Fields: fields}, nil
}

// normalizeProps appends the normalized form of each non-reserved property
// to fields, in lexicographic name order for deterministic output.
func normalizeProps(entity string, props map[string]rawProperty, fields []Field) ([]Field, error) {
	names := make([]string, 0, len(props))
	for pn := range props {
		if reservedProps[pn] {
			continue
		}
		names = append(names, pn)
	}
	sort.Strings(names)
	for _, pn := range names {
		ft, err := normalizeType(entity, pn, props[pn])
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: pn, Type: ft})
	}
	return fields, nil
}

func normalizeType(entity, field string, p rawProperty) (FieldType, error) {
	switch {
	case p.Ref != "":
		name := refName(p.Ref)
		if k, ok := WrapperByName(name); ok {
			return WrapperRef(k), nil
		}
		return EntityRef(name), nil
	case p.Type == "array":
		if p.Items == nil || p.Items.Ref == "" {
			return FieldType{}, easyacumatica.NewSchemaError(entity, field,
				"array items must reference an entity", nil)
		}
		name := refName(p.Items.Ref)
		if IsWrapperName(name) {
			return FieldType{}, easyacumatica.NewSchemaError(entity, field,
				"array of value wrappers is not supported", nil)
		}
		return ListOf(name), nil
	default:
		k, ok := inlineWrapper(p)
		if !ok {
			return FieldType{}, easyacumatica.NewSchemaError(entity, field,
				"type descriptor "+describe(p)+" matches no known wrapper or entity", nil)
		}
		return WrapperRef(k), nil
	}
}

// inlineWrapper maps an inline primitive descriptor (e.g. FileLink's plain
// string properties) onto the wrapper catalog.
func inlineWrapper(p rawProperty) (WrapperKind, bool) {
	switch p.Type {
	case "string":
		switch p.Format {
		case "uuid":
			return WrapperGuid, true
		case "date-time":
			return WrapperDateTime, true
		default:
			return WrapperString, true
		}
	case "boolean":
		return WrapperBoolean, true
	case "integer":
		switch p.Format {
		case "int64":
			return WrapperLong, true
		case "int16":
			return WrapperShort, true
		default:
			return WrapperInt, true
		}
	case "number":
		if p.Format == "double" {
			return WrapperDouble, true
		}
		return WrapperDecimal, true
	default:
		return WrapperInvalid, false
	}
}

func refName(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func describe(p rawProperty) string {
	if p.Type == "" {
		return `""`
	}
	if p.Format != "" {
		return `"` + p.Type + "/" + p.Format + `"`
	}
	return `"` + p.Type + `"`
}
