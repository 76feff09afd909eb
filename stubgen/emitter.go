// Package stubgen renders a normalized schema snapshot as deterministic
// static Go type stubs, one declaration unit per entity. Emitted text is
// meant to be committed and diffed, so for a fixed snapshot and ordering
// policy the output is byte-identical across runs.
package stubgen

import (
	"bytes"
	"sort"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	easyacumatica "github.com/Nioron07/Easy-Acumatica"
	"github.com/Nioron07/Easy-Acumatica/schema"
)

// Sink receives one rendered text unit per entity, in policy order.
type Sink interface {
	Unit(entity string, src []byte) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(entity string, src []byte) error

// Unit implements Sink.
func (f SinkFunc) Unit(entity string, src []byte) error {
	return f(entity, src)
}

// OrderingPolicy orders the entity names of one emission run in place.
type OrderingPolicy func(names []string)

// Lexicographic is the default ordering policy.
func Lexicographic(names []string) {
	sort.Strings(names)
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithPackage sets the package name of the emitted units.
func WithPackage(pkg string) Option {
	return func(e *Emitter) {
		if pkg != "" {
			e.pkg = pkg
		}
	}
}

// WithOrdering sets the ordering policy for emitted units.
func WithOrdering(policy OrderingPolicy) Option {
	return func(e *Emitter) {
		if policy != nil {
			e.ordering = policy
		}
	}
}

// Emitter renders entity declarations from a schema snapshot. It depends
// only on the snapshot it is handed: stub emission never requires model
// synthesis to have happened.
type Emitter struct {
	pkg      string
	ordering OrderingPolicy
}

// New creates an Emitter with the defaults: package "models", lexicographic
// ordering.
func New(opts ...Option) *Emitter {
	e := &Emitter{pkg: "models", ordering: Lexicographic}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit renders one unit per entity and custom action of the snapshot and
// hands each to the sink in policy order. Value-wrapper definitions emit no
// unit of their own; their scalar domains are inlined at each use site.
//
// Every inter-entity reference is checked against the same snapshot and a
// failure reports an EmissionError, independent of whether synthesis would
// also have failed, so the two generated artifacts cannot silently diverge.
func (e *Emitter) Emit(m *schema.Model, sink Sink) error {
	names := e.unitNames(m)
	for _, name := range names {
		src, err := e.renderUnit(m, name)
		if err != nil {
			return err
		}
		if err := sink.Unit(name, src); err != nil {
			return err
		}
	}
	return nil
}

// EmitFile renders the whole snapshot as a single source file into buf.
func (e *Emitter) EmitFile(m *schema.Model, buf *bytes.Buffer) error {
	f := e.newFile()
	for _, name := range e.unitNames(m) {
		def, _ := m.Entity(name)
		decl, err := e.declare(m, def)
		if err != nil {
			return err
		}
		f.Add(decl)
		f.Line()
	}
	return f.Render(buf)
}

func (e *Emitter) unitNames(m *schema.Model) []string {
	var names []string
	for _, name := range m.Names() {
		def, _ := m.Entity(name)
		if def.Kind == schema.KindValueWrapper {
			continue
		}
		names = append(names, name)
	}
	e.ordering(names)
	return names
}

func (e *Emitter) renderUnit(m *schema.Model, name string) ([]byte, error) {
	def, _ := m.Entity(name)
	f := e.newFile()
	decl, err := e.declare(m, def)
	if err != nil {
		return nil, err
	}
	f.Add(decl)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, easyacumatica.NewEmissionError(name, "", "", err.Error())
	}
	return buf.Bytes(), nil
}

func (e *Emitter) newFile() *jen.File {
	f := jen.NewFile(e.pkg)
	f.HeaderComment("Code generated by easy-acumatica. DO NOT EDIT.")
	return f
}

// declare builds the struct declaration for one entity. Field references
// use plain Go identifiers, which are forward names: the referenced type
// may be declared in a later unit, or in this very one for self-cycles.
func (e *Emitter) declare(m *schema.Model, def *schema.EntityDefinition) (*jen.Statement, error) {
	fields := make([]jen.Code, 0, len(def.Fields))
	for _, fld := range def.Fields {
		typ, err := fieldType(m, def, fld)
		if err != nil {
			return nil, err
		}
		fields = append(fields, jen.Id(goName(fld.Name)).
			Add(typ).
			Tag(map[string]string{"json": fld.Name + ",omitempty"}))
	}
	doc := def.Name + " mirrors the " + def.Name + " entity of the endpoint schema."
	if def.Kind == schema.KindCustomAction {
		doc = def.Name + " invokes the " + def.Name + " action."
		if target, ok := def.ActionTarget(); ok {
			doc += " It acts on a " + target + "."
		}
	}
	return jen.Comment(doc).Line().
		Type().Id(def.Name).Struct(fields...), nil
}

func fieldType(m *schema.Model, def *schema.EntityDefinition, fld schema.Field) (jen.Code, error) {
	switch fld.Type.Kind {
	case schema.RefWrapper:
		code, ok := scalarType(fld.Type.Wrapper)
		if !ok {
			return nil, easyacumatica.NewEmissionError(def.Name, fld.Name, fld.Type.Wrapper.String(),
				"wrapper has no scalar rendering")
		}
		return code, nil
	case schema.RefEntity:
		if err := checkRef(m, def, fld); err != nil {
			return nil, err
		}
		return jen.Op("*").Id(fld.Type.Entity), nil
	case schema.RefList:
		if err := checkRef(m, def, fld); err != nil {
			return nil, err
		}
		return jen.Index().Op("*").Id(fld.Type.Entity), nil
	case schema.RefOpaque:
		return jen.Map(jen.String()).Any(), nil
	default:
		return nil, easyacumatica.NewEmissionError(def.Name, fld.Name, "",
			"field has no type variant")
	}
}

// checkRef verifies a reference target against the snapshot handed to Emit.
func checkRef(m *schema.Model, def *schema.EntityDefinition, fld schema.Field) error {
	target, ok := m.Entity(fld.Type.Entity)
	if !ok {
		return easyacumatica.NewEmissionError(def.Name, fld.Name, fld.Type.Entity,
			"reference matches no entity in this snapshot")
	}
	if target.Kind == schema.KindValueWrapper {
		return easyacumatica.NewEmissionError(def.Name, fld.Name, fld.Type.Entity,
			"reference resolves to a value wrapper")
	}
	return nil
}

// scalarType maps a wrapper kind to the pointer scalar carried by the stub.
// Every field is optional on the wire, hence the pointers.
func scalarType(k schema.WrapperKind) (jen.Code, bool) {
	switch k {
	case schema.WrapperString:
		return jen.Op("*").String(), true
	case schema.WrapperInt:
		return jen.Op("*").Int(), true
	case schema.WrapperDecimal, schema.WrapperDouble:
		return jen.Op("*").Float64(), true
	case schema.WrapperBoolean:
		return jen.Op("*").Bool(), true
	case schema.WrapperDateTime:
		return jen.Op("*").Qual("time", "Time"), true
	case schema.WrapperGuid:
		return jen.Op("*").Qual("github.com/google/uuid", "UUID"), true
	case schema.WrapperShort:
		return jen.Op("*").Int16(), true
	case schema.WrapperByte:
		return jen.Op("*").Uint8(), true
	case schema.WrapperLong:
		return jen.Op("*").Int64(), true
	default:
		return nil, false
	}
}

var titleCaser = cases.Title(language.English)

// goName exports a wire field name as a Go identifier.
func goName(name string) string {
	if name == "id" {
		return "ID"
	}
	if name == "" {
		return name
	}
	first := rune(name[0])
	if !unicode.IsLower(first) {
		return name
	}
	if strings.IndexFunc(name, unicode.IsUpper) < 0 {
		// Plain lowercase word ("entity", "filename").
		return titleCaser.String(name)
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
