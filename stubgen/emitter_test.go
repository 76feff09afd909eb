package stubgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	easyacumatica "github.com/Nioron07/Easy-Acumatica"
	"github.com/Nioron07/Easy-Acumatica/model"
	"github.com/Nioron07/Easy-Acumatica/schema"
)

const cycleDoc = `{
  "components": {
    "schemas": {
      "Customer": {
        "allOf": [
          {"$ref": "#/components/schemas/Entity"},
          {
            "type": "object",
            "properties": {
              "Name": {"$ref": "#/components/schemas/StringValue"},
              "PrimaryContact": {"$ref": "#/components/schemas/Contact"},
              "Contacts": {"type": "array", "items": {"$ref": "#/components/schemas/Contact"}}
            }
          }
        ]
      },
      "Contact": {
        "allOf": [
          {"$ref": "#/components/schemas/Entity"},
          {
            "type": "object",
            "properties": {
              "Name": {"$ref": "#/components/schemas/StringValue"},
              "Employer": {"$ref": "#/components/schemas/Customer"},
              "Since": {"$ref": "#/components/schemas/DateTimeValue"},
              "Visits": {"$ref": "#/components/schemas/IntValue"}
            }
          }
        ]
      },
      "CloseContact": {
        "required": ["entity"],
        "type": "object",
        "properties": {
          "entity": {"$ref": "#/components/schemas/Contact"},
          "parameters": {"type": "object", "properties": {"Reason": {"$ref": "#/components/schemas/StringValue"}}}
        }
      },
      "Entity": {"type": "object", "properties": {}},
      "StringValue": {"type": "object", "properties": {"value": {"type": "string"}}},
      "IntValue": {"type": "object", "properties": {"value": {"type": "integer"}}},
      "DateTimeValue": {"type": "object", "properties": {"value": {"type": "string", "format": "date-time"}}}
    }
  }
}`

func parseDoc(t *testing.T, doc string) *schema.Model {
	t.Helper()
	m, err := schema.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

type memorySink struct {
	names []string
	units map[string][]byte
}

func newMemorySink() *memorySink {
	return &memorySink{units: map[string][]byte{}}
}

func (s *memorySink) Unit(name string, src []byte) error {
	s.names = append(s.names, name)
	s.units[name] = src
	return nil
}

func TestEmit(t *testing.T) {
	m := parseDoc(t, cycleDoc)
	e := New()

	sink := newMemorySink()
	require.NoError(t, e.Emit(m, sink))

	t.Run("units cover entities and actions, not wrappers", func(t *testing.T) {
		assert.Equal(t, []string{"CloseContact", "Contact", "Customer", "Entity"}, sink.names)
		_, ok := sink.units["StringValue"]
		assert.False(t, ok)
	})

	t.Run("mutual cycle renders as forward names", func(t *testing.T) {
		customer := string(sink.units["Customer"])
		assert.Contains(t, customer, "PrimaryContact *Contact")
		assert.Contains(t, customer, "Contacts []*Contact")

		contact := string(sink.units["Contact"])
		assert.Contains(t, contact, "Employer *Customer")
	})

	t.Run("wrapper fields render as pointer scalars", func(t *testing.T) {
		contact := string(sink.units["Contact"])
		assert.Contains(t, contact, "Name *string")
		assert.Contains(t, contact, "Since *time.Time")
		assert.Contains(t, contact, "Visits *int")
		assert.Contains(t, contact, `json:"Name,omitempty"`)
	})

	t.Run("synthetic id renders as uuid pointer", func(t *testing.T) {
		customer := string(sink.units["Customer"])
		assert.Contains(t, customer, "ID *uuid.UUID")
		assert.Contains(t, customer, `json:"id,omitempty"`)
	})

	t.Run("actions render entity and opaque parameters", func(t *testing.T) {
		action := string(sink.units["CloseContact"])
		assert.Contains(t, action, "Entity *Contact")
		assert.Contains(t, action, "Parameters map[string]any")
	})

	t.Run("units carry the generated header", func(t *testing.T) {
		for name, src := range sink.units {
			assert.Contains(t, string(src), "DO NOT EDIT", name)
			assert.Contains(t, string(src), "package models", name)
		}
	})
}

func TestEmitDeterministic(t *testing.T) {
	m := parseDoc(t, cycleDoc)
	e := New()

	render := func() []byte {
		var buf bytes.Buffer
		require.NoError(t, e.Emit(m, SinkFunc(func(_ string, src []byte) error {
			buf.Write(src)
			return nil
		})))
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())

	var single, again bytes.Buffer
	require.NoError(t, e.EmitFile(m, &single))
	require.NoError(t, e.EmitFile(m, &again))
	assert.Equal(t, single.Bytes(), again.Bytes())
}

func TestEmitOptions(t *testing.T) {
	m := parseDoc(t, cycleDoc)

	t.Run("custom package name", func(t *testing.T) {
		sink := newMemorySink()
		require.NoError(t, New(WithPackage("stubs")).Emit(m, sink))
		assert.Contains(t, string(sink.units["Contact"]), "package stubs")
	})

	t.Run("custom ordering policy", func(t *testing.T) {
		reverse := func(names []string) {
			sort.Sort(sort.Reverse(sort.StringSlice(names)))
		}
		sink := newMemorySink()
		require.NoError(t, New(WithOrdering(reverse)).Emit(m, sink))
		assert.Equal(t, []string{"Entity", "Customer", "Contact", "CloseContact"}, sink.names)
	})
}

func TestEmitUnresolved(t *testing.T) {
	doc := `{"components": {"schemas": {
		"Order": {"allOf": [
			{"$ref": "#/components/schemas/Entity"},
			{"type": "object", "properties": {"Customer": {"$ref": "#/components/schemas/Customer"}}}
		]},
		"Entity": {"type": "object", "properties": {}}
	}}}`
	m := parseDoc(t, doc)

	err := New().Emit(m, newMemorySink())
	require.Error(t, err)
	assert.True(t, easyacumatica.IsEmissionError(err))
	assert.ErrorIs(t, err, easyacumatica.ErrEmission)
	assert.Contains(t, err.Error(), "Order")
	assert.Contains(t, err.Error(), "Customer")
}

func TestFileWriter(t *testing.T) {
	m := parseDoc(t, cycleDoc)
	e := New()

	t.Run("per-entity layout", func(t *testing.T) {
		dir := t.TempDir()
		w := NewFileWriter(filepath.Join(dir, "models"), WithWorkers(2))
		require.NoError(t, w.Write(context.Background(), m, e))

		src, err := os.ReadFile(filepath.Join(dir, "models", "customer.go"))
		require.NoError(t, err)
		assert.Contains(t, string(src), "type Customer struct")

		_, err = os.Stat(filepath.Join(dir, "models", "contact.go"))
		assert.NoError(t, err)
	})

	t.Run("single file layout", func(t *testing.T) {
		dir := t.TempDir()
		w := NewFileWriter(dir, WithLayout(LayoutSingleFile))
		require.NoError(t, w.Write(context.Background(), m, e))

		src, err := os.ReadFile(filepath.Join(dir, "models.go"))
		require.NoError(t, err)
		assert.Contains(t, string(src), "type Customer struct")
		assert.Contains(t, string(src), "type Contact struct")
		assert.Contains(t, string(src), "type CloseContact struct")
	})
}

// Both generated artifacts come from the same snapshot; per entity they
// must agree on field names and on the optional/list/wrapper shape.
func TestShapeParity(t *testing.T) {
	m := parseDoc(t, cycleDoc)

	set, err := model.Synthesize(m)
	require.NoError(t, err)

	sink := newMemorySink()
	require.NoError(t, New().Emit(m, sink))

	for _, name := range set.Names() {
		typ, ok := set.Type(name)
		require.True(t, ok)
		src := string(sink.units[name])
		require.NotEmpty(t, src, name)

		for _, slot := range typ.Slots {
			switch slot.Kind {
			case schema.RefEntity:
				assert.Contains(t, src, goName(slot.Name)+" *"+slot.Target.Name)
			case schema.RefList:
				assert.Contains(t, src, goName(slot.Name)+" []*"+slot.Target.Name)
			case schema.RefOpaque:
				assert.Contains(t, src, goName(slot.Name)+" map[string]any")
			default:
				assert.Contains(t, src, goName(slot.Name)+" *")
			}
			assert.Contains(t, src, `json:"`+slot.Name+`,omitempty"`)
		}
	}
}

func TestGoName(t *testing.T) {
	cases := map[string]string{
		"id":          "ID",
		"entity":      "Entity",
		"parameters":  "Parameters",
		"filename":    "Filename",
		"DisplayName": "DisplayName",
		"noteID":      "NoteID",
	}
	for in, want := range cases {
		assert.Equal(t, want, goName(in), in)
	}
}
