package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	easyacumatica "github.com/Nioron07/Easy-Acumatica"
)

const testDoc = `{
  "openapi": "3.0.1",
  "components": {
    "schemas": {
      "Contact": {
        "allOf": [
          {"$ref": "#/components/schemas/Entity"},
          {
            "type": "object",
            "properties": {
              "id": {"$ref": "#/components/schemas/GuidValue"},
              "DisplayName": {"$ref": "#/components/schemas/StringValue"},
              "Active": {"$ref": "#/components/schemas/BooleanValue"},
              "BusinessAccount": {"$ref": "#/components/schemas/BusinessAccount"},
              "Activities": {"type": "array", "items": {"$ref": "#/components/schemas/Activity"}},
              "note": {"$ref": "#/components/schemas/StringValue"},
              "rowNumber": {"$ref": "#/components/schemas/IntValue"}
            }
          }
        ]
      },
      "BusinessAccount": {
        "allOf": [
          {"$ref": "#/components/schemas/Entity"},
          {
            "type": "object",
            "properties": {
              "Name": {"$ref": "#/components/schemas/StringValue"},
              "MainContact": {"$ref": "#/components/schemas/Contact"}
            }
          }
        ]
      },
      "Activity": {
        "allOf": [
          {"$ref": "#/components/schemas/Entity"},
          {
            "type": "object",
            "properties": {
              "Subject": {"$ref": "#/components/schemas/StringValue"},
              "CreatedAt": {"$ref": "#/components/schemas/DateTimeValue"}
            }
          }
        ]
      },
      "FileLink": {
        "type": "object",
        "properties": {
          "filename": {"type": "string"},
          "href": {"type": "string"},
          "comment": {"type": "string", "nullable": true}
        }
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
      "GuidValue": {"type": "object", "properties": {"value": {"type": "string", "format": "uuid"}}},
      "BooleanValue": {"type": "object", "properties": {"value": {"type": "boolean"}}},
      "DateTimeValue": {"type": "object", "properties": {"value": {"type": "string", "format": "date-time"}}}
    }
  }
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(testDoc))
	require.NoError(t, err)

	t.Run("entities are normalized with synthetic id", func(t *testing.T) {
		contact, ok := m.Entity("Contact")
		require.True(t, ok)
		assert.Equal(t, KindEntity, contact.Kind)

		require.NotEmpty(t, contact.Fields)
		assert.Equal(t, "id", contact.Fields[0].Name)
		assert.Equal(t, WrapperRef(WrapperGuid), contact.Fields[0].Type)

		ft, ok := contact.Field("DisplayName")
		require.True(t, ok)
		assert.Equal(t, WrapperRef(WrapperString), ft)

		ft, ok = contact.Field("BusinessAccount")
		require.True(t, ok)
		assert.Equal(t, EntityRef("BusinessAccount"), ft)

		ft, ok = contact.Field("Activities")
		require.True(t, ok)
		assert.Equal(t, ListOf("Activity"), ft)
	})

	t.Run("reserved properties are skipped", func(t *testing.T) {
		contact, _ := m.Entity("Contact")
		_, ok := contact.Field("note")
		assert.False(t, ok)
		_, ok = contact.Field("rowNumber")
		assert.False(t, ok)
	})

	t.Run("fields are ordered deterministically", func(t *testing.T) {
		contact, _ := m.Entity("Contact")
		var names []string
		for _, f := range contact.Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"id", "Active", "Activities", "BusinessAccount", "DisplayName"}, names)
	})

	t.Run("wrapper schemas become value wrappers", func(t *testing.T) {
		sv, ok := m.Entity("StringValue")
		require.True(t, ok)
		assert.Equal(t, KindValueWrapper, sv.Kind)
		require.Len(t, sv.Fields, 1)
		assert.Equal(t, "value", sv.Fields[0].Name)
		assert.Equal(t, WrapperRef(WrapperString), sv.Fields[0].Type)
	})

	t.Run("custom actions are tagged with their target", func(t *testing.T) {
		action, ok := m.Entity("CloseContact")
		require.True(t, ok)
		assert.Equal(t, KindCustomAction, action.Kind)

		target, ok := action.ActionTarget()
		require.True(t, ok)
		assert.Equal(t, "Contact", target)
		assert.True(t, action.HasParameters())
	})

	t.Run("inline primitives collapse onto the wrapper catalog", func(t *testing.T) {
		fl, ok := m.Entity("FileLink")
		require.True(t, ok)
		assert.Equal(t, KindEntity, fl.Kind)

		ft, ok := fl.Field("filename")
		require.True(t, ok)
		assert.Equal(t, WrapperRef(WrapperString), ft)
	})

	t.Run("names are sorted", func(t *testing.T) {
		names := m.Names()
		assert.Equal(t, m.Len(), len(names))
		assert.IsIncreasing(t, names)
	})

	t.Run("actions listing", func(t *testing.T) {
		actions := m.Actions()
		require.Len(t, actions, 1)
		assert.Equal(t, "CloseContact", actions[0].Name)
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Parse([]byte("{"))
		require.Error(t, err)
		assert.True(t, easyacumatica.IsSchemaError(err))
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := Parse([]byte(`{"components": {"schemas": {}}}`))
		require.Error(t, err)
		assert.True(t, easyacumatica.IsSchemaError(err))
	})

	t.Run("unknown type descriptor", func(t *testing.T) {
		doc := `{"components": {"schemas": {
			"Broken": {"type": "object", "properties": {"Blob": {"type": "mystery"}}}
		}}}`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.True(t, easyacumatica.IsSchemaError(err))
		assert.Contains(t, err.Error(), "Broken")
		assert.Contains(t, err.Error(), "Blob")
	})

	t.Run("array without entity items", func(t *testing.T) {
		doc := `{"components": {"schemas": {
			"Broken": {"type": "object", "properties": {"Items": {"type": "array"}}}
		}}}`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.True(t, easyacumatica.IsSchemaError(err))
	})
}

func TestMerge(t *testing.T) {
	base, err := Parse([]byte(testDoc))
	require.NoError(t, err)

	t.Run("identical duplicates are tolerated", func(t *testing.T) {
		dup, err := Parse([]byte(testDoc))
		require.NoError(t, err)
		merged, err := Merge(base, dup)
		require.NoError(t, err)
		assert.Equal(t, base.Len(), merged.Len())
	})

	t.Run("disjoint snapshots combine", func(t *testing.T) {
		other, err := Parse([]byte(`{"components": {"schemas": {
			"Warehouse": {"allOf": [
				{"$ref": "#/components/schemas/Entity"},
				{"type": "object", "properties": {"WarehouseID": {"$ref": "#/components/schemas/StringValue"}}}
			]}
		}}}`))
		require.NoError(t, err)
		merged, err := Merge(base, other)
		require.NoError(t, err)
		_, ok := merged.Entity("Warehouse")
		assert.True(t, ok)
		_, ok = merged.Entity("Contact")
		assert.True(t, ok)
	})

	t.Run("conflicting duplicate fails", func(t *testing.T) {
		other, err := Parse([]byte(`{"components": {"schemas": {
			"Contact": {"allOf": [
				{"$ref": "#/components/schemas/Entity"},
				{"type": "object", "properties": {"Email": {"$ref": "#/components/schemas/StringValue"}}}
			]}
		}}}`))
		require.NoError(t, err)
		_, err = Merge(base, other)
		require.Error(t, err)
		assert.True(t, easyacumatica.IsSchemaError(err))
		assert.Contains(t, err.Error(), "Contact")
	})
}

func TestWrapperCatalog(t *testing.T) {
	t.Run("catalog has the ten fixed wrappers", func(t *testing.T) {
		cat := Catalog()
		require.Len(t, cat, 10)
		for _, k := range cat {
			assert.True(t, k.Valid())
			got, ok := WrapperByName(k.String())
			require.True(t, ok, k.String())
			assert.Equal(t, k, got)
		}
	})

	t.Run("unknown names are rejected", func(t *testing.T) {
		_, ok := WrapperByName("Contact")
		assert.False(t, ok)
		assert.False(t, IsWrapperName("FloatValue"))
	})

	t.Run("invalid kind", func(t *testing.T) {
		assert.False(t, WrapperInvalid.Valid())
		assert.Equal(t, "invalid", WrapperInvalid.String())
		assert.Equal(t, "invalid", WrapperKind(200).String())
	})
}

func TestFingerprint(t *testing.T) {
	t.Run("stable across parses", func(t *testing.T) {
		a, err := Parse([]byte(testDoc))
		require.NoError(t, err)
		b, err := Parse([]byte(testDoc))
		require.NoError(t, err)
		assert.Equal(t, Fingerprint(a), Fingerprint(b))
	})

	t.Run("changes with the schema", func(t *testing.T) {
		a, err := Parse([]byte(testDoc))
		require.NoError(t, err)
		b, err := Parse([]byte(`{"components": {"schemas": {
			"Contact": {"allOf": [
				{"$ref": "#/components/schemas/Entity"},
				{"type": "object", "properties": {"Email": {"$ref": "#/components/schemas/StringValue"}}}
			]}
		}}}`))
		require.NoError(t, err)
		assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	})
}
