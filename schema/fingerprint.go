package schema

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
)

// Fingerprint returns a stable identifier for one schema snapshot, used to
// key synthesis caching. The snapshot is serialized in canonical form
// (definitions and fields in their sorted model order), so two snapshots
// with the same definitions always share a fingerprint regardless of the
// raw document's map ordering.
func Fingerprint(m *Model) string {
	type canonicalField struct {
		Name    string `msgpack:"n"`
		Kind    uint8  `msgpack:"k"`
		Wrapper uint8  `msgpack:"w"`
		Entity  string `msgpack:"e"`
	}
	type canonicalEntity struct {
		Name   string           `msgpack:"n"`
		Kind   uint8            `msgpack:"k"`
		Fields []canonicalField `msgpack:"f"`
	}
	canon := make([]canonicalEntity, 0, m.Len())
	for _, name := range m.Names() {
		d, _ := m.Entity(name)
		ce := canonicalEntity{Name: d.Name, Kind: uint8(d.Kind)}
		for _, f := range d.Fields {
			ce.Fields = append(ce.Fields, canonicalField{
				Name:    f.Name,
				Kind:    uint8(f.Type.Kind),
				Wrapper: uint8(f.Type.Wrapper),
				Entity:  f.Type.Entity,
			})
		}
		canon = append(canon, ce)
	}
	// Slices of structs serialize deterministically, unlike maps.
	buf, err := msgpack.Marshal(canon)
	if err != nil {
		// Marshaling plain structs cannot fail; keep the signature clean.
		panic("schema: fingerprint marshal: " + err.Error())
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
