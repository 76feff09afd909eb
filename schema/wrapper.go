package schema

// WrapperKind enumerates the fixed set of primitive value-wrapper types the
// contract API uses on the wire. Every scalar property is carried inside a
// single-field container ({"value": ...}) named after one of these kinds.
type WrapperKind uint8

// List of wrapper kinds.
const (
	WrapperInvalid WrapperKind = iota
	WrapperString
	WrapperInt
	WrapperDecimal
	WrapperBoolean
	WrapperDateTime
	WrapperGuid
	WrapperShort
	WrapperByte
	WrapperLong
	WrapperDouble
	endWrappers
)

var wrapperNames = [...]string{
	WrapperInvalid:  "invalid",
	WrapperString:   "StringValue",
	WrapperInt:      "IntValue",
	WrapperDecimal:  "DecimalValue",
	WrapperBoolean:  "BooleanValue",
	WrapperDateTime: "DateTimeValue",
	WrapperGuid:     "GuidValue",
	WrapperShort:    "ShortValue",
	WrapperByte:     "ByteValue",
	WrapperLong:     "LongValue",
	WrapperDouble:   "DoubleValue",
}

// String returns the wire name of the wrapper type (e.g. "StringValue").
func (k WrapperKind) String() string {
	if k < endWrappers {
		return wrapperNames[k]
	}
	return wrapperNames[WrapperInvalid]
}

// Valid reports if the given kind is a valid wrapper kind.
func (k WrapperKind) Valid() bool {
	return k > WrapperInvalid && k < endWrappers
}

var wrapperByName = map[string]WrapperKind{
	"StringValue":   WrapperString,
	"IntValue":      WrapperInt,
	"DecimalValue":  WrapperDecimal,
	"BooleanValue":  WrapperBoolean,
	"DateTimeValue": WrapperDateTime,
	"GuidValue":     WrapperGuid,
	"ShortValue":    WrapperShort,
	"ByteValue":     WrapperByte,
	"LongValue":     WrapperLong,
	"DoubleValue":   WrapperDouble,
}

// WrapperByName returns the wrapper kind for a wire type name, and whether
// the name belongs to the wrapper catalog at all.
func WrapperByName(name string) (WrapperKind, bool) {
	k, ok := wrapperByName[name]
	return k, ok
}

// IsWrapperName reports if the given type name is one of the fixed primitive
// wrapper names.
func IsWrapperName(name string) bool {
	_, ok := wrapperByName[name]
	return ok
}

// Catalog returns the full wrapper catalog in declaration order.
func Catalog() []WrapperKind {
	ks := make([]WrapperKind, 0, endWrappers-1)
	for k := WrapperString; k < endWrappers; k++ {
		ks = append(ks, k)
	}
	return ks
}
