// Package odata builds OData v3 query fragments for contract-based
// endpoints. Expressions are immutable values: every combinator returns a
// new expression and never mutates its operands, so a base filter can be
// shared and extended concurrently.
package odata

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	easyacumatica "github.com/Nioron07/Easy-Acumatica"
)

// Field names a filterable field. Nested fields use path navigation,
// e.g. Field("MainContact").Child("Email") compiles to MainContact/Email.
type Field string

// Child returns the field path one level below f.
func (f Field) Child(name string) Field {
	if f == "" {
		return Field(name)
	}
	return f + "/" + Field(name)
}

// Arith is an arithmetic operand built from fields, literals and other
// Arith values. It stands on either side of a comparison:
// Sub(Field("Price"), 5).Gt(10) compiles to (Price sub 5) gt 10.
type Arith struct {
	op    string
	left  any
	right any
}

// Add builds left add right.
func Add(left, right any) Arith { return Arith{op: "add", left: left, right: right} }

// Sub builds left sub right.
func Sub(left, right any) Arith { return Arith{op: "sub", left: left, right: right} }

// Mul builds left mul right.
func Mul(left, right any) Arith { return Arith{op: "mul", left: left, right: right} }

// Div builds left div right.
func Div(left, right any) Arith { return Arith{op: "div", left: left, right: right} }

// Mod builds left mod right.
func Mod(left, right any) Arith { return Arith{op: "mod", left: left, right: right} }

// Eq builds a eq value.
func (a Arith) Eq(value any) Expr { return Expr{kind: kindComparison, lhs: a, op: "eq", value: value} }

// Ne builds a ne value.
func (a Arith) Ne(value any) Expr { return Expr{kind: kindComparison, lhs: a, op: "ne", value: value} }

// Gt builds a gt value.
func (a Arith) Gt(value any) Expr { return Expr{kind: kindComparison, lhs: a, op: "gt", value: value} }

// Ge builds a ge value.
func (a Arith) Ge(value any) Expr { return Expr{kind: kindComparison, lhs: a, op: "ge", value: value} }

// Lt builds a lt value.
func (a Arith) Lt(value any) Expr { return Expr{kind: kindComparison, lhs: a, op: "lt", value: value} }

// Le builds a le value.
func (a Arith) Le(value any) Expr { return Expr{kind: kindComparison, lhs: a, op: "le", value: value} }

type exprKind uint8

const (
	kindNone exprKind = iota
	kindComparison
	kindFunction
	kindBoolean
	kindNot
)

// Expr is one node of a filter expression. The zero value is the empty
// expression, which compiles to an error.
type Expr struct {
	kind exprKind

	lhs   any // Field or Arith on the left of a comparison
	field Field
	op    string
	value any

	fn  string
	arg any

	left  *Expr
	right *Expr
}

func comparison(op string, field Field, value any) Expr {
	return Expr{kind: kindComparison, lhs: field, op: op, value: value}
}

// Eq builds field eq value.
func Eq(field Field, value any) Expr { return comparison("eq", field, value) }

// Ne builds field ne value.
func Ne(field Field, value any) Expr { return comparison("ne", field, value) }

// Gt builds field gt value.
func Gt(field Field, value any) Expr { return comparison("gt", field, value) }

// Ge builds field ge value.
func Ge(field Field, value any) Expr { return comparison("ge", field, value) }

// Lt builds field lt value.
func Lt(field Field, value any) Expr { return comparison("lt", field, value) }

// Le builds field le value.
func Le(field Field, value any) Expr { return comparison("le", field, value) }

// Contains builds a substring match, substringof('value',Field).
func Contains(field Field, value any) Expr {
	return Expr{kind: kindFunction, fn: "substringof", field: field, arg: value}
}

// StartsWith builds a prefix match, startswith('value',Field).
func StartsWith(field Field, value any) Expr {
	return Expr{kind: kindFunction, fn: "startswith", field: field, arg: value}
}

// EndsWith builds a suffix match, endswith('value',Field).
func EndsWith(field Field, value any) Expr {
	return Expr{kind: kindFunction, fn: "endswith", field: field, arg: value}
}

// And combines two expressions; both operands stay untouched.
func And(a, b Expr) Expr {
	return Expr{kind: kindBoolean, op: "and", left: &a, right: &b}
}

// Or combines two expressions; both operands stay untouched.
func Or(a, b Expr) Expr {
	return Expr{kind: kindBoolean, op: "or", left: &a, right: &b}
}

// Not negates an expression.
func Not(e Expr) Expr {
	return Expr{kind: kindNot, left: &e}
}

// And returns e and other as a new expression.
func (e Expr) And(other Expr) Expr { return And(e, other) }

// Or returns e or other as a new expression.
func (e Expr) Or(other Expr) Expr { return Or(e, other) }

// Zero reports whether e is the empty expression.
func (e Expr) Zero() bool { return e.kind == kindNone }

// Compile renders the expression as OData v3 filter text. Boolean operands
// are always parenthesized, so operator precedence never depends on the
// server's parser.
func (e Expr) Compile() (string, error) {
	var b strings.Builder
	if err := e.compile(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (e Expr) compile(b *strings.Builder) error {
	switch e.kind {
	case kindComparison:
		left, err := encodeOperand(e.lhs, e.op)
		if err != nil {
			return err
		}
		right, err := encodeOperand(e.value, e.op)
		if err != nil {
			return err
		}
		b.WriteString(left)
		b.WriteByte(' ')
		b.WriteString(e.op)
		b.WriteByte(' ')
		b.WriteString(right)
		return nil
	case kindFunction:
		if strings.TrimSpace(string(e.field)) == "" {
			return easyacumatica.NewInvalidFieldError(e.fn)
		}
		lit, err := encodeLiteral(e.arg)
		if err != nil {
			return err
		}
		b.WriteString(e.fn)
		b.WriteByte('(')
		b.WriteString(lit)
		b.WriteByte(',')
		b.WriteString(string(e.field))
		b.WriteByte(')')
		return nil
	case kindBoolean:
		b.WriteByte('(')
		if err := e.left.compile(b); err != nil {
			return err
		}
		b.WriteString(") ")
		b.WriteString(e.op)
		b.WriteString(" (")
		if err := e.right.compile(b); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	case kindNot:
		b.WriteString("not (")
		if err := e.left.compile(b); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	default:
		return easyacumatica.NewInvalidFieldError("")
	}
}

// encodeOperand renders one comparison operand: fields bare, arithmetic
// sub-expressions parenthesized, anything else as a literal.
func encodeOperand(v any, op string) (string, error) {
	switch x := v.(type) {
	case Field:
		if strings.TrimSpace(string(x)) == "" {
			return "", easyacumatica.NewInvalidFieldError(op)
		}
		return string(x), nil
	case Arith:
		left, err := encodeOperand(x.left, x.op)
		if err != nil {
			return "", err
		}
		right, err := encodeOperand(x.right, x.op)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + x.op + " " + right + ")", nil
	default:
		return encodeLiteral(v)
	}
}

// encodeLiteral renders one literal in OData v3 form. Strings double any
// embedded quote, O'Brien becomes 'O''Brien'.
func encodeLiteral(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'", nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return "datetime'" + x.Format("2006-01-02T15:04:05") + "'", nil
	case uuid.UUID:
		return "guid'" + x.String() + "'", nil
	case Field:
		// Field-to-field comparison, rendered bare.
		return string(x), nil
	default:
		return "", easyacumatica.NewUnsupportedLiteralError(v)
	}
}
