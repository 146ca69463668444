package ast

import "strconv"

// LiteralType represents the type of a literal value.
type LiteralType int

const (
	LiteralInt    LiteralType = iota // Integer, stored in Int
	LiteralReal                      // Real, stored in Real
	LiteralString                    // String, stored in Str (escapes already decoded)
)

// String returns the literal type name.
func (t LiteralType) String() string {
	switch t {
	case LiteralInt:
		return "integer"
	case LiteralReal:
		return "real"
	case LiteralString:
		return "string"
	default:
		return "unknown"
	}
}

// Literal is a constant value. Only the field selected by Type is meaningful.
type Literal struct {
	Type LiteralType
	Int  int64
	Real float64
	Str  string
}

// IntLiteral returns an integer literal.
func IntLiteral(v int64) *Literal {
	return &Literal{Type: LiteralInt, Int: v}
}

// RealLiteral returns a real literal.
func RealLiteral(v float64) *Literal {
	return &Literal{Type: LiteralReal, Real: v}
}

// StringLiteral returns a string literal.
func StringLiteral(v string) *Literal {
	return &Literal{Type: LiteralString, Str: v}
}

// Value returns the literal's value as int64, float64 or string.
func (l *Literal) Value() any {
	switch l.Type {
	case LiteralInt:
		return l.Int
	case LiteralReal:
		return l.Real
	default:
		return l.Str
	}
}

// String renders the literal the way it would be written in source.
func (l *Literal) String() string {
	switch l.Type {
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralReal:
		s := strconv.FormatFloat(l.Real, 'f', -1, 64)
		for _, c := range s {
			if c == '.' || c == 'e' || c == 'I' || c == 'N' {
				return s
			}
		}
		return s + ".0"
	default:
		return strconv.Quote(l.Str)
	}
}
