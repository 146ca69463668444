package ast

import "slices"

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Literal:
		y := b.(*Literal)
		if x.Type != y.Type {
			return false
		}
		switch x.Type {
		case LiteralInt:
			return x.Int == y.Int
		case LiteralReal:
			return x.Real == y.Real
		default:
			return x.Str == y.Str
		}
	case *BinaryOp:
		y := b.(*BinaryOp)
		return x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *UnaryOp:
		y := b.(*UnaryOp)
		return x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *VarRef:
		return x.Name == b.(*VarRef).Name
	case *VarDecl:
		return slices.Equal(x.Names, b.(*VarDecl).Names)
	case *Assign:
		y := b.(*Assign)
		return Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *Call:
		y := b.(*Call)
		return Equal(x.Callee, y.Callee) && equalList(x.Args, y.Args)
	case *Block:
		return equalList(x.Statements, b.(*Block).Statements)
	case *If:
		y := b.(*If)
		return Equal(x.Condition, y.Condition) && Equal(x.Body, y.Body) && Equal(x.Else, y.Else)
	case *Return:
		return Equal(x.Value, b.(*Return).Value)
	case *For:
		y := b.(*For)
		return x.Var == y.Var && Equal(x.Iterable, y.Iterable) && Equal(x.Body, y.Body)
	}
	return false
}

func equalList(a, b []Node) bool {
	return slices.EqualFunc(a, b, Equal)
}
