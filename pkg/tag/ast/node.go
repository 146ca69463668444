package ast

import "fmt"

// NodeKind discriminates the closed set of AST variants.
type NodeKind int

const (
	KindLiteral  NodeKind = iota // Literal value
	KindBinaryOp                 // left op right
	KindUnaryOp                  // op operand
	KindVarRef                   // Variable reference
	KindVarDecl                  // var a, b, c
	KindAssign                   // target = value
	KindCall                     // callee(args...)
	KindBlock                    // do ... end
	KindIf                       // if cond do ... end [else ...]
	KindReturn                   // return [value]
	KindFor                      // for name in iterable do ... end
)

var kindNames = [...]string{
	KindLiteral:  "literal",
	KindBinaryOp: "binop",
	KindUnaryOp:  "unary",
	KindVarRef:   "refvar",
	KindVarDecl:  "declvar",
	KindAssign:   "assign",
	KindCall:     "fncall",
	KindBlock:    "dostmt",
	KindIf:       "ifstmt",
	KindReturn:   "retstmt",
	KindFor:      "forloop",
}

// String returns the kind's wire name (the name used in JSON output).
func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is a tag AST node. The set of implementations is closed: only the
// variants declared in this package satisfy it.
type Node interface {
	Kind() NodeKind
	node()
}

// BinaryOp is a binary expression. Op is the operator exactly as written.
type BinaryOp struct {
	Left  Node
	Right Node
	Op    string
}

// UnaryOp is a prefix expression.
type UnaryOp struct {
	Op      string
	Operand Node
}

// VarRef references a variable by name.
type VarRef struct {
	Name string
}

// VarDecl declares one or more variables, in declaration order. Duplicates are kept.
type VarDecl struct {
	Names []string
}

// Assign stores Value into Target. Target is expected to be lvalue-shaped
// (typically a VarRef) but the parser does not enforce it.
type Assign struct {
	Target Node
	Value  Node
}

// Call invokes Callee. Args is empty, never nil-padded, when the call has no arguments.
type Call struct {
	Callee Node
	Args   []Node
}

// Block is a do ... end sequence of statements in source order.
type Block struct {
	Statements []Node
}

// If is a conditional. Else is nil when there is no else clause.
type If struct {
	Condition Node
	Body      Node
	Else      Node
}

// Return leaves the enclosing function. Value is nil for a bare return.
type Return struct {
	Value Node
}

// For iterates Var over Iterable, running Body each time.
type For struct {
	Var      string
	Iterable Node
	Body     Node
}

func (*Literal) Kind() NodeKind  { return KindLiteral }
func (*BinaryOp) Kind() NodeKind { return KindBinaryOp }
func (*UnaryOp) Kind() NodeKind  { return KindUnaryOp }
func (*VarRef) Kind() NodeKind   { return KindVarRef }
func (*VarDecl) Kind() NodeKind  { return KindVarDecl }
func (*Assign) Kind() NodeKind   { return KindAssign }
func (*Call) Kind() NodeKind     { return KindCall }
func (*Block) Kind() NodeKind    { return KindBlock }
func (*If) Kind() NodeKind       { return KindIf }
func (*Return) Kind() NodeKind   { return KindReturn }
func (*For) Kind() NodeKind      { return KindFor }

func (*Literal) node()  {}
func (*BinaryOp) node() {}
func (*UnaryOp) node()  {}
func (*VarRef) node()   {}
func (*VarDecl) node()  {}
func (*Assign) node()   {}
func (*Call) node()     {}
func (*Block) node()    {}
func (*If) node()       {}
func (*Return) node()   {}
func (*For) node()      {}

// HasElse returns true if the conditional has an else clause.
func (n *If) HasElse() bool {
	return n.Else != nil
}

// HasValue returns true if the return carries an expression.
func (n *Return) HasValue() bool {
	return n.Value != nil
}
