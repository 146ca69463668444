package ast

import "fmt"

// Visitor provides an interface for traversing the AST.
// Implement this interface to perform operations on AST nodes
// (analysis, collection, lowering, etc.). Embed BaseVisitor to
// implement only the methods you need.
type Visitor interface {
	VisitLiteral(*Literal) error
	VisitBinaryOp(*BinaryOp) error
	VisitUnaryOp(*UnaryOp) error
	VisitVarRef(*VarRef) error
	VisitVarDecl(*VarDecl) error
	VisitAssign(*Assign) error
	VisitCall(*Call) error
	VisitBlock(*Block) error
	VisitIf(*If) error
	VisitReturn(*Return) error
	VisitFor(*For) error
}

// BaseVisitor implements Visitor with methods that do nothing.
type BaseVisitor struct{}

func (BaseVisitor) VisitLiteral(*Literal) error   { return nil }
func (BaseVisitor) VisitBinaryOp(*BinaryOp) error { return nil }
func (BaseVisitor) VisitUnaryOp(*UnaryOp) error   { return nil }
func (BaseVisitor) VisitVarRef(*VarRef) error     { return nil }
func (BaseVisitor) VisitVarDecl(*VarDecl) error   { return nil }
func (BaseVisitor) VisitAssign(*Assign) error     { return nil }
func (BaseVisitor) VisitCall(*Call) error         { return nil }
func (BaseVisitor) VisitBlock(*Block) error       { return nil }
func (BaseVisitor) VisitIf(*If) error             { return nil }
func (BaseVisitor) VisitReturn(*Return) error     { return nil }
func (BaseVisitor) VisitFor(*For) error           { return nil }

// Walk traverses the AST depth-first in pre-order, calling the visitor for
// each node. Nil children (absent else branch, bare return) are skipped.
// It returns the first error encountered, or nil if traversal completes.
func Walk(node Node, visitor Visitor) error {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Literal:
		return visitor.VisitLiteral(n)

	case *BinaryOp:
		if err := visitor.VisitBinaryOp(n); err != nil {
			return err
		}
		return walkAll(visitor, n.Left, n.Right)

	case *UnaryOp:
		if err := visitor.VisitUnaryOp(n); err != nil {
			return err
		}
		return Walk(n.Operand, visitor)

	case *VarRef:
		return visitor.VisitVarRef(n)

	case *VarDecl:
		return visitor.VisitVarDecl(n)

	case *Assign:
		if err := visitor.VisitAssign(n); err != nil {
			return err
		}
		return walkAll(visitor, n.Target, n.Value)

	case *Call:
		if err := visitor.VisitCall(n); err != nil {
			return err
		}
		if err := Walk(n.Callee, visitor); err != nil {
			return err
		}
		return walkAll(visitor, n.Args...)

	case *Block:
		if err := visitor.VisitBlock(n); err != nil {
			return err
		}
		return walkAll(visitor, n.Statements...)

	case *If:
		if err := visitor.VisitIf(n); err != nil {
			return err
		}
		return walkAll(visitor, n.Condition, n.Body, n.Else)

	case *Return:
		if err := visitor.VisitReturn(n); err != nil {
			return err
		}
		return Walk(n.Value, visitor)

	case *For:
		if err := visitor.VisitFor(n); err != nil {
			return err
		}
		return walkAll(visitor, n.Iterable, n.Body)

	default:
		return fmt.Errorf("ast: unexpected node type %T", node)
	}
}

func walkAll(visitor Visitor, nodes ...Node) error {
	for _, n := range nodes {
		if err := Walk(n, visitor); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the direct child nodes of n in source order, omitting nil slots.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *BinaryOp:
		add(n.Left, n.Right)
	case *UnaryOp:
		add(n.Operand)
	case *Assign:
		add(n.Target, n.Value)
	case *Call:
		add(n.Callee)
		add(n.Args...)
	case *Block:
		add(n.Statements...)
	case *If:
		add(n.Condition, n.Body, n.Else)
	case *Return:
		add(n.Value)
	case *For:
		add(n.Iterable, n.Body)
	}
	return out
}

// Inspect traverses the AST in pre-order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, c := range Children(node) {
		Inspect(c, f)
	}
}

// Count returns the number of nodes in the tree rooted at node.
func Count(node Node) int {
	count := 0
	Inspect(node, func(Node) bool {
		count++
		return true
	})
	return count
}
