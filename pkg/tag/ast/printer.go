package ast

import (
	"fmt"
	"io"
	"strings"
)

// Format returns an indented, human-readable rendering of the tree.
func Format(node Node) string {
	var b strings.Builder
	_ = Fprint(&b, node)
	return b.String()
}

// Fprint writes an indented rendering of the tree to w, one node per line.
func Fprint(w io.Writer, node Node) error {
	p := &printer{w: w}
	p.print(node, 0, "")
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, label, format string, args ...any) {
	if p.err != nil {
		return
	}
	prefix := strings.Repeat("  ", depth)
	if label != "" {
		prefix += label + ": "
	}
	_, p.err = fmt.Fprintf(p.w, prefix+format+"\n", args...)
}

func (p *printer) print(node Node, depth int, label string) {
	switch n := node.(type) {
	case nil:
		p.line(depth, label, "<nil>")
	case *Literal:
		p.line(depth, label, "Literal(%s) %s", n.Type, n.String())
	case *BinaryOp:
		p.line(depth, label, "BinaryOp %q", n.Op)
		p.print(n.Left, depth+1, "left")
		p.print(n.Right, depth+1, "right")
	case *UnaryOp:
		p.line(depth, label, "UnaryOp %q", n.Op)
		p.print(n.Operand, depth+1, "operand")
	case *VarRef:
		p.line(depth, label, "VarRef %s", n.Name)
	case *VarDecl:
		p.line(depth, label, "VarDecl %s", strings.Join(n.Names, ", "))
	case *Assign:
		p.line(depth, label, "Assign")
		p.print(n.Target, depth+1, "target")
		p.print(n.Value, depth+1, "value")
	case *Call:
		p.line(depth, label, "Call (%d args)", len(n.Args))
		p.print(n.Callee, depth+1, "callee")
		for i, a := range n.Args {
			p.print(a, depth+1, fmt.Sprintf("arg[%d]", i))
		}
	case *Block:
		p.line(depth, label, "Block (%d statements)", len(n.Statements))
		for _, s := range n.Statements {
			p.print(s, depth+1, "")
		}
	case *If:
		p.line(depth, label, "If")
		p.print(n.Condition, depth+1, "cond")
		p.print(n.Body, depth+1, "then")
		if n.Else != nil {
			p.print(n.Else, depth+1, "else")
		}
	case *Return:
		p.line(depth, label, "Return")
		if n.Value != nil {
			p.print(n.Value, depth+1, "value")
		}
	case *For:
		p.line(depth, label, "For %s", n.Var)
		p.print(n.Iterable, depth+1, "in")
		p.print(n.Body, depth+1, "body")
	default:
		p.line(depth, label, "%T", node)
	}
}
