package parser

import (
	"fmt"
	"strconv"
	"strings"

	"tagbot/taglang/pkg/tag/ast"
	tagerrors "tagbot/taglang/pkg/tag/errors"
	"tagbot/taglang/pkg/tag/grammar"
)

// rewriteFunc turns one concrete tree into an AST node.
type rewriteFunc func(t *grammar.Tree) (ast.Node, error)

// rewrites holds one rewrite per tree name. It is populated in init because
// the rewrites recurse through build.
var rewrites map[string]rewriteFunc

func init() {
	rewrites = map[string]rewriteFunc{
		grammar.TreeStart:   buildStart,
		grammar.TreeInteger: buildInteger,
		grammar.TreeReal:    buildReal,
		grammar.TreeString:  buildString,
		grammar.TreeBinOp:   buildBinOp,
		grammar.TreeUnary:   buildUnary,
		grammar.TreeRefVar:  buildRefVar,
		grammar.TreeDeclVar: buildDeclVar,
		grammar.TreeAssign:  buildAssign,
		grammar.TreeFnCall:  buildFnCall,
		grammar.TreeDoStmt:  buildDoStmt,
		grammar.TreeIfStmt:  buildIfStmt,
		grammar.TreeRetStmt: buildRetStmt,
		grammar.TreeForLoop: buildForLoop,
	}
}

// Build converts a concrete parse tree into an AST. It never returns a
// partially built node: any shape it does not expect is reported as a
// structural error.
func Build(tree *grammar.Tree) (ast.Node, error) {
	if tree == nil {
		return nil, tagerrors.NewStructuralError(tagerrors.Location{}, "nil parse tree")
	}
	return build(tree)
}

func build(e grammar.Element) (ast.Node, error) {
	switch e := e.(type) {
	case *grammar.Tree:
		rewrite, ok := rewrites[e.Data]
		if !ok {
			return nil, structural(e, "no rewrite for tree %q", e.Data)
		}
		return rewrite(e)
	case *grammar.Token:
		return nil, tagerrors.NewStructuralError(location(e.Pos),
			"expected a tree, found token %s %q", e.Type, e.Value)
	default:
		return nil, tagerrors.NewStructuralError(tagerrors.Location{}, "expected a tree, found a placeholder")
	}
}

func buildStart(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 1); err != nil {
		return nil, err
	}
	return node(t, 0)
}

func buildInteger(t *grammar.Tree) (ast.Node, error) {
	tok, err := token(t)
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		e := tagerrors.NewSyntaxError(location(tok.Pos), tok.Value, nil)
		e.Message = fmt.Sprintf("integer literal %s is out of range", tok.Value)
		return nil, e
	}
	return ast.IntLiteral(v), nil
}

func buildReal(t *grammar.Tree) (ast.Node, error) {
	tok, err := token(t)
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		e := tagerrors.NewSyntaxError(location(tok.Pos), tok.Value, nil)
		e.Message = fmt.Sprintf("real literal %s is out of range", tok.Value)
		return nil, e
	}
	return ast.RealLiteral(v), nil
}

func buildString(t *grammar.Tree) (ast.Node, error) {
	tok, err := token(t)
	if err != nil {
		return nil, err
	}
	v := tok.Value
	if len(v) < 2 || !strings.HasPrefix(v, `"`) || !strings.HasSuffix(v, `"`) {
		return nil, structural(t, "string lexeme %s is not quoted", v)
	}
	return ast.StringLiteral(Unescape(v[1 : len(v)-1])), nil
}

func buildBinOp(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 3); err != nil {
		return nil, err
	}
	left, err := node(t, 0)
	if err != nil {
		return nil, err
	}
	op, err := name(t, 1)
	if err != nil {
		return nil, err
	}
	right, err := node(t, 2)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOp{Left: left, Right: right, Op: op}, nil
}

func buildUnary(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 2); err != nil {
		return nil, err
	}
	op, err := name(t, 0)
	if err != nil {
		return nil, err
	}
	operand, err := node(t, 1)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryOp{Op: op, Operand: operand}, nil
}

func buildRefVar(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 1); err != nil {
		return nil, err
	}
	n, err := name(t, 0)
	if err != nil {
		return nil, err
	}
	return &ast.VarRef{Name: n}, nil
}

func buildDeclVar(t *grammar.Tree) (ast.Node, error) {
	if len(t.Children) == 0 {
		return nil, structural(t, "declvar has no names")
	}
	names := make([]string, len(t.Children))
	for i := range t.Children {
		n, err := name(t, i)
		if err != nil {
			return nil, err
		}
		names[i] = n
	}
	return &ast.VarDecl{Names: names}, nil
}

func buildAssign(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 2); err != nil {
		return nil, err
	}
	target, err := node(t, 0)
	if err != nil {
		return nil, err
	}
	value, err := node(t, 1)
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Target: target, Value: value}, nil
}

// buildFnCall maps the argument placeholder of "f()" to an empty argument list.
func buildFnCall(t *grammar.Tree) (ast.Node, error) {
	if len(t.Children) == 0 {
		return nil, structural(t, "fncall has no callee")
	}
	callee, err := node(t, 0)
	if err != nil {
		return nil, err
	}

	rest := t.Children[1:]
	args := make([]ast.Node, 0, len(rest))
	for _, c := range rest {
		if grammar.IsAbsent(c) {
			return &ast.Call{Callee: callee, Args: []ast.Node{}}, nil
		}
	}
	for i := range rest {
		arg, err := node(t, i+1)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &ast.Call{Callee: callee, Args: args}, nil
}

func buildDoStmt(t *grammar.Tree) (ast.Node, error) {
	stmts := make([]ast.Node, len(t.Children))
	for i := range t.Children {
		s, err := node(t, i)
		if err != nil {
			return nil, err
		}
		stmts[i] = s
	}
	return &ast.Block{Statements: stmts}, nil
}

func buildIfStmt(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 3); err != nil {
		return nil, err
	}
	cond, err := node(t, 0)
	if err != nil {
		return nil, err
	}
	body, err := node(t, 1)
	if err != nil {
		return nil, err
	}
	elseBranch, err := optional(t, 2)
	if err != nil {
		return nil, err
	}
	return &ast.If{Condition: cond, Body: body, Else: elseBranch}, nil
}

func buildRetStmt(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 1); err != nil {
		return nil, err
	}
	value, err := optional(t, 0)
	if err != nil {
		return nil, err
	}
	return &ast.Return{Value: value}, nil
}

func buildForLoop(t *grammar.Tree) (ast.Node, error) {
	if err := arity(t, 3); err != nil {
		return nil, err
	}
	v, err := name(t, 0)
	if err != nil {
		return nil, err
	}
	iterable, err := node(t, 1)
	if err != nil {
		return nil, err
	}
	body, err := node(t, 2)
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: v, Iterable: iterable, Body: body}, nil
}

// arity checks that t has exactly n children.
func arity(t *grammar.Tree, n int) error {
	if len(t.Children) != n {
		return structural(t, "%s has %d children, want %d", t.Data, len(t.Children), n)
	}
	return nil
}

// node builds child i, which must be a tree.
func node(t *grammar.Tree, i int) (ast.Node, error) {
	c := t.Children[i]
	if grammar.IsAbsent(c) {
		return nil, structural(t, "%s: child %d is a placeholder in a mandatory slot", t.Data, i)
	}
	return build(c)
}

// optional builds child i, mapping the placeholder to nil.
func optional(t *grammar.Tree, i int) (ast.Node, error) {
	if grammar.IsAbsent(t.Children[i]) {
		return nil, nil
	}
	return node(t, i)
}

// name returns the text of child i, which must be a token.
func name(t *grammar.Tree, i int) (string, error) {
	tok, ok := t.Children[i].(*grammar.Token)
	if !ok {
		return "", structural(t, "%s: child %d is not a token", t.Data, i)
	}
	return tok.Value, nil
}

// token returns the only child of t, which must be a token.
func token(t *grammar.Tree) (*grammar.Token, error) {
	if err := arity(t, 1); err != nil {
		return nil, err
	}
	tok, ok := t.Children[0].(*grammar.Token)
	if !ok {
		return nil, structural(t, "%s: child is not a token", t.Data)
	}
	return tok, nil
}

func structural(t *grammar.Tree, format string, args ...any) *tagerrors.Error {
	return tagerrors.NewStructuralError(location(t.Pos), format, args...)
}

func location(p grammar.Position) tagerrors.Location {
	return tagerrors.Location{Offset: p.Offset, Line: p.Line, Column: p.Column}
}
