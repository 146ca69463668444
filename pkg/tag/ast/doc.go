// Package ast defines the abstract syntax tree produced by the tag parser.
//
// Node is a closed sum type: the eleven variants below are the only
// implementations, and a type switch over them is exhaustive.
//
// # Core Types
//
// Literal: integer, real or string constant
//
// BinaryOp, UnaryOp: operator applications; Op holds the operator as written
//
// VarRef, VarDecl, Assign: variable reference, declaration and assignment
//
// Call: function call with a callee expression and zero or more arguments
//
// Block, If, For, Return: statements
//
// # Basic Usage
//
//	node, err := tag.Parse(`for x in items do say(x) end`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(ast.Format(node))
//
// # Traversal
//
// Walk calls a Visitor for every node in pre-order; embed BaseVisitor to
// override only the variants of interest. Inspect is the functional form:
//
//	ast.Inspect(node, func(n ast.Node) bool {
//	    if call, ok := n.(*ast.Call); ok {
//	        fmt.Println("call with", len(call.Args), "args")
//	    }
//	    return true
//	})
//
// Trees are immutable once built and may be shared between goroutines.
package ast
