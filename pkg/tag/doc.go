// Package tag is the front end of the tag scripting language: it turns the
// source of a chat tag into a typed abstract syntax tree for an evaluator.
//
// The work is split across subpackages:
//
//	grammar  grammar resource, lexer and recognizer (concrete parse trees)
//	parser   builds ast nodes from parse trees
//	ast      the node types, traversal, printing and JSON encoding
//	errors   syntax, structural and grammar errors with source context
//
// This package offers the common entry points:
//
//	node, err := tag.Parse(`for x in args() do say(x) end`)
//	if err != nil {
//	    var e *errors.Error
//	    // e.Summary() is suitable for a chat reply
//	}
//	fmt.Print(ast.Format(node))
//
// Parsing has no side effects and allocates a fresh tree per call, so the
// functions here may be called from any number of goroutines.
package tag
