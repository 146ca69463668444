// Package parser turns tag source text into an AST.
//
// Parsing happens in two steps: the grammar package recognizes the source
// and produces a concrete parse tree, then Build rewrites that tree into
// ast nodes. The rewrite is a pure function with one case per tree name of
// the grammar (the grammar.Tree* constants), so it is reentrant and each
// case can be tested on its own.
//
// Optional slots are normalized on the way: a missing else branch or return
// value becomes a nil Node, and "f()" becomes a Call with an empty Args
// slice. Parse trees the builder does not expect produce a structural error
// rather than a malformed node.
//
// Basic usage:
//
//	p, err := parser.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	node, err := p.Parse(`var a, b`)
package parser
