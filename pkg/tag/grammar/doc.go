// Package grammar loads the tag grammar and recognizes source text against it.
//
// A grammar is a YAML resource listing named tokens (regular expressions)
// and rules written in a subset of lark's EBNF notation. The tag grammar is
// embedded in the binary; Default compiles it once and shares it. LoadFile
// loads an alternative grammar, which is useful when evolving the language.
//
// Recognition has two stages. The lexer picks the longest terminal at each
// offset, preferring inline literals and then earlier declared tokens on
// ties. The recognizer is a memoizing (packrat) parser with ordered choice
// that grows directly left-recursive rules, so left-associative operator
// levels can be written the natural way:
//
//	?sum: sum ADD_OP product -> binop | product
//
// The result is a concrete parse tree of *Tree and *Token elements. Inline
// literals are dropped from it, "_rule" and single-child "?rule" matches are
// spliced into their parent, and an [optional] group that did not match
// leaves the Absent placeholder.
//
// Basic usage:
//
//	g := grammar.MustDefault()
//	tree, err := g.Recognize(`if x > 1 do say("big") end`)
//	if err != nil {
//	    // *errors.Error with the failing position and the expected terminals
//	}
//	fmt.Print(tree.Pretty())
package grammar
