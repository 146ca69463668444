package grammar

import (
	"fmt"
	"strings"
)

// Position locates a token in the source text.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based, in runes)
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Element is a child of a concrete parse tree: a *Tree, a *Token, or Absent.
type Element interface {
	element()
}

// Token is a lexed terminal.
type Token struct {
	Type  string   // Token name, or the quoted literal for anonymous terminals (e.g. "\"do\"")
	Value string   // Matched text, exactly as written
	Pos   Position // Start position
	// Anonymous is true for literal terminals written inline in rules.
	Anonymous bool
}

// String returns the matched text.
func (t *Token) String() string {
	return t.Value
}

// Tree is an interior node of the concrete parse tree. Data is the rule
// name (or the alternative's alias) that produced it.
type Tree struct {
	Data     string
	Children []Element
	Pos      Position
}

type placeholder struct{}

// Absent is the placeholder a [optional] group leaves behind when it does not match.
var Absent Element = placeholder{}

// IsAbsent reports whether e is the Absent placeholder.
func IsAbsent(e Element) bool {
	_, ok := e.(placeholder)
	return ok
}

func (*Token) element()      {}
func (*Tree) element()       {}
func (placeholder) element() {}

// Pretty renders the tree one node per line, indenting children.
func (t *Tree) Pretty() string {
	var sb strings.Builder
	prettyTree(&sb, t, 0)
	return sb.String()
}

func prettyTree(sb *strings.Builder, t *Tree, depth int) {
	indent := strings.Repeat("  ", depth)
	if len(t.Children) == 1 {
		if tok, ok := t.Children[0].(*Token); ok {
			fmt.Fprintf(sb, "%s%s\t%s\n", indent, t.Data, tok.Value)
			return
		}
	}

	fmt.Fprintf(sb, "%s%s\n", indent, t.Data)
	for _, c := range t.Children {
		switch c := c.(type) {
		case *Tree:
			prettyTree(sb, c, depth+1)
		case *Token:
			fmt.Fprintf(sb, "%s  %s\n", indent, c.Value)
		default:
			fmt.Fprintf(sb, "%s  None\n", indent)
		}
	}
}
