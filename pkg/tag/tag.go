package tag

import (
	"fmt"
	"os"

	"tagbot/taglang/pkg/tag/ast"
	"tagbot/taglang/pkg/tag/grammar"
	"tagbot/taglang/pkg/tag/parser"
)

// Parse parses tag source with the embedded grammar.
func Parse(src string) (ast.Node, error) {
	p, err := parser.Default()
	if err != nil {
		return nil, err
	}
	return p.Parse(src)
}

// MustParse is like Parse but panics on error. It is meant for sources
// fixed at compile time, such as tests and built-in tags.
func MustParse(src string) ast.Node {
	node, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("tag: MustParse: %v", err))
	}
	return node
}

// ParseFile reads and parses a tag source file. Error locations name the file.
func ParseFile(path string) (ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p, err := parser.Default()
	if err != nil {
		return nil, err
	}
	return p.ParseNamed(path, string(data))
}

// Tree returns the concrete parse tree of src, for debugging the grammar.
func Tree(src string) (*grammar.Tree, error) {
	p, err := parser.Default()
	if err != nil {
		return nil, err
	}
	return p.ParseTree(src)
}
