package parser

import (
	"fmt"
	"strings"
	"sync"

	"tagbot/taglang/pkg/tag/ast"
	tagerrors "tagbot/taglang/pkg/tag/errors"
	"tagbot/taglang/pkg/tag/grammar"
)

// Parser parses tag source into an AST using a compiled grammar.
// A Parser holds no per-call state and is safe for concurrent use.
type Parser struct {
	grammar *grammar.Grammar
}

// New creates a parser for g. It fails if g can produce a tree name the
// builder has no rewrite for.
func New(g *grammar.Grammar) (*Parser, error) {
	if g == nil {
		return nil, fmt.Errorf("parser: grammar is nil")
	}

	var missing []string
	for _, name := range g.Trees() {
		if _, ok := rewrites[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, tagerrors.NewGrammarError(tagerrors.Location{Source: g.Source},
			"grammar %q produces trees with no AST rewrite: %s", g.Name, strings.Join(missing, ", "))
	}

	return &Parser{grammar: g}, nil
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
	defaultErr    error
)

// Default returns a parser for the embedded tag grammar.
func Default() (*Parser, error) {
	defaultOnce.Do(func() {
		g, err := grammar.Default()
		if err != nil {
			defaultErr = err
			return
		}
		defaultParser, defaultErr = New(g)
	})
	return defaultParser, defaultErr
}

// Grammar returns the grammar the parser recognizes.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Parse parses src into an AST. Syntax errors carry the failing position,
// the offending lexeme and surrounding source lines.
func (p *Parser) Parse(src string) (ast.Node, error) {
	tree, err := p.ParseTree(src)
	if err != nil {
		return nil, err
	}

	node, err := Build(tree)
	if err != nil {
		if e, ok := tagerrors.AsError(err); ok {
			tagerrors.AddContextToError(e, src)
		}
		return nil, err
	}
	return node, nil
}

// ParseTree returns the concrete parse tree for src without building an AST.
func (p *Parser) ParseTree(src string) (*grammar.Tree, error) {
	return p.grammar.Recognize(src)
}

// ParseNamed is like Parse but records name as the source of any error location.
func (p *Parser) ParseNamed(name, src string) (ast.Node, error) {
	node, err := p.Parse(src)
	if err != nil {
		if e, ok := tagerrors.AsError(err); ok {
			e.Location.Source = name
		}
		return nil, err
	}
	return node, nil
}
