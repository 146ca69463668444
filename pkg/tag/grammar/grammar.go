package grammar

import (
	"regexp"
	"slices"
	"strings"
)

// Tree names the tag grammar emits. The parser's rewrite table is keyed by
// these constants, and parser.New checks every name a grammar can emit has
// a rewrite.
const (
	TreeStart   = "start"
	TreeInteger = "integer"
	TreeReal    = "real"
	TreeString  = "string"
	TreeBinOp   = "binop"
	TreeUnary   = "unary"
	TreeRefVar  = "refvar"
	TreeDeclVar = "declvar"
	TreeAssign  = "assign"
	TreeFnCall  = "fncall"
	TreeDoStmt  = "dostmt"
	TreeIfStmt  = "ifstmt"
	TreeRetStmt = "retstmt"
	TreeForLoop = "forloop"
)

// TreeNames lists every tree name of the tag grammar.
var TreeNames = []string{
	TreeStart, TreeInteger, TreeReal, TreeString, TreeBinOp, TreeUnary, TreeRefVar,
	TreeDeclVar, TreeAssign, TreeFnCall, TreeDoStmt, TreeIfStmt, TreeRetStmt, TreeForLoop,
}

// Grammar is a compiled grammar. It is immutable after loading and safe for
// concurrent use by any number of recognizers.
type Grammar struct {
	Name    string      `yaml:"name"`
	Version string      `yaml:"version"`
	Start   string      `yaml:"start"`
	Ignore  []string    `yaml:"ignore"`
	Tokens  []*TokenDef `yaml:"tokens"`
	Rules   []*Rule     `yaml:"rules"`
	Source  string      `yaml:"-"` // File the grammar was loaded from

	terminals []*terminal
	rules     map[string]*Rule
	ignore    map[string]bool
	keywords  []string
	trees     []string
}

// TokenDef is a named terminal defined by a regular expression.
type TokenDef struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Line    int    `yaml:"-"`

	re *regexp.Regexp
}

// Rule is a grammar production. Name is stored without its modifier prefix.
type Rule struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
	Line int    `yaml:"-"`

	// Inline rules ("_name") always splice their children into the parent.
	Inline bool `yaml:"-"`
	// Expand rules ("?name") splice when an unaliased alternative matched one child.
	Expand bool `yaml:"-"`

	alts          []*alternative
	leftRecursive bool
	index         int
}

// Rule returns the named rule, or nil.
func (g *Grammar) Rule(name string) *Rule {
	return g.rules[name]
}

// Keywords returns the identifier-like literal terminals (e.g. "if", "end")
// in sorted order.
func (g *Grammar) Keywords() []string {
	return slices.Clone(g.keywords)
}

// Trees returns, sorted, every tree name a parse with this grammar can produce.
func (g *Grammar) Trees() []string {
	return slices.Clone(g.trees)
}

// terminal is anything the lexer can produce: a named token or an anonymous literal.
type terminal struct {
	name    string // Token name, or the quoted literal
	literal string // Literal text; empty for named tokens
	re      *regexp.Regexp
	order   int
}

func (t *terminal) anonymous() bool {
	return t.literal != ""
}

func literalName(lit string) string {
	return `"` + lit + `"`
}

// emittedTrees derives the tree names a parse can produce: every alias, and
// the rule's own name unless it is inline or an expand rule whose unaliased
// alternatives always match exactly one child.
func (g *Grammar) emittedTrees() []string {
	seen := make(map[string]bool)
	for _, r := range g.Rules {
		for _, alt := range r.alts {
			if alt.alias != "" {
				seen[alt.alias] = true
				continue
			}
			if r.Inline {
				continue
			}
			if r.Expand {
				lo, hi := alt.seq.childRange(g, make(map[string]bool))
				if lo == 1 && hi == 1 {
					continue
				}
			}
			seen[r.Name] = true
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func isKeyword(lit string) bool {
	if lit == "" {
		return false
	}
	return strings.IndexFunc(lit, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}
