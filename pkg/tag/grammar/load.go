package grammar

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	tagerrors "tagbot/taglang/pkg/tag/errors"
)

//go:embed tag.yaml
var embeddedGrammar []byte

// EmbeddedSource is the source name of the grammar compiled into the binary.
const EmbeddedSource = "<embedded>/tag.yaml"

var (
	defaultOnce    sync.Once
	defaultGrammar *Grammar
	defaultErr     error
)

// Default returns the embedded tag grammar. It is compiled on first use and
// shared afterwards.
func Default() (*Grammar, error) {
	defaultOnce.Do(func() {
		defaultGrammar, defaultErr = Load(embeddedGrammar, EmbeddedSource)
	})
	return defaultGrammar, defaultErr
}

// MustDefault is like Default but panics if the embedded grammar is broken.
func MustDefault() *Grammar {
	g, err := Default()
	if err != nil {
		panic(fmt.Sprintf("grammar: embedded grammar is invalid: %v", err))
	}
	return g
}

// EmbeddedYAML returns the text of the embedded grammar.
func EmbeddedYAML() []byte {
	return slices.Clone(embeddedGrammar)
}

// LoadFile reads and compiles a grammar file.
func LoadFile(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tagerrors.NewGrammarError(tagerrors.Location{Source: path}, "failed to read grammar: %v", err)
	}
	return Load(data, path)
}

// Load compiles a grammar from YAML. Every problem found is reported in a
// single *errors.ErrorList with YAML line numbers.
func Load(data []byte, source string) (*Grammar, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, tagerrors.NewGrammarError(tagerrors.Location{Source: source}, "invalid YAML: %v", err)
	}
	if len(node.Content) == 0 {
		return nil, tagerrors.NewGrammarError(tagerrors.Location{Source: source}, "grammar is empty")
	}

	g := &Grammar{}
	if err := node.Decode(g); err != nil {
		return nil, tagerrors.NewGrammarError(tagerrors.Location{Source: source}, "invalid grammar structure: %v", err)
	}
	g.Source = source

	if err := g.compile(node.Content[0].Line); err != nil {
		return nil, err
	}
	return g, nil
}

// UnmarshalYAML records the line the token was defined on.
func (t *TokenDef) UnmarshalYAML(value *yaml.Node) error {
	type plain TokenDef
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = TokenDef(p)
	t.Line = value.Line
	return nil
}

// UnmarshalYAML records the line the rule was defined on and splits the
// modifier prefix off the name.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	type plain Rule
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = Rule(p)
	r.Line = value.Line

	switch {
	case strings.HasPrefix(r.Name, "?"):
		r.Expand = true
		r.Name = r.Name[1:]
	case strings.HasPrefix(r.Name, "_"):
		r.Inline = true
	}
	return nil
}

func (g *Grammar) compile(topLine int) error {
	errs := tagerrors.NewErrorList()
	at := func(line int) tagerrors.Location {
		return tagerrors.Location{Source: g.Source, Line: line, Column: 1}
	}
	fail := func(line int, format string, args ...any) {
		errs.Add(tagerrors.NewGrammarError(at(line), format, args...))
	}

	if g.Start == "" {
		fail(topLine, "missing start rule")
	}

	tokens := make(map[string]*TokenDef)
	var named []*terminal
	for i, t := range g.Tokens {
		switch {
		case !isTokenName(t.Name):
			fail(t.Line, "token name %q must be uppercase", t.Name)
			continue
		case tokens[t.Name] != nil:
			fail(t.Line, "token %q already defined on line %d", t.Name, tokens[t.Name].Line)
			continue
		case t.Pattern == "":
			fail(t.Line, "token %q has an empty pattern", t.Name)
			continue
		}
		tokens[t.Name] = t

		re, err := regexp.Compile(`\A(?:` + t.Pattern + `)`)
		if err != nil {
			fail(t.Line, "token %q: invalid pattern: %v", t.Name, err)
			continue
		}
		re.Longest()
		if re.MatchString("") {
			fail(t.Line, "token %q matches the empty string", t.Name)
			continue
		}
		t.re = re
		named = append(named, &terminal{name: t.Name, re: re, order: i})
	}

	g.ignore = make(map[string]bool)
	for _, name := range g.Ignore {
		if tokens[name] == nil {
			fail(topLine, "ignored token %q is not defined", name)
			continue
		}
		g.ignore[name] = true
	}

	g.rules = make(map[string]*Rule)
	for i, r := range g.Rules {
		r.index = i
		switch {
		case !isRuleName(r.Name):
			fail(r.Line, "rule name %q must be lowercase", r.Name)
			continue
		case g.rules[r.Name] != nil:
			fail(r.Line, "rule %q already defined on line %d", r.Name, g.rules[r.Name].Line)
			continue
		}
		g.rules[r.Name] = r

		alts, err := parseRuleExpr(r.Expr)
		if err != nil {
			fail(r.Line, "rule %q: %v", r.Name, err)
			continue
		}
		r.alts = alts
	}

	ruleNames := make([]string, 0, len(g.rules))
	for name := range g.rules {
		ruleNames = append(ruleNames, name)
	}

	literals := make(map[string]bool)
	for _, r := range g.Rules {
		for _, alt := range r.alts {
			alt.seq.walk(func(e *expr) {
				switch e.kind {
				case exprRule:
					if g.rules[e.name] == nil {
						msg := fmt.Sprintf("rule %q references undefined rule %q", r.Name, e.name)
						err := tagerrors.NewGrammarError(at(r.Line), "%s", msg)
						err.Suggestion = tagerrors.SuggestKeyword(e.name, ruleNames)
						errs.Add(err)
					}
				case exprToken:
					if tokens[e.name] == nil {
						fail(r.Line, "rule %q references undefined token %q", r.Name, e.name)
					}
				case exprLiteral:
					literals[e.name] = true
				}
			})
		}
	}

	if start := g.rules[g.Start]; g.Start != "" && start == nil {
		fail(topLine, "start rule %q is not defined", g.Start)
	} else if start != nil && (start.Inline || start.Expand) {
		fail(start.Line, "start rule %q must not be inlined", g.Start)
	}

	if errs.HasErrors() {
		return errs
	}

	// Literals come first so they win ties against named tokens.
	lits := make([]string, 0, len(literals))
	for lit := range literals {
		lits = append(lits, lit)
	}
	slices.Sort(lits)
	g.terminals = make([]*terminal, 0, len(lits)+len(named))
	for _, lit := range lits {
		g.terminals = append(g.terminals, &terminal{name: literalName(lit), literal: lit})
		if isKeyword(lit) {
			g.keywords = append(g.keywords, lit)
		}
	}
	g.terminals = append(g.terminals, named...)

	g.checkLeftRecursion(errs)
	if errs.HasErrors() {
		return errs
	}

	g.trees = g.emittedTrees()
	return nil
}

// checkLeftRecursion marks directly left-recursive rules and rejects
// indirect left recursion, which the recognizer cannot grow.
func (g *Grammar) checkLeftRecursion(errs *tagerrors.ErrorList) {
	nullable := g.nullableRules()

	leftmost := make(map[string]map[string]bool, len(g.Rules))
	for _, r := range g.Rules {
		calls := make(map[string]bool)
		for _, alt := range r.alts {
			leftCalls(alt.seq, nullable, calls)
		}
		leftmost[r.Name] = calls
		r.leftRecursive = calls[r.Name]
	}

	for _, r := range g.Rules {
		for callee := range leftmost[r.Name] {
			if callee == r.Name {
				continue
			}
			if reaches(leftmost, callee, r.Name) {
				errs.Add(tagerrors.NewGrammarError(
					tagerrors.Location{Source: g.Source, Line: r.Line, Column: 1},
					"rule %q is indirectly left-recursive through %q", r.Name, callee))
				break
			}
		}
	}
}

func (g *Grammar) nullableRules() map[string]bool {
	nullable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range g.Rules {
			if nullable[r.Name] {
				continue
			}
			for _, alt := range r.alts {
				if isNullable(alt.seq, nullable) {
					nullable[r.Name] = true
					changed = true
					break
				}
			}
		}
	}
	return nullable
}

func isNullable(e *expr, rules map[string]bool) bool {
	switch e.kind {
	case exprLiteral, exprToken:
		return false
	case exprRule:
		return rules[e.name]
	case exprSeq:
		for _, it := range e.items {
			if !isNullable(it, rules) {
				return false
			}
		}
		return true
	case exprChoice:
		for _, it := range e.items {
			if isNullable(it, rules) {
				return true
			}
		}
		return false
	case exprPlus:
		return isNullable(e.items[0], rules)
	default:
		return true
	}
}

// leftCalls collects the rules e can invoke without consuming a token first.
func leftCalls(e *expr, nullable map[string]bool, calls map[string]bool) {
	switch e.kind {
	case exprRule:
		calls[e.name] = true
	case exprSeq:
		for _, it := range e.items {
			leftCalls(it, nullable, calls)
			if !isNullable(it, nullable) {
				return
			}
		}
	case exprChoice, exprOptional, exprMaybe, exprStar, exprPlus:
		for _, it := range e.items {
			leftCalls(it, nullable, calls)
		}
	}
}

func reaches(graph map[string]map[string]bool, from, to string) bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range graph[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
