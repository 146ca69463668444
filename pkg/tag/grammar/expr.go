package grammar

import (
	"fmt"
	"strings"
	"unicode"
)

// Rule expressions use a subset of the lark EBNF notation:
//
//	alt ('|' alt)*         ordered choice
//	items... '->' alias    name the tree after alias
//	( ... )                group
//	[ ... ]                optional, leaving Absent when it does not match
//	item? item* item+      optional, zero or more, one or more
//	name NAME "lit"        rule, token and anonymous literal references

type exprKind int

const (
	exprSeq exprKind = iota
	exprChoice
	exprRule
	exprToken
	exprLiteral
	exprOptional // [x]
	exprMaybe    // x?
	exprStar
	exprPlus
)

type expr struct {
	kind  exprKind
	name  string // rule or token name, or literal text
	items []*expr
}

// alternative is one top-level branch of a rule.
type alternative struct {
	seq   *expr
	alias string
}

type exprTokenKind int

const (
	etEOF exprTokenKind = iota
	etIdent
	etString
	etPunct
	etArrow
)

type exprLexeme struct {
	kind exprTokenKind
	text string
	col  int
}

func lexExpr(src string) ([]exprLexeme, error) {
	var toks []exprLexeme
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-' && i+1 < len(runes) && runes[i+1] == '>':
			toks = append(toks, exprLexeme{etArrow, "->", i + 1})
			i += 2
		case strings.ContainsRune("|()[]?*+", r):
			toks = append(toks, exprLexeme{etPunct, string(r), i + 1})
			i++
		case r == '"':
			start := i
			var sb strings.Builder
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				sb.WriteRune(runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, fmt.Errorf("unterminated literal at column %d", start+1)
			}
			i++
			if sb.Len() == 0 {
				return nil, fmt.Errorf("empty literal at column %d", start+1)
			}
			toks = append(toks, exprLexeme{etString, sb.String(), start + 1})
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			toks = append(toks, exprLexeme{etIdent, string(runes[start:i]), start + 1})
		default:
			return nil, fmt.Errorf("unexpected character %q at column %d", r, i+1)
		}
	}
	return append(toks, exprLexeme{kind: etEOF, col: len(runes) + 1}), nil
}

type exprParser struct {
	toks []exprLexeme
	pos  int
}

// parseRuleExpr parses a rule body into its top-level alternatives.
func parseRuleExpr(src string) ([]*alternative, error) {
	toks, err := lexExpr(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}

	var alts []*alternative
	for {
		seq, err := p.sequence()
		if err != nil {
			return nil, err
		}
		alt := &alternative{seq: seq}
		if p.peek().kind == etArrow {
			p.pos++
			tok := p.peek()
			if tok.kind != etIdent || !isRuleName(tok.text) {
				return nil, fmt.Errorf("expected alias name after '->' at column %d", tok.col)
			}
			p.pos++
			alt.alias = tok.text
		}
		alts = append(alts, alt)

		if p.isPunct("|") {
			p.pos++
			continue
		}
		break
	}

	if tok := p.peek(); tok.kind != etEOF {
		return nil, fmt.Errorf("unexpected %q at column %d", tok.text, tok.col)
	}
	return alts, nil
}

func (p *exprParser) peek() exprLexeme {
	return p.toks[p.pos]
}

func (p *exprParser) isPunct(s string) bool {
	tok := p.peek()
	return tok.kind == etPunct && tok.text == s
}

// choice parses alternatives inside a group; aliases are only allowed at the top level.
func (p *exprParser) choice() (*expr, error) {
	var items []*expr
	for {
		seq, err := p.sequence()
		if err != nil {
			return nil, err
		}
		items = append(items, seq)
		if !p.isPunct("|") {
			break
		}
		p.pos++
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &expr{kind: exprChoice, items: items}, nil
}

func (p *exprParser) sequence() (*expr, error) {
	seq := &expr{kind: exprSeq}
	for {
		tok := p.peek()
		if tok.kind == etEOF || tok.kind == etArrow || p.isPunct("|") || p.isPunct(")") || p.isPunct("]") {
			return seq, nil
		}
		item, err := p.item()
		if err != nil {
			return nil, err
		}
		seq.items = append(seq.items, item)
	}
}

func (p *exprParser) item() (*expr, error) {
	atom, err := p.atom()
	if err != nil {
		return nil, err
	}
	switch {
	case p.isPunct("?"):
		p.pos++
		return &expr{kind: exprMaybe, items: []*expr{atom}}, nil
	case p.isPunct("*"):
		p.pos++
		return &expr{kind: exprStar, items: []*expr{atom}}, nil
	case p.isPunct("+"):
		p.pos++
		return &expr{kind: exprPlus, items: []*expr{atom}}, nil
	}
	return atom, nil
}

func (p *exprParser) atom() (*expr, error) {
	tok := p.peek()
	switch tok.kind {
	case etIdent:
		p.pos++
		if isTokenName(tok.text) {
			return &expr{kind: exprToken, name: tok.text}, nil
		}
		if isRuleName(tok.text) {
			return &expr{kind: exprRule, name: tok.text}, nil
		}
		return nil, fmt.Errorf("%q is neither a rule (lowercase) nor a token (uppercase) at column %d", tok.text, tok.col)

	case etString:
		p.pos++
		return &expr{kind: exprLiteral, name: tok.text}, nil

	case etPunct:
		if tok.text == "(" || tok.text == "[" {
			closing := ")"
			if tok.text == "[" {
				closing = "]"
			}
			p.pos++
			inner, err := p.choice()
			if err != nil {
				return nil, err
			}
			if !p.isPunct(closing) {
				return nil, fmt.Errorf("expected %q at column %d", closing, p.peek().col)
			}
			p.pos++
			if closing == "]" {
				return &expr{kind: exprOptional, items: []*expr{inner}}, nil
			}
			return inner, nil
		}
	}

	if tok.kind == etEOF {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("unexpected %q at column %d", tok.text, tok.col)
}

func isTokenName(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r == '_' || r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return hasLetter
}

func isRuleName(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			hasLetter = true
		case r == '_' || r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return hasLetter
}

// walk calls f for e and every sub-expression.
func (e *expr) walk(f func(*expr)) {
	f(e)
	for _, it := range e.items {
		it.walk(f)
	}
}

// String renders the expression back in rule notation.
func (e *expr) String() string {
	switch e.kind {
	case exprSeq:
		parts := make([]string, len(e.items))
		for i, it := range e.items {
			parts[i] = it.String()
		}
		return strings.Join(parts, " ")
	case exprChoice:
		parts := make([]string, len(e.items))
		for i, it := range e.items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, " | ") + ")"
	case exprRule, exprToken:
		return e.name
	case exprLiteral:
		return literalName(e.name)
	case exprOptional:
		return "[" + e.items[0].String() + "]"
	case exprMaybe:
		return e.items[0].String() + "?"
	case exprStar:
		return e.items[0].String() + "*"
	case exprPlus:
		return e.items[0].String() + "+"
	}
	return "?"
}

// unbounded marks an open upper bound in childRange.
const unbounded = -1

// childRange returns the minimum and maximum number of tree elements e
// contributes to its parent. visiting guards against recursive inline rules.
func (e *expr) childRange(g *Grammar, visiting map[string]bool) (int, int) {
	switch e.kind {
	case exprLiteral:
		return 0, 0
	case exprToken:
		if strings.HasPrefix(e.name, "_") {
			return 0, 0
		}
		return 1, 1
	case exprRule:
		r := g.rules[e.name]
		if r == nil || !r.Inline {
			return 1, 1
		}
		if visiting[r.Name] {
			return 0, unbounded
		}
		visiting[r.Name] = true
		defer delete(visiting, r.Name)
		lo, hi := -1, 0
		for _, alt := range r.alts {
			l, h := alt.seq.childRange(g, visiting)
			if lo < 0 || l < lo {
				lo = l
			}
			hi = maxBound(hi, h)
		}
		return max(lo, 0), hi
	case exprSeq:
		lo, hi := 0, 0
		for _, it := range e.items {
			l, h := it.childRange(g, visiting)
			lo += l
			if hi == unbounded || h == unbounded {
				hi = unbounded
			} else {
				hi += h
			}
		}
		return lo, hi
	case exprChoice:
		lo, hi := -1, 0
		for _, it := range e.items {
			l, h := it.childRange(g, visiting)
			if lo < 0 || l < lo {
				lo = l
			}
			hi = maxBound(hi, h)
		}
		return max(lo, 0), hi
	case exprOptional:
		l, h := e.items[0].childRange(g, visiting)
		return min(l, 1), maxBound(h, 1)
	case exprMaybe:
		_, h := e.items[0].childRange(g, visiting)
		return 0, h
	case exprStar, exprPlus:
		l, h := e.items[0].childRange(g, visiting)
		if h != 0 {
			h = unbounded
		}
		if e.kind == exprStar {
			l = 0
		}
		return l, h
	}
	return 0, 0
}

func maxBound(a, b int) int {
	if a == unbounded || b == unbounded {
		return unbounded
	}
	return max(a, b)
}
