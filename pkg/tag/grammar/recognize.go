package grammar

import (
	"slices"

	tagerrors "tagbot/taglang/pkg/tag/errors"
)

// Recognize parses src with the start rule and returns the concrete parse
// tree. The start rule must consume every token. On failure the returned
// error is a *errors.Error of type syntax describing the furthest point the
// recognizer reached.
func (g *Grammar) Recognize(src string) (*Tree, error) {
	toks, end, err := g.lex(src)
	if err != nil {
		if e, ok := tagerrors.AsError(err); ok {
			tagerrors.AddContextToError(e, src)
		}
		return nil, err
	}

	r := &recognizer{
		g:        g,
		toks:     toks,
		end:      end,
		memo:     make(map[memoKey]*memoEntry),
		furthest: -1,
	}

	res := r.apply(g.rules[g.Start], 0)
	if res.ok && res.end == len(toks) && len(res.elems) == 1 {
		if tree, ok := res.elems[0].(*Tree); ok {
			return tree, nil
		}
	}
	if res.ok {
		r.expect(res.end, tagerrors.EOF)
	}
	return nil, r.syntaxError(src)
}

type memoKey struct {
	rule int
	pos  int
}

type memoEntry struct {
	ok    bool
	end   int
	elems []Element
}

// recognizer is a packrat parser over one token stream. Rules are memoized
// per (rule, position); directly left-recursive rules are grown from a
// failing seed until the match stops getting longer.
type recognizer struct {
	g    *Grammar
	toks []*Token
	end  Position
	memo map[memoKey]*memoEntry

	furthest int
	expected map[string]bool
}

func (r *recognizer) apply(rule *Rule, pos int) *memoEntry {
	key := memoKey{rule: rule.index, pos: pos}
	if m, ok := r.memo[key]; ok {
		return m
	}

	if !rule.leftRecursive {
		m := r.evalRule(rule, pos)
		r.memo[key] = m
		return m
	}

	r.memo[key] = &memoEntry{}
	for {
		m := r.evalRule(rule, pos)
		prev := r.memo[key]
		if !m.ok || (prev.ok && m.end <= prev.end) {
			break
		}
		r.memo[key] = m
	}
	return r.memo[key]
}

func (r *recognizer) evalRule(rule *Rule, pos int) *memoEntry {
	for _, alt := range rule.alts {
		end, children, ok := r.match(alt.seq, pos, nil)
		if !ok {
			continue
		}
		return &memoEntry{ok: true, end: end, elems: r.shape(rule, alt, children, pos)}
	}
	return &memoEntry{}
}

// shape applies the tree-building conventions to a matched alternative.
func (r *recognizer) shape(rule *Rule, alt *alternative, children []Element, pos int) []Element {
	switch {
	case alt.alias != "":
		return []Element{&Tree{Data: alt.alias, Children: children, Pos: r.position(pos)}}
	case rule.Inline:
		return children
	case rule.Expand && len(children) == 1:
		return children
	default:
		return []Element{&Tree{Data: rule.Name, Children: children, Pos: r.position(pos)}}
	}
}

// match matches e at token index pos, appending kept elements to out.
// On failure it returns pos and the original out.
func (r *recognizer) match(e *expr, pos int, out []Element) (int, []Element, bool) {
	switch e.kind {
	case exprLiteral:
		if pos < len(r.toks) && r.toks[pos].Anonymous && r.toks[pos].Value == e.name {
			return pos + 1, out, true
		}
		r.expect(pos, literalName(e.name))
		return pos, out, false

	case exprToken:
		if pos < len(r.toks) && !r.toks[pos].Anonymous && r.toks[pos].Type == e.name {
			if e.name[0] != '_' {
				out = append(out, r.toks[pos])
			}
			return pos + 1, out, true
		}
		r.expect(pos, e.name)
		return pos, out, false

	case exprRule:
		res := r.apply(r.g.rules[e.name], pos)
		if !res.ok {
			return pos, out, false
		}
		return res.end, append(out, res.elems...), true

	case exprSeq:
		orig, cur := out, pos
		for _, it := range e.items {
			var ok bool
			cur, out, ok = r.match(it, cur, out)
			if !ok {
				return pos, orig, false
			}
		}
		return cur, out, true

	case exprChoice:
		for _, it := range e.items {
			if end, o, ok := r.match(it, pos, out); ok {
				return end, o, true
			}
		}
		return pos, out, false

	case exprOptional:
		if end, o, ok := r.match(e.items[0], pos, out); ok {
			return end, o, true
		}
		return pos, append(out, Absent), true

	case exprMaybe:
		if end, o, ok := r.match(e.items[0], pos, out); ok {
			return end, o, true
		}
		return pos, out, true

	case exprStar, exprPlus:
		orig, cur, count := out, pos, 0
		for {
			end, o, ok := r.match(e.items[0], cur, out)
			if !ok {
				break
			}
			out = o
			count++
			if end == cur {
				break
			}
			cur = end
		}
		if e.kind == exprPlus && count == 0 {
			return pos, orig, false
		}
		return cur, out, true
	}
	return pos, out, false
}

// expect records that terminal name would have been accepted at pos.
func (r *recognizer) expect(pos int, name string) {
	if pos > r.furthest {
		r.furthest = pos
		r.expected = make(map[string]bool)
	}
	if pos == r.furthest {
		r.expected[name] = true
	}
}

func (r *recognizer) position(pos int) Position {
	if pos < len(r.toks) {
		return r.toks[pos].Pos
	}
	return r.end
}

func (r *recognizer) syntaxError(src string) error {
	pos := max(r.furthest, 0)
	lexeme := tagerrors.EOF
	if pos < len(r.toks) {
		lexeme = r.toks[pos].Value
	}

	expected := make([]string, 0, len(r.expected))
	for name := range r.expected {
		expected = append(expected, name)
	}
	slices.Sort(expected)

	err := tagerrors.NewSyntaxError(location(r.position(pos)), lexeme, expected)
	err.Suggestion = tagerrors.SuggestForSyntax(lexeme, expected, r.g.keywords)
	return tagerrors.AddContextToError(err, src)
}
