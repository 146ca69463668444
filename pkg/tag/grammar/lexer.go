package grammar

import (
	"strings"
	"unicode/utf8"

	tagerrors "tagbot/taglang/pkg/tag/errors"
)

// Tokenize splits src into terminals, dropping the ones the grammar ignores.
func (g *Grammar) Tokenize(src string) ([]*Token, error) {
	toks, _, err := g.lex(src)
	return toks, err
}

// lex returns the token stream and the position just past the end of src.
// At each offset the longest match wins; ties go to anonymous literals,
// then to the earliest declared token.
func (g *Grammar) lex(src string) ([]*Token, Position, error) {
	var toks []*Token
	pos := Position{Offset: 0, Line: 1, Column: 1}

	for pos.Offset < len(src) {
		rest := src[pos.Offset:]

		var best *terminal
		bestLen := 0
		for _, t := range g.terminals {
			n := 0
			if t.anonymous() {
				if strings.HasPrefix(rest, t.literal) {
					n = len(t.literal)
				}
			} else if loc := t.re.FindStringIndex(rest); loc != nil {
				n = loc[1]
			}
			if n > bestLen {
				best, bestLen = t, n
			}
		}

		if best == nil {
			r, _ := utf8.DecodeRuneInString(rest)
			return nil, pos, tagerrors.NewSyntaxError(location(pos), string(r), nil)
		}

		text := rest[:bestLen]
		if !g.ignore[best.name] {
			toks = append(toks, &Token{
				Type:      best.name,
				Value:     text,
				Pos:       pos,
				Anonymous: best.anonymous(),
			})
		}
		pos = advance(pos, text)
	}

	return toks, pos, nil
}

func advance(pos Position, text string) Position {
	pos.Offset += len(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		pos.Line += strings.Count(text, "\n")
		pos.Column = utf8.RuneCountInString(text[i+1:]) + 1
		return pos
	}
	pos.Column += utf8.RuneCountInString(text)
	return pos
}

func location(pos Position) tagerrors.Location {
	return tagerrors.Location{Offset: pos.Offset, Line: pos.Line, Column: pos.Column}
}
