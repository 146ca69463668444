package parser

import "strings"

// Unescape decodes the body of a string literal (without its quotes) left
// to right. \n, \t and \r decode to LF, TAB and CR; a backslash before any
// other character yields that character. A backslash ending the body is
// kept as a literal backslash.
func Unescape(body string) string {
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var sb strings.Builder
	sb.Grow(len(body))

	// Escapes are ASCII, so bytes outside them are copied through as is.
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 == len(body) {
			sb.WriteByte('\\')
			break
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
