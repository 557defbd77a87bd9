package render

import "strings"

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenBold
	tokenItalic
	tokenCode
	tokenLink
	tokenImage
	tokenColorOpen
	tokenColorClose
)

// token is one inline construct produced by lexInline.
//
// body holds the literal text for tokenText and tokenCode, the raw inner
// markup for tokenBold/tokenItalic (the renderer recurses into it), the
// link label for tokenLink and the alt text for tokenImage.
type token struct {
	kind   tokenKind
	body   string
	target string // link href or image anchor target
	color  string // value for tokenColorOpen
}

// lexInline scans one line of markup into a flat token stream. Delimiters
// that never close are emitted as literal text, so malformed input cannot
// fail; it only degrades. Bold is matched before italic so that **x** is
// not read as nested italics, and color delimiters are matched first so a
// color span can wrap any other construct.
func lexInline(s string) []token {
	var toks []token
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			toks = append(toks, token{kind: tokenText, body: text.String()})
			text.Reset()
		}
	}
	literal := func(n int, i int) int {
		text.WriteString(s[i : i+n])
		return i + n
	}

	i := 0
	for i < len(s) {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, colorClose):
			flush()
			toks = append(toks, token{kind: tokenColorClose})
			i += len(colorClose)

		case strings.HasPrefix(rest, colorOpenPrefix):
			end := strings.IndexByte(rest[len(colorOpenPrefix):], '}')
			if end < 0 {
				i = literal(1, i)
				break
			}
			value := rest[len(colorOpenPrefix) : len(colorOpenPrefix)+end]
			after := i + len(colorOpenPrefix) + end + 1
			if !isColorValue(value) || !strings.Contains(s[after:], colorClose) {
				i = literal(1, i)
				break
			}
			flush()
			toks = append(toks, token{kind: tokenColorOpen, color: value})
			i = after

		case strings.HasPrefix(rest, "!["):
			label, target, width, ok := scanBracketPair(rest[1:])
			if !ok {
				i = literal(1, i)
				break
			}
			flush()
			toks = append(toks, token{kind: tokenImage, body: label, target: target})
			i += 1 + width

		case rest[0] == '[':
			label, target, width, ok := scanBracketPair(rest)
			if !ok {
				i = literal(1, i)
				break
			}
			flush()
			toks = append(toks, token{kind: tokenLink, body: label, target: target})
			i += width

		case rest[0] == '`':
			end := strings.IndexByte(rest[1:], '`')
			if end < 0 {
				i = literal(1, i)
				break
			}
			flush()
			toks = append(toks, token{kind: tokenCode, body: rest[1 : 1+end]})
			i += end + 2

		case strings.HasPrefix(rest, "**"):
			end := strings.Index(rest[2:], "**")
			if end < 0 {
				i = literal(2, i)
				break
			}
			flush()
			toks = append(toks, token{kind: tokenBold, body: rest[2 : 2+end]})
			i += end + 4

		case rest[0] == '*':
			end := strings.IndexByte(rest[1:], '*')
			if end < 0 {
				i = literal(1, i)
				break
			}
			flush()
			toks = append(toks, token{kind: tokenItalic, body: rest[1 : 1+end]})
			i += end + 2

		default:
			i = literal(1, i)
		}
	}
	flush()
	return toks
}

// scanBracketPair reads "[label](target)" from the start of s and returns
// the label, the target and the number of bytes consumed.
func scanBracketPair(s string) (label, target string, width int, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", "", 0, false
	}
	mid := strings.Index(s, "](")
	if mid < 0 {
		return "", "", 0, false
	}
	end := strings.IndexByte(s[mid+2:], ')')
	if end < 0 {
		return "", "", 0, false
	}
	return s[1:mid], s[mid+2 : mid+2+end], mid + 2 + end + 1, true
}

// isColorValue accepts six hex digits prefixed with '#' or a bare color
// name (letters only), per the persisted color span grammar.
func isColorValue(v string) bool {
	if v == "" {
		return false
	}
	if v[0] == '#' {
		if len(v) != 7 {
			return false
		}
		for i := 1; i < len(v); i++ {
			if !isHexDigit(v[i]) {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
