package ast

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Print renders sf back to source text. Nodes carried over from the parsed
// tree print their original bytes, so printing an untransformed tree returns
// sf.Text unchanged.
func Print(sf *SourceFile) []byte {
	p := printer{src: sf.Text}
	p.buf.Grow(len(sf.Text))
	p.node(sf)

	return p.buf.Bytes()
}

type printer struct {
	src []byte
	buf bytes.Buffer
}

func (p *printer) node(n Node) {
	switch v := n.(type) {
	case *StringLiteral:
		if v.synthesized {
			p.buf.WriteString(QuoteString(v.Text, v.Quote))

			return
		}
	case *Identifier:
		if !v.rng.IsValid() {
			p.buf.WriteString(v.Text)

			return
		}
	case *ImportKeyword:
		if !v.rng.IsValid() {
			p.buf.WriteString("import")

			return
		}
	}

	rng := n.Range()

	kids := Children(n)
	if len(kids) == 0 {
		p.span(rng.Pos, rng.End)

		return
	}

	cursor := rng.Pos

	for _, kid := range kids {
		kr := kid.Range()
		if kr.IsValid() {
			p.span(cursor, kr.Pos)
		}

		p.node(kid)

		if kr.IsValid() {
			cursor = kr.End
		}
	}

	p.span(cursor, rng.End)
}

func (p *printer) span(from, to int) {
	if from < 0 || to > len(p.src) || from >= to {
		return
	}

	p.buf.Write(p.src[from:to])
}

// QuoteString quotes s as a JavaScript string literal using quote, which
// must be '"' or '\''. Any other value falls back to '"'.
func QuoteString(s string, quote byte) string {
	if quote != '\'' {
		quote = '"'
	}

	var sb strings.Builder

	sb.Grow(len(s) + 2) //nolint:mnd // two quote characters
	sb.WriteByte(quote)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			if unit, ok := surrogateAt(s, i); ok {
				fmt.Fprintf(&sb, `\u%04x`, unit)
				i += 3 //nolint:mnd // encoded surrogate length

				continue
			}

			sb.WriteByte(s[i])
			i++

			continue
		}

		i += size

		switch {
		case r == rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\u2028' || r == '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte(quote)

	return sb.String()
}

// surrogateAt decodes a UTF-16 surrogate stored in its three-byte
// generalized UTF-8 form at s[i:].
func surrogateAt(s string, i int) (rune, bool) {
	if len(s)-i < 3 || s[i] != 0xED || s[i+1] < 0xA0 || s[i+1] > 0xBF || s[i+2]&0xC0 != 0x80 {
		return 0, false
	}

	return rune(s[i]&0x0F)<<12 | rune(s[i+1]&0x3F)<<6 | rune(s[i+2]&0x3F), true
}
