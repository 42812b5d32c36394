package parse

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// unquote decodes a JavaScript string literal including its quotes and
// returns the value and the quote character. Malformed escapes decode to the
// escaped character itself, matching how engines treat unknown escapes.
func unquote(raw string) (string, byte) {
	if len(raw) < 2 { //nolint:mnd // opening and closing quote
		return raw, '"'
	}

	quote := raw[0]
	if quote != '"' && quote != '\'' {
		return raw, '"'
	}

	body := raw[1:]
	if body[len(body)-1] == quote {
		body = body[:len(body)-1]
	}

	if !strings.ContainsRune(body, '\\') {
		return body, quote
	}

	var sb strings.Builder

	sb.Grow(len(body))

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			i++

			continue
		}

		i = decodeEscape(&sb, body, i+1)
	}

	return sb.String(), quote
}

// decodeEscape decodes the escape whose first character is body[i] and
// returns the index just past it.
func decodeEscape(sb *strings.Builder, body string, i int) int {
	c := body[i]

	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '\r':
		if i+1 < len(body) && body[i+1] == '\n' {
			return i + 2 //nolint:mnd // CRLF continuation
		}
	case '\n':
	case 'x':
		if r, ok := hexValue(body, i+1, 2); ok { //nolint:mnd // \xHH
			sb.WriteRune(r)

			return i + 3 //nolint:mnd // x and two digits
		}

		sb.WriteByte(c)
	case 'u':
		return decodeUnicode(sb, body, i)
	default:
		if c >= '0' && c <= '7' {
			return decodeOctal(sb, body, i)
		}

		r, size := utf8.DecodeRuneInString(body[i:])
		if r != '\u2028' && r != '\u2029' {
			sb.WriteRune(r)
		}

		return i + size
	}

	return i + 1
}

// decodeUnicode handles \uHHHH, \u{H...} and UTF-16 surrogate pairs.
func decodeUnicode(sb *strings.Builder, body string, i int) int {
	r, next, ok := unicodeEscape(body, i)
	if !ok {
		sb.WriteByte('u')

		return i + 1
	}

	if utf16.IsSurrogate(r) && next+1 < len(body) && body[next] == '\\' && body[next+1] == 'u' {
		if low, after, lowOK := unicodeEscape(body, next+1); lowOK {
			if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
				sb.WriteRune(pair)

				return after
			}
		}
	}

	writeCodeUnit(sb, r)

	return next
}

// writeCodeUnit writes r as UTF-8. A lone surrogate has no UTF-8 form; its
// three-byte generalized encoding is written instead so that
// ast.QuoteString can restore the \u escape.
func writeCodeUnit(sb *strings.Builder, r rune) {
	if !utf16.IsSurrogate(r) {
		sb.WriteRune(r)

		return
	}

	sb.WriteByte(byte(0xE0 | r>>12))       //nolint:gosec,mnd // surrogates fit in three bytes
	sb.WriteByte(byte(0x80 | (r>>6)&0x3F)) //nolint:gosec,mnd // continuation byte
	sb.WriteByte(byte(0x80 | r&0x3F))      //nolint:gosec,mnd // continuation byte
}

// unicodeEscape parses the escape starting at the 'u' in body[i].
func unicodeEscape(body string, i int) (rune, int, bool) {
	if i+1 < len(body) && body[i+1] == '{' {
		end := strings.IndexByte(body[i+2:], '}')
		if end <= 0 {
			return 0, 0, false
		}

		v, err := strconv.ParseUint(body[i+2:i+2+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}

		return rune(v), i + 3 + end, true //nolint:gosec // bounded by MaxRune
	}

	r, ok := hexValue(body, i+1, 4) //nolint:mnd // \uHHHH
	if !ok {
		return 0, 0, false
	}

	return r, i + 5, true //nolint:mnd // u and four digits
}

// decodeOctal handles \0 and legacy octal escapes of up to three digits.
func decodeOctal(sb *strings.Builder, body string, i int) int {
	end := i + 1
	limit := i + 3 //nolint:mnd // at most three octal digits

	if body[i] > '3' {
		limit = i + 2
	}

	for end < len(body) && end < limit && body[end] >= '0' && body[end] <= '7' {
		end++
	}

	v, _ := strconv.ParseUint(body[i:end], 8, 32) //nolint:errcheck // digits are validated above
	sb.WriteRune(rune(v))                         //nolint:gosec // at most 0377

	return end
}

func hexValue(s string, start, digits int) (rune, bool) {
	if start+digits > len(s) {
		return 0, false
	}

	v, err := strconv.ParseUint(s[start:start+digits], 16, 32)
	if err != nil {
		return 0, false
	}

	return rune(v), true
}
