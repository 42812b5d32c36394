package alias

import (
	"regexp"
	"strings"
)

// segmentKind identifies what a replacement template segment expands to.
type segmentKind int

const (
	segLiteral segmentKind = iota
	segGroup               // numbered or named capture group
	segPrefix              // text before the match ($`)
	segSuffix              // text after the match ($')
)

// maxGroupDigits is the longest numeric group reference ($nn).
const maxGroupDigits = 2

type segment struct {
	text  string
	kind  segmentKind
	group int
}

// parseTemplate splits a replacement string into segments using the
// String.prototype.replace token set: $$, $&, $`, $', $n, $nn and $<name>.
// Tokens that do not resolve against re are kept as literal text.
func parseTemplate(replacement string, re *regexp.Regexp) []segment {
	if !strings.Contains(replacement, "$") {
		return []segment{{kind: segLiteral, text: replacement}}
	}

	var (
		segs    []segment
		literal strings.Builder
	)

	flush := func() {
		if literal.Len() > 0 {
			segs = append(segs, segment{kind: segLiteral, text: literal.String()})
			literal.Reset()
		}
	}

	groups := re.NumSubexp()
	hasNames := hasNamedGroups(re)

	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '$' || i+1 >= len(replacement) {
			literal.WriteByte(c)

			continue
		}

		next := replacement[i+1]

		switch {
		case next == '$':
			literal.WriteByte('$')
			i++
		case next == '&':
			flush()
			segs = append(segs, segment{kind: segGroup, group: 0})
			i++
		case next == '`':
			flush()
			segs = append(segs, segment{kind: segPrefix})
			i++
		case next == '\'':
			flush()
			segs = append(segs, segment{kind: segSuffix})
			i++
		case isDigit(next):
			group, width := groupReference(replacement[i+1:], groups)
			if width == 0 {
				literal.WriteByte(c)

				continue
			}

			flush()
			segs = append(segs, segment{kind: segGroup, group: group})
			i += width
		case next == '<' && hasNames:
			end := strings.IndexByte(replacement[i+2:], '>')
			if end < 0 {
				literal.WriteByte(c)

				continue
			}

			name := replacement[i+2 : i+2+end]

			flush()
			// An unknown name expands to the empty string.
			segs = append(segs, segment{kind: segGroup, group: re.SubexpIndex(name)})
			i += end + 2
		default:
			literal.WriteByte(c)
		}
	}

	flush()

	return segs
}

// groupReference resolves the digits following a '$'. Two digits win when
// they name an existing group; otherwise one digit is used. Group 0 and
// groups beyond the pattern's count are not references (width 0).
func groupReference(digits string, groups int) (group, width int) {
	if len(digits) >= maxGroupDigits && isDigit(digits[1]) {
		two := int(digits[0]-'0')*10 + int(digits[1]-'0')
		if two >= 1 && two <= groups {
			return two, maxGroupDigits
		}
	}

	one := int(digits[0] - '0')
	if one >= 1 && one <= groups {
		return one, 1
	}

	return 0, 0
}

func hasNamedGroups(re *regexp.Regexp) bool {
	for _, name := range re.SubexpNames() {
		if name != "" {
			return true
		}
	}

	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// expand writes the template for the match at loc into sb.
func expand(sb *strings.Builder, segs []segment, src string, loc []int) {
	for _, seg := range segs {
		switch seg.kind {
		case segLiteral:
			sb.WriteString(seg.text)
		case segPrefix:
			sb.WriteString(src[:loc[0]])
		case segSuffix:
			sb.WriteString(src[loc[1]:])
		case segGroup:
			if seg.group < 0 || 2*seg.group+1 >= len(loc) {
				continue
			}

			start, end := loc[2*seg.group], loc[2*seg.group+1]
			if start >= 0 {
				sb.WriteString(src[start:end])
			}
		}
	}
}
