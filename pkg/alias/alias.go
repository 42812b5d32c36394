// Package alias compiles an ordered pattern → replacement mapping and applies
// it to module specifier paths.
package alias

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for mapping construction.
var (
	// ErrInvalidPattern indicates a mapping key failed to compile as a regular expression.
	ErrInvalidPattern = errors.New("invalid alias pattern")
	// ErrMalformedEntry indicates a "pattern=replacement" flag value without a separator.
	ErrMalformedEntry = errors.New("malformed alias entry")
)

// entrySeparator splits a flag-style alias entry into pattern and replacement.
const entrySeparator = "="

// Entry is one configured pattern/replacement pair, before compilation.
type Entry struct {
	Pattern     string `json:"pattern"     mapstructure:"pattern"     yaml:"pattern"`
	Replacement string `json:"replacement" mapstructure:"replacement" yaml:"replacement"`
}

// String renders the entry in flag form.
func (e Entry) String() string {
	return e.Pattern + entrySeparator + e.Replacement
}

// ParseEntry parses a "pattern=replacement" flag value. The first "=" separates
// the two halves, so replacements may contain "=" but patterns may not.
func ParseEntry(raw string) (Entry, error) {
	pattern, replacement, ok := strings.Cut(raw, entrySeparator)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q (want pattern=replacement)", ErrMalformedEntry, raw)
	}

	return Entry{Pattern: pattern, Replacement: replacement}, nil
}

// Rule is a compiled mapping entry.
type Rule struct {
	pattern  *regexp.Regexp
	entry    Entry
	template []segment
}

// Pattern returns the compiled regular expression.
func (r *Rule) Pattern() *regexp.Regexp {
	return r.pattern
}

// Entry returns the source entry the rule was compiled from.
func (r *Rule) Entry() Entry {
	return r.entry
}

// Apply substitutes the first match of the rule's pattern in s.
// A string without a match is returned unchanged.
func (r *Rule) Apply(s string) string {
	loc := r.pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s) + len(r.entry.Replacement))
	sb.WriteString(s[:loc[0]])
	expand(&sb, r.template, s, loc)
	sb.WriteString(s[loc[1]:])

	return sb.String()
}

// Mapping is an ordered, immutable list of compiled rules.
// It is safe for concurrent use.
type Mapping struct {
	rules []Rule
}

// Compile compiles entries in order. Patterns are used verbatim: no anchoring
// or escaping is added. The first invalid pattern aborts compilation.
func Compile(entries []Entry) (*Mapping, error) {
	rules := make([]Rule, 0, len(entries))

	for idx, entry := range entries {
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d %q: %w", ErrInvalidPattern, idx, entry.Pattern, err)
		}

		rules = append(rules, Rule{
			pattern:  re,
			entry:    entry,
			template: parseTemplate(entry.Replacement, re),
		})
	}

	return &Mapping{rules: rules}, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(entries ...Entry) *Mapping {
	m, err := Compile(entries)
	if err != nil {
		panic(err)
	}

	return m
}

// Len returns the number of rules.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}

	return len(m.rules)
}

// Entries returns the entries the mapping was compiled from, in order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}

	entries := make([]Entry, len(m.rules))
	for idx := range m.rules {
		entries[idx] = m.rules[idx].entry
	}

	return entries
}

// Replace runs path through every rule in order, each rule seeing the output
// of the previous one. It reports false when the final string equals path.
func (m *Mapping) Replace(path string) (string, bool) {
	if m == nil {
		return "", false
	}

	replaced := path
	for idx := range m.rules {
		replaced = m.rules[idx].Apply(replaced)
	}

	if replaced == path {
		return "", false
	}

	return replaced, true
}
