// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package grammar

import (
	"fmt"
	"strings"
)

// ElemString renders an element the way it would be written in a rule,
// for use in diagnostics. Expect overrides the rendering when set.
func ElemString(e *Elem) string {
	if e.Expect != "" {
		return e.Expect
	}
	var s strings.Builder
	buildElemString(&s, e)
	return strings.TrimRight(s.String(), " ")
}

// RuleString renders a rule's element list.
func RuleString(r *Rule) string {
	var s strings.Builder
	for _, e := range r.Elems {
		buildElemString(&s, e)
	}
	return strings.TrimRight(s.String(), " ")
}

func buildElemString(s *strings.Builder, e *Elem) {
	switch e.Kind {
	case NT:
		s.WriteString(e.NonTerm.Name)
		s.WriteRune(' ')
	case Group:
		s.WriteRune('(')
		for i, r := range e.Rules {
			if i > 0 {
				s.WriteRune('|')
			}
			for _, inner := range r.Elems {
				buildElemString(s, inner)
			}
		}
		s.WriteRune(')')
	case Char:
		fmt.Fprintf(s, "'%s' ", escapeChar(e.Ch))
	case Set:
		s.WriteString(e.Set.String())
		s.WriteRune(' ')
	case Eof:
		s.WriteString("<eof> ")
	case Term:
		s.WriteString("<term> ")
	}
	if e.Sequence {
		if e.Chain == nil {
			s.WriteString("SEQ ")
		} else {
			s.WriteString("CHAIN (")
			for _, c := range e.Chain {
				buildElemString(s, c)
			}
			s.WriteString(")")
		}
		if e.BackTrack {
			s.WriteString("BACK_TRACKING ")
		}
	}
	if e.Optional {
		s.WriteString("OPT ")
	}
	if e.Avoid {
		s.WriteString("AVOID ")
	}
}

// String renders the set in character-class notation, eliding runs of
// three or more as ranges.
func (set *CharSet) String() string {
	var s strings.Builder
	s.WriteRune('[')
	from := -1
	for c := 0; c <= 256; c++ {
		if c < 256 && set.Contains(byte(c)) {
			if from < 0 {
				from = c
				s.WriteString(escapeChar(byte(c)))
			}
			continue
		}
		if from >= 0 && c-1 > from {
			if c-1 > from+1 {
				s.WriteRune('-')
			}
			s.WriteString(escapeChar(byte(c - 1)))
		}
		from = -1
	}
	s.WriteRune(']')
	return s.String()
}

func escapeChar(ch byte) string {
	switch ch {
	case 0:
		return `\0`
	case '\a':
		return `\a`
	case '\b':
		return `\b`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\v':
		return `\v`
	case '\\':
		return `\\`
	case '-':
		return `\-`
	case ']':
		return `\]`
	}
	if ch < ' ' || ch > '~' {
		return fmt.Sprintf(`\%03o`, ch)
	}
	return string(ch)
}
