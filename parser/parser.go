// Copyright © 2026 The Tcpos Authors under an MIT-style license.

// Package parser implements a back-tracking recursive-descent parser
// driven by a grammar value, with per-position memoization of
// non-terminal results and expectation tracking for diagnostics.
package parser

import (
	"fmt"
	"io"

	"github.com/eaburns/tcpos/grammar"
	"github.com/eaburns/tcpos/loc"
)

// A Parser parses one text against a grammar. The memoization cache
// and the expectation records live for the whole parse, so a Parser
// is good for a single text; make a new one per input.
type Parser struct {
	buf      *TextBuffer
	memo     map[memoKey]*memoEntry
	stack    *ntFrame
	highest  loc.Pos
	expected []expect
	depth    int

	// Trace, if non-nil, receives an enter/leave log of
	// non-terminal parsing.
	Trace io.Writer
}

type memoKey struct {
	off int
	nt  *grammar.NonTerm
}

const (
	memoFail = iota
	memoSuccess
)

type memoEntry struct {
	state int
	val   interface{}
	next  loc.Pos
}

// New returns a parser over text.
func New(text string) *Parser {
	return &Parser{
		buf:     NewTextBuffer(text),
		memo:    make(map[memoKey]*memoEntry),
		highest: loc.Start(),
	}
}

// Parse parses the non-terminal at the current cursor. On success the
// cursor is just past the parsed text; on failure it is unmoved and
// the expectation records say what was expected where.
func (p *Parser) Parse(nt *grammar.NonTerm) (interface{}, bool) {
	return p.parseNT(nt)
}

// AtEnd reports whether the whole text has been consumed.
func (p *Parser) AtEnd() bool { return p.buf.AtEnd() }

// Pos returns the cursor.
func (p *Parser) Pos() loc.Pos { return p.buf.Pos() }

func (p *Parser) parseNT(nt *grammar.NonTerm) (interface{}, bool) {
	key := memoKey{off: p.buf.Pos().Off, nt: nt}
	if ent, ok := p.memo[key]; ok {
		if ent.state == memoSuccess {
			p.buf.SetPos(ent.next)
			return ent.val, true
		}
		return nil, false
	}
	// Pre-mark the entry as failed so that an indirectly recursive
	// call of the same non-terminal at the same position
	// short-circuits instead of recursing forever.
	ent := &memoEntry{state: memoFail}
	p.memo[key] = ent

	p.stack = &ntFrame{name: nt.Name, pos: p.buf.Pos(), parent: p.stack}
	if p.Trace != nil {
		fmt.Fprintf(p.Trace, "%*sEnter: %s at %s\n", p.depth, "", nt.Name, p.buf.Pos())
		p.depth += 2
	}

	var result interface{}
	ok := false
	for _, r := range nt.Rules {
		if v, k := p.parseRule(r.Elems, 0, nil, r); k {
			result, ok = v, true
			break
		}
	}
	if ok {
		// Grow the result through the left-recursive rules until no
		// rule fires, seeding each attempt with the previous result.
		for again := true; again; {
			again = false
			for _, r := range nt.RecRules {
				var seed interface{}
				if r.RecStart != nil {
					s, k := r.RecStart(result)
					if !k {
						continue
					}
					seed = s
				}
				if v, k := p.parseRule(r.Elems, 0, seed, r); k {
					result = v
					again = true
					break
				}
			}
		}
		ent.state = memoSuccess
		ent.val = result
		ent.next = p.buf.Pos()
	}

	if p.Trace != nil {
		p.depth -= 2
		verb := "Parsed"
		if !ok {
			verb = "Failed"
		}
		fmt.Fprintf(p.Trace, "%*s%s: %s at %s\n", p.depth, "", verb, nt.Name, p.buf.Pos())
	}
	p.stack = p.stack.parent
	return result, ok
}

// parseRule parses the rule's elements from index i, carrying the
// accumulator prev. On failure the cursor is restored to where the
// call began.
func (p *Parser) parseRule(elems []*grammar.Elem, i int, prev interface{}, rule *grammar.Rule) (interface{}, bool) {
	if i >= len(elems) {
		if rule == nil || rule.End == nil {
			return prev, true
		}
		return rule.End(prev)
	}
	e := elems[i]

	// An optional element to be avoided: first try skipping it.
	if e.Optional && e.Avoid {
		skip, ok := p.skipElem(e, prev)
		if !ok {
			return nil, false
		}
		if v, ok := p.parseRule(elems, i+1, skip, rule); ok {
			return v, true
		}
	}

	sp := p.buf.Pos()
	if e.Sequence {
		var seqBegin interface{}
		if e.BeginSeq != nil {
			seqBegin = e.BeginSeq(prev)
		}
		if seqElem, ok := p.parseElem(e, seqBegin); ok {
			if e.BackTrack {
				if v, ok := p.parseSeq(e, elems, i, seqElem, prev, rule); ok {
					return v, true
				}
			} else if v, ok := p.parseSeqLoop(e, elems, i, seqElem, prev, rule); ok {
				return v, true
			}
		}
	} else if elemv, ok := p.parseElem(e, prev); ok {
		if v, ok := p.parseRule(elems, i+1, elemv, rule); ok {
			return v, true
		}
	}
	p.buf.SetPos(sp)

	if e.Optional && !e.Avoid {
		skip, ok := p.skipElem(e, prev)
		if !ok {
			return nil, false
		}
		if v, ok := p.parseRule(elems, i+1, skip, rule); ok {
			return v, true
		}
	}
	return nil, false
}

// parseSeqLoop grows a non-back-tracking sequence: it commits items as
// they parse, then tries the rule's remainder once the next item (or
// its chain) fails. With Avoid, ending the sequence is tried before
// each further item.
func (p *Parser) parseSeqLoop(e *grammar.Elem, elems []*grammar.Elem, i int, seqElem, prev interface{}, rule *grammar.Rule) (interface{}, bool) {
loop:
	for {
		if e.Avoid {
			comb, ok := p.addSeq(e, prev, seqElem)
			if !ok {
				break loop
			}
			if v, ok := p.parseRule(elems, i+1, comb, rule); ok {
				return v, true
			}
		}
		sp := p.buf.Pos()
		if e.Chain != nil {
			if _, ok := p.parseRule(e.Chain, 0, nil, nil); !ok {
				break
			}
		}
		next, ok := p.parseElem(e, seqElem)
		if !ok {
			p.buf.SetPos(sp)
			break
		}
		seqElem = next
	}
	if comb, ok := p.addSeq(e, prev, seqElem); ok {
		if v, ok := p.parseRule(elems, i+1, comb, rule); ok {
			return v, true
		}
	}
	return nil, false
}

// parseSeq grows a back-tracking sequence one item at a time: each
// recursion level may end the sequence and parse the rule's remainder,
// or parse one more item (preceded by the chain rule, whose result is
// discarded). With Avoid, ending is tried first.
func (p *Parser) parseSeq(e *grammar.Elem, elems []*grammar.Elem, i int, prevSeq, prev interface{}, rule *grammar.Rule) (interface{}, bool) {
	if e.Avoid {
		comb, ok := p.addSeq(e, prev, prevSeq)
		if !ok {
			return nil, false
		}
		if v, ok := p.parseRule(elems, i+1, comb, rule); ok {
			return v, true
		}
	}
	sp := p.buf.Pos()
	chained := true
	if e.Chain != nil {
		_, chained = p.parseRule(e.Chain, 0, nil, nil)
	}
	if chained {
		if seqElem, ok := p.parseElem(e, prevSeq); ok {
			if v, ok := p.parseSeq(e, elems, i, seqElem, prev, rule); ok {
				return v, true
			}
		}
	}
	p.buf.SetPos(sp)
	if !e.Avoid {
		comb, ok := p.addSeq(e, prev, prevSeq)
		if !ok {
			return nil, false
		}
		if v, ok := p.parseRule(elems, i+1, comb, rule); ok {
			return v, true
		}
	}
	return nil, false
}

// parseElem parses one occurrence of an element, ignoring its optional
// and sequence modifiers.
func (p *Parser) parseElem(e *grammar.Elem, prev interface{}) (interface{}, bool) {
	sp := p.buf.Pos()
	var result interface{}
	switch e.Kind {
	case grammar.NT:
		v, ok := p.parseNT(e.NonTerm)
		if !ok {
			return nil, false
		}
		if e.Cond != nil && !e.Cond(v) {
			p.buf.SetPos(sp)
			return nil, false
		}
		if e.Add == nil {
			result = prev
		} else if result, ok = e.Add(prev, v); !ok {
			p.buf.SetPos(sp)
			return nil, false
		}

	case grammar.Group:
		var ruleResult interface{}
		ok := false
		for _, r := range e.Rules {
			var seed interface{}
			if e.Add == nil {
				seed = prev
			}
			if v, k := p.parseRule(r.Elems, 0, seed, r); k {
				ruleResult, ok = v, true
				break
			}
		}
		if !ok {
			return nil, false
		}
		if e.Add == nil {
			result = ruleResult
		} else if result, ok = e.Add(prev, ruleResult); !ok {
			p.buf.SetPos(sp)
			return nil, false
		}

	case grammar.Eof:
		if !p.buf.AtEnd() {
			p.expectElem(e)
			return nil, false
		}
		result = prev

	case grammar.Char:
		if p.buf.AtEnd() || p.buf.Byte() != e.Ch {
			p.expectElem(e)
			return nil, false
		}
		p.buf.Next()
		if e.AddChar == nil {
			result = prev
		} else {
			var ok bool
			if result, ok = e.AddChar(prev, e.Ch); !ok {
				return nil, false
			}
		}

	case grammar.Set:
		ch := p.buf.Byte()
		if p.buf.AtEnd() || !e.Set.Contains(ch) {
			p.expectElem(e)
			return nil, false
		}
		p.buf.Next()
		if e.AddChar == nil {
			result = prev
		} else {
			var ok bool
			if result, ok = e.AddChar(prev, ch); !ok {
				return nil, false
			}
		}

	case grammar.Term:
		off, v := e.Scan(p.buf.Text(), sp.Off)
		if off <= sp.Off {
			p.expectElem(e)
			return nil, false
		}
		for p.buf.Pos().Off < off {
			p.buf.Next()
		}
		result = v
	}

	if e.SetPos != nil {
		result = e.SetPos(result, sp)
	}
	return result, true
}

func (p *Parser) skipElem(e *grammar.Elem, prev interface{}) (interface{}, bool) {
	switch {
	case e.AddSkip != nil:
		return e.AddSkip(prev)
	case e.Add != nil:
		return e.Add(prev, nil)
	default:
		return prev, true
	}
}

func (p *Parser) addSeq(e *grammar.Elem, prev, seq interface{}) (interface{}, bool) {
	if e.AddSeq == nil {
		return nil, true
	}
	return e.AddSeq(prev, seq)
}
