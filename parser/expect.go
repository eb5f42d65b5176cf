// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package parser

import (
	"fmt"
	"strings"

	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/tcpos/grammar"
	"github.com/eaburns/tcpos/loc"
)

// maxExpected bounds the expectation records kept at the furthest
// position; later records beyond the bound are dropped.
const maxExpected = 200

// An ntFrame is one frame of the expectation stack: the non-terminal
// being parsed and the position where its parse began. Frames link to
// their parent and are shared by the expectation records.
type ntFrame struct {
	name   string
	pos    loc.Pos
	parent *ntFrame
}

type expect struct {
	stack *ntFrame
	elem  *grammar.Elem
}

// expectElem records that e failed at the cursor. Only records at the
// furthest position reached are kept; reaching a later position
// displaces the earlier records.
func (p *Parser) expectElem(e *grammar.Elem) {
	pos := p.buf.Pos()
	if pos.Off < p.highest.Off {
		return
	}
	if pos.Off > p.highest.Off {
		p.highest = pos
		p.expected = p.expected[:0]
	}
	for _, x := range p.expected {
		if x.stack == p.stack && x.elem == e {
			return
		}
	}
	if len(p.expected) < maxExpected {
		p.expected = append(p.expected, expect{stack: p.stack, elem: e})
	}
}

// ErrorPos returns the furthest position any element attempt reached.
func (p *Parser) ErrorPos() loc.Pos { return p.highest }

// Expected renders the expectation records as a readable list: each
// failed element with the stack of non-terminals it was parsed under.
func (p *Parser) Expected() string {
	var s strings.Builder
	fmt.Fprintf(&s, "Expect at %s:\n", p.highest)
	for _, x := range p.expected {
		fmt.Fprintf(&s, "- expect %s", grammar.ElemString(x.elem))
		for f := x.stack; f != nil; f = f.parent {
			fmt.Fprintf(&s, " in %s at %s", f.name, f.pos)
		}
		s.WriteString("\n")
	}
	return s.String()
}

// FailTree renders the expectation records as a peg.Fail tree rooted
// at the named non-terminal, for peg.SimpleError and peg.PrettyWrite.
func (p *Parser) FailTree(name string) *peg.Fail {
	root := &peg.Fail{Name: name, Pos: 0}
	for _, x := range p.expected {
		var frames []*ntFrame
		for f := x.stack; f != nil; f = f.parent {
			frames = append(frames, f)
		}
		parent := root
		for i := len(frames) - 1; i >= 0; i-- {
			kid := &peg.Fail{Name: frames[i].name, Pos: frames[i].pos.Off}
			parent.Kids = append(parent.Kids, kid)
			parent = kid
		}
		parent.Kids = append(parent.Kids, &peg.Fail{
			Pos:  p.highest.Off,
			Want: grammar.ElemString(x.elem),
		})
	}
	return root
}
