// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package syntax

import (
	"github.com/eaburns/tcpos/grammar"
	"github.com/eaburns/tcpos/loc"
	"github.com/eaburns/tcpos/tree"
)

// Hooks shared by the token grammars.

func passToSequence(prev interface{}) interface{} { return prev }

func useSequenceResult(prev, seq interface{}) (interface{}, bool) { return seq, true }

// Character sets of the token grammars.
var (
	wsChars      = grammar.NewCharSet().Add(' ').Add('\t').Add('\n').Add('\r')
	lineChars    = grammar.NewCharSet().Range(' ', 255).Add('\t')
	commentChars = grammar.NewCharSet().Range(' ', 255).Add('\t').Add('\n').Add('\r')
	identStart   = grammar.NewCharSet().Range('a', 'z').Range('A', 'Z').Add('_')
	identCont    = grammar.NewCharSet().Range('a', 'z').Range('A', 'Z').Add('_').Range('0', '9')
	decDigits    = grammar.NewCharSet().Range('0', '9')
	nonZero      = grammar.NewCharSet().Range('1', '9')
	octDigits    = grammar.NewCharSet().Range('0', '7')
	hexDigits    = grammar.NewCharSet().Range('0', '9').Range('A', 'F').Range('a', 'f')
	charEsc      = grammar.NewCharSet().Add('0').Add('"').Add('\'').Add('\\').
			Add('a').Add('b').Add('f').Add('n').Add('r').Add('t').Add('v')
	charNormal = grammar.NewCharSet().Range(' ', 126).Remove('\\').Remove('\'')
	strEsc     = grammar.NewCharSet().Add('0').Add('\'').Add('"').Add('\\').Add('n').Add('r')
	strNormal  = grammar.NewCharSet().Range(' ', 126).Remove('\\').Remove('"')
	oct01      = grammar.NewCharSet().Add('0').Add('1')
)

// whiteSpaceGrammar defines white_space: a possibly empty sequence of
// white space characters, // comments, and /* */ comments. The inner
// sequence of the traditional comment carries Avoid so the closing */
// wins over consuming it as content.
func whiteSpaceGrammar(g *grammar.Grammar) {
	g.Rule("white_space").
		Group(func(a *grammar.Alts) {
			a.Rule().Set(wsChars, nil)
			a.Rule().Char('/').Char('/').
				Set(lineChars, nil).Seq(nil, nil).Opt(nil).
				Char('\r').Opt(nil).
				Char('\n')
			a.Rule().Char('/').Char('*').
				Set(commentChars, nil).Seq(nil, nil).Opt(nil).Avoid().
				Char('*').Char('/')
		}).Seq(nil, nil).Opt(nil)
}

// Parsing an identifier. Only the first 64 bytes are significant.

type identScan struct {
	buf [64]byte
	n   int
	pos loc.Pos
}

func identAddChar(prev interface{}, ch byte) (interface{}, bool) {
	if prev == nil {
		d := new(identScan)
		d.buf[0] = ch
		d.n = 1
		return d, true
	}
	d := prev.(*identScan)
	if d.n < len(d.buf) {
		d.buf[d.n] = ch
		d.n++
	}
	return d, true
}

func identSetPos(v interface{}, pos loc.Pos) interface{} {
	if d, ok := v.(*identScan); ok {
		d.pos = pos
	}
	return v
}

func (p *Parser) identGrammar(g *grammar.Grammar) {
	r := g.Rule("ident")
	r.Set(identStart, identAddChar).SetPos(identSetPos).
		Set(identCont, identAddChar).Seq(passToSequence, useSequenceResult).Opt(nil)
	r.End(p.createIdent)
}

// createIdent interns the scanned name and records the keyword flag it
// carries at that moment.
func (p *Parser) createIdent(accum interface{}) (interface{}, bool) {
	d, ok := accum.(*identScan)
	if !ok || d == nil {
		return nil, true
	}
	sym := p.interner.Intern(string(d.buf[:d.n]))
	return &tree.Ident{P: d.pos, Sym: sym, Keyword: sym.Keyword}, true
}

// Parsing a character literal.

type charScan struct {
	ch  byte
	pos loc.Pos
}

func charSetPos(v interface{}, pos loc.Pos) interface{} {
	return &charScan{pos: pos}
}

func normalChar(prev interface{}, ch byte) (interface{}, bool) {
	d := prev.(*charScan)
	d.ch = ch
	return d, true
}

func unescape(ch byte) byte {
	switch ch {
	case '0':
		return 0
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	}
	return ch
}

func escapedChar(prev interface{}, ch byte) (interface{}, bool) {
	return normalChar(prev, unescape(ch))
}

func charGrammar(g *grammar.Grammar) {
	r := g.Rule("char")
	r.Char('\'').SetPos(charSetPos).
		Group(func(a *grammar.Alts) {
			a.Rule().Char('\\').Set(charEsc, escapedChar)
			a.Rule().Set(charNormal, normalChar)
		}).
		Char('\'')
	r.End(createCharTree)
}

func createCharTree(accum interface{}) (interface{}, bool) {
	d := accum.(*charScan)
	return &tree.Char{P: d.pos, Ch: d.ch}, true
}

// Parsing a string literal: one or more double-quoted runs separated
// by white space. The bytes are buffered in fixed-size chunks while
// scanning, then copied into one NUL-terminated array for the node.

const strChunkLen = 100

type strChunk struct {
	buf  [strChunkLen]byte
	next *strChunk
}

type stringScan struct {
	head, tail *strChunk
	length     int
	octal      byte
	pos        loc.Pos
}

func stringSetPos(v interface{}, pos loc.Pos) interface{} {
	if v == nil {
		return &stringScan{pos: pos}
	}
	return v
}

func stringAddNormalChar(prev interface{}, ch byte) (interface{}, bool) {
	d := prev.(*stringScan)
	if d.length%strChunkLen == 0 {
		c := new(strChunk)
		if d.head == nil {
			d.head = c
		} else {
			d.tail.next = c
		}
		d.tail = c
	}
	d.tail.buf[d.length%strChunkLen] = ch
	d.length++
	return d, true
}

func stringAddEscapedChar(prev interface{}, ch byte) (interface{}, bool) {
	switch ch {
	case '0':
		ch = 0
	case 'n':
		ch = '\n'
	case 'r':
		ch = '\r'
	}
	return stringAddNormalChar(prev, ch)
}

func stringAddFirstOctal(prev interface{}, ch byte) (interface{}, bool) {
	d := prev.(*stringScan)
	d.octal = (ch - '0') << 6
	return d, true
}

func stringAddSecondOctal(prev interface{}, ch byte) (interface{}, bool) {
	d := prev.(*stringScan)
	d.octal |= (ch - '0') << 3
	return d, true
}

func stringAddThirdOctal(prev interface{}, ch byte) (interface{}, bool) {
	d := prev.(*stringScan)
	return stringAddNormalChar(prev, d.octal|(ch-'0'))
}

func stringGrammar(g *grammar.Grammar) {
	r := g.Rule("string")
	r.Group(func(a *grammar.Alts) {
		a.Rule().Char('"').SetPos(stringSetPos).
			Group(func(b *grammar.Alts) {
				b.Rule().Char('\\').
					Set(oct01, stringAddFirstOctal).
					Set(octDigits, stringAddSecondOctal).
					Set(octDigits, stringAddThirdOctal)
				b.Rule().Char('\\').Set(strEsc, stringAddEscapedChar)
				b.Rule().Set(strNormal, stringAddNormalChar)
			}).Seq(passToSequence, useSequenceResult).Opt(nil).
			Char('"')
	}).Seq(passToSequence, useSequenceResult).
		Chain(func(c *grammar.RuleB) { c.NT("white_space", nil) })
	r.End(createStringTree)
}

func createStringTree(accum interface{}) (interface{}, bool) {
	d := accum.(*stringScan)
	data := make([]byte, d.length+1)
	i := 0
	for c := d.head; c != nil; c = c.next {
		n := copy(data[i:d.length], c.buf[:])
		i += n
	}
	return &tree.String{P: d.pos, Data: data}, true
}

// Parsing an integer literal: an explicit state machine fed one
// character at a time by the grammar's character hooks.

type intState int

const (
	intStart intState = iota
	intSigned
	intZero
	intHexFirst
	intHex
	intOct
	intDec
)

type intScan struct {
	val    int64
	state  intState
	neg    bool
	pos    loc.Pos
	posSet bool
}

func hexVal(ch byte) int {
	switch {
	case '0' <= ch && ch <= '9':
		return int(ch - '0')
	case 'A' <= ch && ch <= 'F':
		return int(ch-'A') + 10
	case 'a' <= ch && ch <= 'f':
		return int(ch-'a') + 10
	}
	return -1
}

func intAddChar(prev interface{}, ch byte) (interface{}, bool) {
	d, _ := prev.(*intScan)
	if d == nil {
		d = new(intScan)
	}
	switch d.state {
	case intStart:
		switch {
		case ch == '-':
			d.neg = true
			d.state = intSigned
		case ch == '0':
			d.state = intZero
		case '1' <= ch && ch <= '9':
			d.val = int64(ch - '0')
			d.state = intDec
		default:
			return nil, false
		}
	case intSigned:
		switch {
		case ch == '0':
			d.state = intZero
		case '1' <= ch && ch <= '9':
			d.val = int64(ch - '0')
			d.state = intDec
		default:
			return nil, false
		}
	case intZero:
		switch {
		case ch == 'x':
			d.state = intHexFirst
		case '0' <= ch && ch <= '7':
			d.val = int64(ch - '0')
			d.state = intOct
		default:
			return nil, false
		}
	case intHexFirst, intHex:
		v := hexVal(ch)
		if v < 0 {
			return nil, false
		}
		d.val = 16*d.val + int64(v)
		d.state = intHex
	case intOct:
		if ch < '0' || ch > '7' {
			return nil, false
		}
		d.val = 8*d.val + int64(ch-'0')
	case intDec:
		if ch < '0' || ch > '9' {
			return nil, false
		}
		d.val = 10*d.val + int64(ch-'0')
	}
	return d, true
}

func intSetPos(v interface{}, pos loc.Pos) interface{} {
	if d, ok := v.(*intScan); ok && !d.posSet {
		d.pos = pos
		d.posSet = true
	}
	return v
}

func intGrammar(g *grammar.Grammar) {
	r := g.Rule("int")
	r.CharF('-', intAddChar).Opt(nil).SetPos(intSetPos).
		Group(func(a *grammar.Alts) {
			// Hexadecimal representation.
			a.Rule().CharF('0', intAddChar).SetPos(intSetPos).
				CharF('x', intAddChar).
				Set(hexDigits, intAddChar).Seq(passToSequence, useSequenceResult)
			// Octal representation.
			a.Rule().CharF('0', intAddChar).SetPos(intSetPos).
				Set(octDigits, intAddChar).Seq(passToSequence, useSequenceResult).Opt(nil)
			// Decimal representation.
			a.Rule().Set(nonZero, intAddChar).SetPos(intSetPos).
				Set(decDigits, intAddChar).Seq(passToSequence, useSequenceResult).Opt(nil)
		}).
		Char('U').Opt(nil).
		Char('L').Opt(nil).
		Char('L').Opt(nil)
	r.End(createIntTree)
}

func createIntTree(accum interface{}) (interface{}, bool) {
	d := accum.(*intScan)
	val := d.val
	if d.neg {
		val = -val
	}
	return &tree.Int{P: d.pos, Val: val}, true
}

// Parsing a floating point literal. The text is kept verbatim so the
// unparser reproduces the source spelling.

type floatScan struct {
	text []byte
	pos  loc.Pos
}

func floatAddChar(prev interface{}, ch byte) (interface{}, bool) {
	d, _ := prev.(*floatScan)
	if d == nil {
		d = new(floatScan)
	}
	d.text = append(d.text, ch)
	return d, true
}

func floatSetPos(v interface{}, pos loc.Pos) interface{} {
	if d, ok := v.(*floatScan); ok && d.pos == (loc.Pos{}) {
		d.pos = pos
	}
	return v
}

var expChars = grammar.NewCharSet().Add('e').Add('E')

func doubleGrammar(g *grammar.Grammar) {
	r := g.Rule("double")
	r.Set(decDigits, floatAddChar).SetPos(floatSetPos).Seq(passToSequence, useSequenceResult).
		CharF('.', floatAddChar).
		Set(decDigits, floatAddChar).Seq(passToSequence, useSequenceResult).Opt(nil).
		Group(func(a *grammar.Alts) {
			a.Rule().Set(expChars, floatAddChar).
				CharF('-', floatAddChar).Opt(nil).
				Set(decDigits, floatAddChar).Seq(passToSequence, useSequenceResult)
		}).Opt(nil)
	r.End(createFloatTree)
}

func createFloatTree(accum interface{}) (interface{}, bool) {
	d := accum.(*floatScan)
	return &tree.Float{P: d.pos, Text: string(d.text)}, true
}
