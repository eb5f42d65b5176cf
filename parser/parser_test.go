// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package parser

import (
	"strings"
	"testing"

	"github.com/eaburns/tcpos/grammar"
	"github.com/eaburns/tcpos/loc"
)

var digits = grammar.NewCharSet().Range('0', '9')

func addDigit(prev interface{}, ch byte) (interface{}, bool) {
	n := int64(0)
	if prev != nil {
		n = prev.(int64)
	}
	return 10*n + int64(ch-'0'), true
}

func useSeq(prev, seq interface{}) (interface{}, bool) { return seq, true }

func passToSeq(prev interface{}) interface{} { return prev }

// numberGrammar defines number as a digit sequence accumulating an int64.
func numberGrammar() *grammar.Grammar {
	g := grammar.New()
	g.Rule("number").Set(digits, addDigit).Seq(nil, useSeq)
	return g
}

func TestParseNumber(t *testing.T) {
	t.Parallel()
	g := numberGrammar()
	tests := []struct {
		text string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"123", 123, true},
		{"987654321", 987654321, true},
		{"", 0, false},
		{"x", 0, false},
	}
	for _, test := range tests {
		p := New(test.text)
		v, ok := p.Parse(g.NonTerm("number"))
		if ok != test.ok {
			t.Errorf("parse %q ok = %v, want %v", test.text, ok, test.ok)
			continue
		}
		if ok && v.(int64) != test.want {
			t.Errorf("parse %q = %d, want %d", test.text, v, test.want)
		}
	}
}

func TestFailureRestoresCursor(t *testing.T) {
	t.Parallel()
	g := grammar.New()
	g.Rule("ab").Char('a').Char('b')
	p := New("ax")
	if _, ok := p.Parse(g.NonTerm("ab")); ok {
		t.Fatal("parse of ab over ax succeeded")
	}
	if p.Pos() != loc.Start() {
		t.Errorf("cursor after failure = %v, want start", p.Pos())
	}
}

func TestRuleOrder(t *testing.T) {
	t.Parallel()
	// Rules are tried in declaration order; the first match wins.
	g := grammar.New()
	first := func(v interface{}) (interface{}, bool) { return "first", true }
	second := func(v interface{}) (interface{}, bool) { return "second", true }
	g.Rule("x").Char('a').End(first)
	g.Rule("x").Char('a').End(second)
	p := New("a")
	v, ok := p.Parse(g.NonTerm("x"))
	if !ok || v != "first" {
		t.Errorf("got %v, %v; want first, true", v, ok)
	}
}

func TestBackTrackAcrossRules(t *testing.T) {
	t.Parallel()
	// The first rule consumes 'a' then fails on 'c'; the second rule
	// must see the cursor back at the start.
	g := grammar.New()
	g.Rule("x").Char('a').Char('c').End(func(interface{}) (interface{}, bool) { return "ac", true })
	g.Rule("x").Char('a').Char('b').End(func(interface{}) (interface{}, bool) { return "ab", true })
	p := New("ab")
	v, ok := p.Parse(g.NonTerm("x"))
	if !ok || v != "ab" {
		t.Errorf("got %v, %v; want ab, true", v, ok)
	}
	if !p.AtEnd() {
		t.Error("input not fully consumed")
	}
}

func TestLeftRecursion(t *testing.T) {
	t.Parallel()
	// expr <- number | expr '+' number, growing a nested string.
	g := grammar.New()
	g.Rule("expr").NT("number", func(prev, elem interface{}) (interface{}, bool) {
		return elem, true
	})
	g.RecRule("expr", func(rec interface{}) (interface{}, bool) {
		return rec, true
	}).Char('+').NT("number", func(prev, elem interface{}) (interface{}, bool) {
		return "add(" + toString(prev) + "," + toString(elem) + ")", true
	})
	g.Rule("number").Set(digits, addDigit).Seq(nil, useSeq)

	p := New("1+2+3")
	v, ok := p.Parse(g.NonTerm("expr"))
	if !ok {
		t.Fatal("parse failed")
	}
	if got := toString(v); got != "add(add(1,2),3)" {
		t.Errorf("got %s, want add(add(1,2),3) (left associative)", got)
	}
}

func toString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case int64:
		return string('0' + byte(v))
	}
	return "?"
}

func TestLeftRecursionStops(t *testing.T) {
	t.Parallel()
	g := grammar.New()
	g.Rule("expr").NT("number", grammar.AddFunc(func(prev, elem interface{}) (interface{}, bool) {
		return elem, true
	}))
	g.RecRule("expr", nil).Char('+').NT("number", nil)
	g.Rule("number").Set(digits, addDigit).Seq(nil, useSeq)
	p := New("1")
	if _, ok := p.Parse(g.NonTerm("expr")); !ok {
		t.Fatal("parse failed")
	}
	if !p.AtEnd() {
		t.Errorf("cursor = %v, want end of input", p.Pos())
	}
}

func TestAvoidPrefersShortest(t *testing.T) {
	t.Parallel()
	// A C-style comment: the inner any-char sequence carries Avoid so
	// that the closing */ wins over consuming it as content.
	any := grammar.NewCharSet().Range(' ', 255).Add('\t').Add('\n').Add('\r')
	g := grammar.New()
	g.Rule("comment").
		Char('/').Char('*').
		Set(any, nil).Seq(nil, nil).Opt(nil).Avoid().
		Char('*').Char('/')
	p := New("/* a comment */")
	if _, ok := p.Parse(g.NonTerm("comment")); !ok {
		t.Fatal("comment did not parse")
	}
	if !p.AtEnd() {
		t.Errorf("cursor = %v, want end of input", p.Pos())
	}
}

func TestChainSequence(t *testing.T) {
	t.Parallel()
	// A comma-chained digit list; the chain result is discarded.
	g := grammar.New()
	g.Rule("list").Set(digits, addDigit).
		Seq(passToSeq, useSeq).
		Chain(func(c *grammar.RuleB) { c.Char(',') })
	tests := []struct {
		text string
		want int64
		end  bool
	}{
		{"1,2,3", 123, true},
		{"7", 7, true},
		{"1,2,", 12, false}, // trailing comma not consumed
	}
	for _, test := range tests {
		p := New(test.text)
		v, ok := p.Parse(g.NonTerm("list"))
		if !ok {
			t.Errorf("parse %q failed", test.text)
			continue
		}
		if v.(int64) != test.want {
			t.Errorf("parse %q = %d, want %d", test.text, v, test.want)
		}
		if p.AtEnd() != test.end {
			t.Errorf("parse %q AtEnd = %v, want %v", test.text, p.AtEnd(), test.end)
		}
	}
}

func TestBackTrackingSequence(t *testing.T) {
	t.Parallel()
	// digit-list followed by a digit: only a back-tracking sequence
	// can give the last digit back.
	g := grammar.New()
	g.Rule("x").Set(digits, addDigit).Seq(passToSeq, useSeq).BackTrack().Char('!').Opt(nil).Set(digits, addDigit)
	p := New("123")
	v, ok := p.Parse(g.NonTerm("x"))
	if !ok {
		t.Fatal("parse failed")
	}
	if v.(int64) != 123 {
		t.Errorf("got %d, want 123", v)
	}
	if !p.AtEnd() {
		t.Errorf("cursor = %v, want end", p.Pos())
	}
}

func TestOptionalSkip(t *testing.T) {
	t.Parallel()
	g := grammar.New()
	g.Rule("num").Char('x').Opt(nil).Set(digits, addDigit).Seq(nil, useSeq)
	for _, test := range []struct {
		text string
		want int64
	}{{"12", 12}, {"x12", 12}} {
		p := New(test.text)
		v, ok := p.Parse(g.NonTerm("num"))
		if !ok || v.(int64) != test.want {
			t.Errorf("parse %q = %v, %v; want %d, true", test.text, v, ok, test.want)
		}
		if !p.AtEnd() {
			t.Errorf("parse %q left input at %v", test.text, p.Pos())
		}
	}
}

func TestEofElement(t *testing.T) {
	t.Parallel()
	g := grammar.New()
	g.Rule("all").Set(digits, addDigit).Seq(nil, useSeq).Eof()
	p := New("12x")
	if _, ok := p.Parse(g.NonTerm("all")); ok {
		t.Fatal("parse succeeded with trailing input")
	}
	p = New("12")
	if _, ok := p.Parse(g.NonTerm("all")); !ok {
		t.Fatal("parse failed at end of input")
	}
}

func TestCondition(t *testing.T) {
	t.Parallel()
	g := grammar.New()
	g.Rule("even").NT("number", grammar.AddFunc(func(prev, elem interface{}) (interface{}, bool) {
		return elem, true
	})).Cond(func(v interface{}) bool { return v.(int64)%2 == 0 })
	g.Rule("number").Set(digits, addDigit).Seq(nil, useSeq)
	p := New("12")
	if _, ok := p.Parse(g.NonTerm("even")); !ok {
		t.Error("12 rejected")
	}
	p = New("13")
	if _, ok := p.Parse(g.NonTerm("even")); ok {
		t.Error("13 accepted")
	}
	if p.Pos() != loc.Start() {
		t.Errorf("cursor after condition reject = %v, want start", p.Pos())
	}
}

func TestTerminalFunction(t *testing.T) {
	t.Parallel()
	scan := func(text string, off int) (int, interface{}) {
		i := off
		for i < len(text) && text[i] == 'z' {
			i++
		}
		return i, i - off
	}
	g := grammar.New()
	g.Rule("zs").Term(scan)
	p := New("zzzx")
	v, ok := p.Parse(g.NonTerm("zs"))
	if !ok || v.(int) != 3 {
		t.Errorf("got %v, %v; want 3, true", v, ok)
	}
	if p.Pos().Off != 3 {
		t.Errorf("cursor = %v, want offset 3", p.Pos())
	}
	p = New("x")
	if _, ok := p.Parse(g.NonTerm("zs")); ok {
		t.Error("non-advancing scan reported success")
	}
}

func TestSetPos(t *testing.T) {
	t.Parallel()
	var got loc.Pos
	g := grammar.New()
	g.Rule("x").Char('\n').Set(digits, addDigit).SetPos(func(v interface{}, pos loc.Pos) interface{} {
		got = pos
		return v
	})
	p := New("\n5")
	if _, ok := p.Parse(g.NonTerm("x")); !ok {
		t.Fatal("parse failed")
	}
	want := loc.Pos{Off: 1, Line: 2, Col: 1}
	if got != want {
		t.Errorf("stamped pos = %v, want %v", got, want)
	}
}

func TestMemoDeterminism(t *testing.T) {
	t.Parallel()
	// The same input parses to the same value with a fresh cache.
	text := "1+2+3+4"
	mk := func() (interface{}, bool) {
		g := grammar.New()
		g.Rule("expr").NT("number", grammar.AddFunc(func(prev, elem interface{}) (interface{}, bool) {
			return elem, true
		}))
		g.RecRule("expr", func(rec interface{}) (interface{}, bool) { return rec, true }).
			Char('+').NT("number", grammar.AddFunc(func(prev, elem interface{}) (interface{}, bool) {
			return "(" + toString(prev) + "+" + toString(elem) + ")", true
		}))
		g.Rule("number").Set(digits, addDigit).Seq(nil, useSeq)
		return New(text).Parse(g.NonTerm("expr"))
	}
	a, okA := mk()
	b, okB := mk()
	if !okA || !okB || toString(a) != toString(b) {
		t.Errorf("re-parse differs: %v vs %v", a, b)
	}
}

func TestMemoHit(t *testing.T) {
	t.Parallel()
	// Two rules that both begin with the same non-terminal: the second
	// rule's attempt must hit the cache and yield the identical result.
	calls := 0
	g := grammar.New()
	g.Rule("digits").Set(digits, func(prev interface{}, ch byte) (interface{}, bool) {
		calls++
		return addDigit(prev, ch)
	}).Seq(nil, useSeq)
	g.Rule("x").NT("digits", grammar.AddFunc(func(prev, elem interface{}) (interface{}, bool) {
		return elem, true
	})).Char('!')
	g.Rule("x").NT("digits", grammar.AddFunc(func(prev, elem interface{}) (interface{}, bool) {
		return elem, true
	})).Char('?')
	p := New("42?")
	v, ok := p.Parse(g.NonTerm("x"))
	if !ok || v.(int64) != 42 {
		t.Fatalf("got %v, %v; want 42, true", v, ok)
	}
	if calls != 2 {
		t.Errorf("digit hook ran %d times, want 2 (memo hit on the second rule)", calls)
	}
}

func TestExpectations(t *testing.T) {
	t.Parallel()
	g := grammar.New()
	g.Rule("stmt").NT("number", nil).Char(';').Expect("';'")
	g.Rule("number").Set(digits, addDigit).Seq(nil, useSeq)
	p := New("42x")
	if _, ok := p.Parse(g.NonTerm("stmt")); ok {
		t.Fatal("parse succeeded")
	}
	if p.ErrorPos().Off != 2 {
		t.Errorf("error pos = %v, want offset 2", p.ErrorPos())
	}
	report := p.Expected()
	if !strings.Contains(report, "';'") || !strings.Contains(report, "in stmt at 1.1") {
		t.Errorf("report missing expectation or stack:\n%s", report)
	}
	fail := p.FailTree("stmt")
	if fail.Name != "stmt" || len(fail.Kids) == 0 {
		t.Errorf("fail tree not rooted with kids: %+v", fail)
	}
}

func TestExpectationsDisplaced(t *testing.T) {
	t.Parallel()
	// Records at an earlier position are displaced by a later failure:
	// 'z' fails at offset 0 first, then 'c' fails further on at offset 2.
	g := grammar.New()
	g.Rule("x").Char('z').Expect("'z'")
	g.Rule("x").Char('a').Char('b').Char('c').Expect("'c'")
	p := New("abx")
	if _, ok := p.Parse(g.NonTerm("x")); ok {
		t.Fatal("parse succeeded")
	}
	if p.ErrorPos().Off != 2 {
		t.Errorf("error pos = %v, want offset 2", p.ErrorPos())
	}
	report := p.Expected()
	if !strings.Contains(report, "'c'") {
		t.Errorf("report missing 'c':\n%s", report)
	}
	if strings.Contains(report, "'z'") {
		t.Errorf("report kept displaced shallow record 'z':\n%s", report)
	}
}

func TestIndirectRecursionShortCircuits(t *testing.T) {
	t.Parallel()
	// a <- b 'x' | '1'; b <- a: the indirect cycle is cut by the
	// pre-marked fail entry rather than recursing forever.
	g := grammar.New()
	g.Rule("a").NT("b", nil).Char('x')
	g.Rule("a").Char('1')
	g.Rule("b").NT("a", nil)
	p := New("1x")
	if _, ok := p.Parse(g.NonTerm("a")); !ok {
		t.Fatal("parse failed")
	}
}

func TestTrace(t *testing.T) {
	t.Parallel()
	g := numberGrammar()
	p := New("12")
	var trace strings.Builder
	p.Trace = &trace
	if _, ok := p.Parse(g.NonTerm("number")); !ok {
		t.Fatal("parse failed")
	}
	if !strings.Contains(trace.String(), "Enter: number at 1.1") ||
		!strings.Contains(trace.String(), "Parsed: number") {
		t.Errorf("trace missing enter/leave:\n%s", trace.String())
	}
}
