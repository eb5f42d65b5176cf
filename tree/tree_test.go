// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testTP = &TreeParam{Name: "pair", Fmt: "%* %*"}

func TestCollect(t *testing.T) {
	t.Parallel()
	in := NewInterner()
	a := &Ident{Sym: in.Intern("a")}
	b := &Ident{Sym: in.Intern("b")}
	var accum interface{}
	accum, _ = AddChild(accum, a)
	accum, _ = AddChild(accum, b)
	kids := Collect(accum.(*Child))
	if len(kids) != 2 || kids[0] != a || kids[1] != b {
		t.Errorf("Collect = %v, want [a b] in source order", kids)
	}
}

func TestChildSharing(t *testing.T) {
	t.Parallel()
	// Two branches extending the same prefix must not disturb each other.
	in := NewInterner()
	a := &Ident{Sym: in.Intern("a")}
	b := &Ident{Sym: in.Intern("b")}
	c := &Ident{Sym: in.Intern("c")}
	prefix, _ := AddChild(nil, a)
	left, _ := AddChild(prefix, b)
	right, _ := AddChild(prefix, c)
	if got := DebugString(left); got != "[a b]" {
		t.Errorf("left branch = %s, want [a b]", got)
	}
	if got := DebugString(right); got != "[a c]" {
		t.Errorf("right branch = %s, want [a c]", got)
	}
}

func TestMakeTree(t *testing.T) {
	t.Parallel()
	in := NewInterner()
	accum, _ := AddChild(nil, &Ident{Sym: in.Intern("x")})
	accum, _ = AddChild(accum, &Int{Val: 7})
	v, ok := MakeTree(testTP)(accum)
	if !ok {
		t.Fatal("MakeTree failed")
	}
	if got := DebugString(v); got != "pair(x,7)" {
		t.Errorf("MakeTree = %s, want pair(x,7)", got)
	}
}

func TestMakeTreeFromList(t *testing.T) {
	t.Parallel()
	listTP := &TreeParam{Name: ListName, Fmt: ""}
	list := NewTree(listTP, &Int{Val: 1}, &Int{Val: 2})
	accum, _ := AddChild(nil, list)
	v, _ := MakeTreeFromList(testTP)(accum)
	if got := DebugString(v); got != "pair(1,2)" {
		t.Errorf("single list child not unwrapped: got %s, want pair(1,2)", got)
	}

	// More than one accumulated child: wrapped as usual.
	accum, _ = AddChild(accum, &Int{Val: 3})
	v, _ = MakeTreeFromList(testTP)(accum)
	if got := DebugString(v); got != "pair(list(1,2),3)" {
		t.Errorf("got %s, want pair(list(1,2),3)", got)
	}
}

func TestPassTree(t *testing.T) {
	t.Parallel()
	n := &Int{Val: 9}
	accum, _ := AddChild(nil, n)
	v, _ := PassTree(accum)
	if v != n {
		t.Errorf("PassTree = %v, want the single child", v)
	}
}

func TestAddSeqAsList(t *testing.T) {
	t.Parallel()
	listTP := &TreeParam{Name: ListName, Fmt: ", "}
	var seq interface{}
	seq, _ = AddChild(seq, &Int{Val: 1})
	seq, _ = AddChild(seq, &Int{Val: 2})
	v, _ := AddSeqAsList(listTP)(nil, seq)
	if got := DebugString(v); got != "[list(1,2)]" {
		t.Errorf("AddSeqAsList = %s, want [list(1,2)]", got)
	}
}

func TestTreeAccessors(t *testing.T) {
	t.Parallel()
	inner := NewTree(testTP, &Int{Val: 1})
	outer := NewTree(testTP, inner, nil)
	if outer.ChildTree(0) != inner {
		t.Error("ChildTree(0) is not the inner tree")
	}
	if outer.Child(1) != nil || outer.Child(2) != nil || outer.Child(-1) != nil {
		t.Error("absent children must be nil")
	}
	if !IsTree(outer, "pair") || IsTree(outer, "list") || IsTree(nil, "pair") {
		t.Error("IsTree misjudged a tree param")
	}
}

func TestTypeNames(t *testing.T) {
	t.Parallel()
	nodes := map[Node]string{
		&Ident{Sym: &Sym{Name: "x"}}: IdentType,
		&Char{Ch: 'c'}:               CharType,
		&String{Data: []byte{0}}:     StringType,
		&Int{Val: 0}:                 IntType,
		&Tree{Param: testTP}:         TreeType,
	}
	for n, want := range nodes {
		if n.TypeName() != want {
			t.Errorf("TypeName = %q, want %q", n.TypeName(), want)
		}
	}
}

func TestStringText(t *testing.T) {
	t.Parallel()
	s := &String{Data: []byte("abcd\x00")}
	if diff := cmp.Diff("abcd", s.Text()); diff != "" {
		t.Errorf("Text() diff: %s", diff)
	}
	if len(s.Data) != 5 {
		t.Errorf("Data length = %d, want 5", len(s.Data))
	}
}
