// Copyright © 2026 The Tcpos Authors under an MIT-style license.

// Package tree defines the values produced by parsing: the accumulator
// lists built while a rule proceeds and the abstract syntax tree nodes
// built when rules complete. Values are shared freely across back-track
// branches; nothing mutates a committed value, so sharing is safe.
package tree

import (
	"fmt"
	"strings"

	"github.com/eaburns/tcpos/loc"
)

// A Node is a node of the AST with a type-name tag and a position.
// Type names are fixed per concrete node type and identity-comparable.
type Node interface {
	TypeName() string
	Pos() loc.Pos
}

// Type-name tags of the concrete node types.
const (
	IdentType  = "ident"
	CharType   = "char"
	StringType = "string"
	IntType    = "int"
	FloatType  = "double"
	TreeType   = "tree"
)

// ListName tags trees holding a homogeneous sequence; the unparser
// prints their format string between the children instead of through it.
const ListName = "list"

// An Ident is an identifier node. Keyword records whether the name was
// flagged as a keyword when the node was made.
type Ident struct {
	P       loc.Pos
	Sym     *Sym
	Keyword bool
}

func (n *Ident) TypeName() string { return IdentType }
func (n *Ident) Pos() loc.Pos     { return n.P }
func (n *Ident) Name() string     { return n.Sym.Name }

// A Char is a character literal node.
type Char struct {
	P  loc.Pos
	Ch byte
}

func (n *Char) TypeName() string { return CharType }
func (n *Char) Pos() loc.Pos     { return n.P }

// A String is a string literal node. Data holds the bytes of the
// string followed by a terminating NUL.
type String struct {
	P    loc.Pos
	Data []byte
}

func (n *String) TypeName() string { return StringType }
func (n *String) Pos() loc.Pos     { return n.P }

// Text returns the string without the terminating NUL.
func (n *String) Text() string { return string(n.Data[:len(n.Data)-1]) }

// A Float is a floating point literal node. The source spelling is
// kept verbatim.
type Float struct {
	P    loc.Pos
	Text string
}

func (n *Float) TypeName() string { return FloatType }
func (n *Float) Pos() loc.Pos     { return n.P }

// An Int is an integer literal node.
type Int struct {
	P   loc.Pos
	Val int64
}

func (n *Int) TypeName() string { return IntType }
func (n *Int) Pos() loc.Pos     { return n.P }

// A TreeParam names a tree shape and carries its unparse format.
type TreeParam struct {
	Name string
	Fmt  string
}

// A Tree is an interior node: a TreeParam and the children collected
// from its rule. A child may be nil where an optional was absent.
type Tree struct {
	P        loc.Pos
	Param    *TreeParam
	Children []Node
}

func (n *Tree) TypeName() string { return TreeType }
func (n *Tree) Pos() loc.Pos     { return n.P }

// Is reports whether the tree has the named param.
func (n *Tree) Is(name string) bool {
	return n != nil && n.Param != nil && n.Param.Name == name
}

// IsList reports whether the tree is a list tree.
func (n *Tree) IsList() bool { return n.Is(ListName) }

// Child returns the i'th child or nil if out of range.
func (n *Tree) Child(i int) Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// ChildTree returns the i'th child as a *Tree, or nil.
func (n *Tree) ChildTree(i int) *Tree { return TreeOf(n.Child(i)) }

// TreeOf returns v as a *Tree if it is one, else nil.
func TreeOf(v interface{}) *Tree {
	t, _ := v.(*Tree)
	return t
}

// ListOf returns v as a list tree, or nil.
func ListOf(v interface{}) *Tree {
	if t := TreeOf(v); t.IsList() {
		return t
	}
	return nil
}

// IsTree reports whether v is a tree with the named param.
func IsTree(v interface{}, name string) bool { return TreeOf(v).Is(name) }

// NewTree makes a tree node from explicit children.
func NewTree(param *TreeParam, children ...Node) *Tree {
	return &Tree{Param: param, Children: children}
}

// A Child cell accumulates one child result of a rule in progress.
// Cells link backward to the previously accumulated child and are
// shared across back-track branches; they are never mutated.
type Child struct {
	Val  interface{}
	Prev *Child
}

func childOf(v interface{}) *Child {
	if v == nil {
		return nil
	}
	return v.(*Child)
}

func nodeOf(v interface{}) Node {
	if v == nil {
		return nil
	}
	return v.(Node)
}

// Collect reverses a child list into a slice of nodes.
func Collect(c *Child) []Node {
	n := 0
	for x := c; x != nil; x = x.Prev {
		n++
	}
	kids := make([]Node, n)
	for x := c; x != nil; x = x.Prev {
		n--
		kids[n] = nodeOf(x.Val)
	}
	return kids
}

// AddChild appends elem to the accumulated child list.
// It has the signature of a grammar add function.
func AddChild(prev, elem interface{}) (interface{}, bool) {
	return &Child{Val: elem, Prev: childOf(prev)}, true
}

// TakeChild passes elem through as the accumulator.
func TakeChild(prev, elem interface{}) (interface{}, bool) {
	return elem, true
}

// RecAddChild seeds a child list from a left-recursive prefix.
// It has the signature of a grammar rec-start function.
func RecAddChild(rec interface{}) (interface{}, bool) {
	return &Child{Val: rec}, true
}

// MakeTree returns an end function wrapping the accumulated child list
// in a tree tagged with param.
func MakeTree(param *TreeParam) func(interface{}) (interface{}, bool) {
	return func(accum interface{}) (interface{}, bool) {
		return NewTree(param, Collect(childOf(accum))...), true
	}
}

// MakeTreeFromList is like MakeTree, but if the accumulated children
// are a single list tree its children are reused directly.
func MakeTreeFromList(param *TreeParam) func(interface{}) (interface{}, bool) {
	return func(accum interface{}) (interface{}, bool) {
		c := childOf(accum)
		if c != nil && c.Prev == nil {
			if l := ListOf(c.Val); l != nil {
				return NewTree(param, l.Children...), true
			}
		}
		return NewTree(param, Collect(c)...), true
	}
}

// PassTree unwraps a single-child list and surfaces the child.
func PassTree(accum interface{}) (interface{}, bool) {
	c := childOf(accum)
	if c == nil {
		return nil, true
	}
	return c.Val, true
}

// AddSeqAsList returns an add-seq function that wraps a completed
// sequence's children in a list tree tagged with param and appends it
// to the previously accumulated child list.
func AddSeqAsList(param *TreeParam) func(prev, seq interface{}) (interface{}, bool) {
	return func(prev, seq interface{}) (interface{}, bool) {
		list := NewTree(param, Collect(childOf(seq))...)
		return &Child{Val: list, Prev: childOf(prev)}, true
	}
}

// DebugString renders a value for diagnostics: trees as name(kids),
// identifiers as their name, literals in source-like form.
func DebugString(v interface{}) string {
	var s strings.Builder
	buildDebugString(&s, v)
	return s.String()
}

func buildDebugString(s *strings.Builder, v interface{}) {
	switch v := v.(type) {
	case nil:
		s.WriteString("<>")
	case *Child:
		s.WriteString("[")
		for i, n := range Collect(v) {
			if i > 0 {
				s.WriteRune(' ')
			}
			buildDebugString(s, n)
		}
		s.WriteString("]")
	case *Ident:
		s.WriteString(v.Sym.Name)
	case *Char:
		fmt.Fprintf(s, "'%c'", v.Ch)
	case *String:
		fmt.Fprintf(s, "%q", v.Text())
	case *Int:
		fmt.Fprintf(s, "%d", v.Val)
	case *Float:
		s.WriteString(v.Text)
	case *Tree:
		s.WriteString(v.Param.Name)
		s.WriteRune('(')
		for i, kid := range v.Children {
			if i > 0 {
				s.WriteRune(',')
			}
			buildDebugString(s, kid)
		}
		s.WriteRune(')')
	default:
		fmt.Fprintf(s, "%v", v)
	}
}
