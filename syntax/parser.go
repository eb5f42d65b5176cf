// Copyright © 2026 The Tcpos Authors under an MIT-style license.

// Package syntax defines the TinyCoPoOS dialect of C: the token
// grammars and the expression, declaration, and statement grammar with
// the cooperative-task extensions, together with a Parser facade that
// runs them through the parser engine.
package syntax

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/tcpos/grammar"
	"github.com/eaburns/tcpos/loc"
	"github.com/eaburns/tcpos/parser"
	"github.com/eaburns/tcpos/tree"
)

// A Parser parses TinyCoPoOS source. The grammar is built once, when
// the Parser is made, and the identifier interner is shared by every
// parse so that names are pointer-comparable across them.
type Parser struct {
	grammar  *grammar.Grammar
	interner *tree.Interner

	// Trace, if non-nil, receives the engine's non-terminal trace.
	Trace io.Writer
}

// NewParser returns a parser with the full grammar built.
func NewParser() *Parser {
	p := &Parser{interner: tree.NewInterner()}
	g := grammar.New()
	p.cGrammar(g)
	p.grammar = g
	return p
}

// Interner returns the parser's identifier interner.
func (p *Parser) Interner() *tree.Interner { return p.interner }

// Parse parses a whole translation unit from an io.Reader and returns
// the list tree of its declarations. The first argument is the file
// path or "" if unspecified.
func (p *Parser) Parse(path string, r io.Reader) (*tree.Tree, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	v, err := p.parseText(path, "root", string(data))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return tree.NewTree(ListTP), nil
	}
	return v.(*tree.Tree), nil
}

// ParseFile parses the source in the file specified by a path.
func (p *Parser) ParseFile(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(path, f)
}

// ParseNonTerm parses text as the named non-terminal, requiring the
// whole text to be consumed.
func (p *Parser) ParseNonTerm(name, text string) (interface{}, error) {
	return p.parseText("", name, text)
}

func (p *Parser) parseText(path, name, text string) (interface{}, error) {
	engine := parser.New(text)
	engine.Trace = p.Trace
	v, ok := engine.Parse(p.grammar.NonTerm(name))
	if !ok || !engine.AtEnd() {
		return nil, &parseError{
			path:   path,
			pos:    engine.ErrorPos(),
			text:   text,
			fail:   engine.FailTree(name),
			report: engine.Expected(),
		}
	}
	return v, nil
}

type parseError struct {
	path   string
	pos    loc.Pos
	text   string
	fail   *peg.Fail
	report string
}

// Tree returns the expectation tree of the failed parse.
func (err *parseError) Tree() *peg.Fail { return err.fail }

// Expected returns the expectation report: each expected element with
// the non-terminal stack it was tried under.
func (err *parseError) Expected() string { return err.report }

func (err *parseError) Error() string {
	e := peg.SimpleError(err.text, err.fail)
	e.FilePath = err.path
	return e.Error()
}
