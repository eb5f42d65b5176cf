// Copyright © 2026 The Tcpos Authors under an MIT-style license.

// Package unparse prints an AST back to C source, directed by the
// format strings the tree nodes carry. A format holds text literals
// and the directives %* (recurse into the next child), %% (a literal
// percent), %< and %> (indentation), and \n (request a newline, which
// is materialized lazily before the next non-whitespace output and
// collapses with adjacent requests). List trees print their format
// between children instead. Whenever an identifier-like glyph would
// directly follow another across two sibling prints, a single space is
// inserted to keep the C tokens apart.
package unparse

import (
	"fmt"
	"io"

	"github.com/eaburns/tcpos/tree"
)

// Write prints v to w and returns the first write error, if any.
func Write(w io.Writer, v interface{}) error {
	p := &printer{w: w}
	p.print(v)
	return p.err
}

type printer struct {
	w         io.Writer
	indent    int
	startLine bool
	needSp    bool
	err       error
}

func (p *printer) print(v interface{}) {
	switch v := v.(type) {
	case nil:
		// An absent optional: nothing to print.
	case *tree.Tree:
		if v.IsList() {
			p.printList(v)
		} else {
			p.printTree(v)
		}
	case *tree.Ident:
		p.leaf(v.Sym.Name)
	case *tree.Char:
		p.leaf("'" + escape(v.Ch, '\'') + "'")
	case *tree.String:
		s := `"`
		for _, b := range v.Data[:len(v.Data)-1] {
			s += escape(b, '"')
		}
		p.leaf(s + `"`)
	case *tree.Int:
		p.leaf(fmt.Sprintf("%d", v.Val))
	case *tree.Float:
		p.leaf(v.Text)
	default:
		p.rawf("(unprintable:%T)", v)
	}
}

func (p *printer) printList(t *tree.Tree) {
	for i, kid := range t.Children {
		if i > 0 && t.Param.Fmt != "" {
			p.raw(t.Param.Fmt)
			p.needSp = false
		}
		p.print(kid)
	}
}

func (p *printer) printTree(t *tree.Tree) {
	format := t.Param.Fmt
	i := 0
	alnum := false
	for s := 0; s < len(format); s++ {
		switch c := format[s]; {
		case c == '%' && s+1 < len(format):
			s++
			switch format[s] {
			case '*':
				if alnum {
					p.needSp = true
					alnum = false
				}
				if i < len(t.Children) {
					p.print(t.Children[i])
					i++
				} else {
					p.rawf("(ERR1:%s %s)", t.Param.Name, format)
				}
			case '%':
				p.putc('%')
			case '<':
				p.indent--
			case '>':
				p.indent++
			default:
				p.rawf("[ERR3:%c]", format[s])
			}
		case c == '\n':
			p.startLine = true
			p.needSp = false
			alnum = false
		default:
			p.nl()
			alnum = isAlnum(c)
			if p.needSp && alnum {
				p.putc(' ')
			}
			p.putc(c)
			p.needSp = false
		}
	}
	if alnum {
		p.needSp = true
	}
	if i < len(t.Children) {
		p.rawf("(ERR2:%s %s)", t.Param.Name, format)
	}
}

// leaf prints the text of a leaf node, spacing it off a preceding
// identifier-like glyph.
func (p *printer) leaf(text string) {
	p.nl()
	if p.needSp {
		p.putc(' ')
	}
	p.raw(text)
	p.needSp = true
}

// nl materializes a pending newline request with the current indentation.
func (p *printer) nl() {
	if !p.startLine {
		return
	}
	p.putc('\n')
	for i := 0; i < p.indent; i++ {
		p.raw("    ")
	}
	p.startLine = false
	p.needSp = false
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_'
}

func (p *printer) putc(c byte) { p.raw(string(c)) }

func (p *printer) rawf(format string, args ...interface{}) {
	p.raw(fmt.Sprintf(format, args...))
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func escape(ch, del byte) string {
	switch ch {
	case 0:
		return `\0`
	case del:
		return `\` + string(del)
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\\':
		return `\\`
	}
	return string(ch)
}
