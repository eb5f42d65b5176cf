// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package compile

import (
	"github.com/eaburns/tcpos/syntax"
	"github.com/eaburns/tcpos/tree"
)

// emit assembles the output translation unit: the new globals, then a
// prototype for every step function, then the declarations in source
// order with each task definition replaced by its entry function and
// step functions.
func (c *compiler) emit(root *tree.Tree) *tree.Tree {
	var out []tree.Node
	out = append(out, c.globals...)
	for _, t := range c.tasks {
		for _, s := range t.Steps {
			out = append(out, c.protoDecl(s.Name))
		}
	}
	for _, kid := range root.Children {
		decl := tree.TreeOf(kid)
		t := c.declTask[decl]
		if t == nil {
			out = append(out, kid)
			continue
		}
		if t.body == nil || t.body != decl.ChildTree(1).ChildTree(2) {
			// A forward task declaration.
			out = append(out, c.protoDecl(t.Name))
			continue
		}
		out = append(out, c.funcDef(t.Name, t.entry))
		for _, s := range t.Steps {
			out = append(out, c.funcDef(s.Name, s.Body))
		}
	}
	return tree.NewTree(syntax.ListTP, out...)
}

// funcDef builds void name(void) { body }.
func (c *compiler) funcDef(name string, body []tree.Node) tree.Node {
	return tree.NewTree(syntax.DeclarationTP,
		tree.NewTree(syntax.ListTP, tree.NewTree(syntax.VoidTP)),
		tree.NewTree(syntax.NewStyleTP,
			c.ident(name),
			tree.NewTree(syntax.VoidTP),
			tree.NewTree(syntax.BodyTP, tree.NewTree(syntax.ListTP, body...))))
}

// protoDecl builds void name(void);.
func (c *compiler) protoDecl(name string) tree.Node {
	return tree.NewTree(syntax.DeclarationTP,
		tree.NewTree(syntax.ListTP, tree.NewTree(syntax.VoidTP)),
		tree.NewTree(syntax.NewStyleTP,
			c.ident(name),
			tree.NewTree(syntax.VoidTP),
			tree.NewTree(syntax.ForwardTP)))
}
