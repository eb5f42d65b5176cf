// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package syntax

import "github.com/eaburns/tcpos/tree"

// Tree params shared between the grammar's tree-building callbacks and
// the task transformation, which synthesizes nodes with the same shapes.
var (
	DeclarationTP = &tree.TreeParam{Name: "declaration", Fmt: "%*%*"}
	ListTP        = &tree.TreeParam{Name: tree.ListName, Fmt: ""}
	DeclTP        = &tree.TreeParam{Name: "decl", Fmt: "%*;\n"}
	DeclInitTP    = &tree.TreeParam{Name: "decl_init", Fmt: "%*%*"}
	SemiTP        = &tree.TreeParam{Name: "semi", Fmt: "%*;"}
	AssignmentTP  = &tree.TreeParam{Name: "assignment", Fmt: "%* %* %*"}
	AssTP         = &tree.TreeParam{Name: "ass", Fmt: "="}
	CallTP        = &tree.TreeParam{Name: "call", Fmt: "%*(%*)"}
	NewStyleTP    = &tree.TreeParam{Name: "new_style", Fmt: "%*(%*)\n%*"}
	BodyTP        = &tree.TreeParam{Name: "body", Fmt: "{\n%>%*%<\n}\n\n"}
	ForwardTP     = &tree.TreeParam{Name: "forward", Fmt: ";\n"}
	RetTP         = &tree.TreeParam{Name: "ret", Fmt: "return%*;"}
	VoidTP        = &tree.TreeParam{Name: "void", Fmt: "void"}
	IntTP         = &tree.TreeParam{Name: "int", Fmt: "int"}
)
