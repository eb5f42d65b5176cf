// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package compile

import (
	"github.com/eaburns/tcpos/syntax"
	"github.com/eaburns/tcpos/tree"
)

// Scheduler argument lists print comma separated.
var argListTP = &tree.TreeParam{Name: tree.ListName, Fmt: ", "}

// pass2 rewrites a task's body into its step-function bodies. The
// rewriter carries the body currently being filled; every suspension
// point ends that body with a scheduler call and switches to the body
// of the step registered for the site in pass 1.
type pass2 struct {
	c    *compiler
	task *Task
	cur  *[]tree.Node
}

func (c *compiler) pass2(t *Task) {
	p := &pass2{c: c, task: t, cur: &t.entry}
	p.stmt(t.body.Child(0))
}

func (p *pass2) emit(n tree.Node) { *p.cur = append(*p.cur, n) }

func (p *pass2) stmt(n tree.Node) {
	stmt := tree.TreeOf(n)
	if stmt == nil {
		return
	}
	switch {
	case stmt.IsList() || stmt.Is("statements"):
		for _, kid := range stmt.Children {
			if child := tree.TreeOf(kid); child.Is("declaration") {
				p.declaration(child)
			} else {
				p.stmt(kid)
			}
		}

	case stmt.Is("queuefor"):
		// The current step enqueues the continuation on the named
		// queue and returns.
		step := p.task.findStep(n)
		p.emit(p.c.schedCall("os_queue_for",
			stmt.Child(0), p.c.intNode(p.task.ID), p.c.ident(step.Name)))
		p.cur = &step.Body
		p.stmt(stmt.Child(1))

	case stmt.Is("poll"):
		step := p.task.findStep(n)
		if atmost := stmt.ChildTree(1); atmost != nil {
			timeout := p.task.findStep(atmost)
			p.emit(p.c.schedCall("os_poll_at_most",
				atmost.Child(0), p.c.intNode(p.task.ID),
				p.c.ident(step.Name), p.c.ident(timeout.Name)))
			save := p.cur
			p.cur = &timeout.Body
			p.stmt(atmost.Child(1))
			p.cur = save
		} else {
			p.emit(p.c.schedCall("os_poll",
				p.c.intNode(p.task.ID), p.c.ident(step.Name)))
		}
		p.cur = &step.Body
		p.stmt(stmt.Child(0))

	case stmt.Is("semi"):
		expr := stmt.Child(0)
		callee := p.c.taskWithCall(expr)
		var lhs tree.Node
		if callee == nil && tree.IsTree(expr, "assignment") {
			ass := tree.TreeOf(expr)
			if callee = p.c.taskWithCall(ass.Child(2)); callee != nil {
				lhs = ass.Child(0)
			}
		}
		if callee == nil {
			p.emit(n)
			return
		}
		step := p.task.findStep(n)
		p.emit(p.c.schedCall("os_call_task",
			p.c.intNode(callee.ID), p.c.intNode(p.task.ID), p.c.ident(step.Name)))
		if lhs != nil && callee.ResultVar != "" {
			step.Body = append(step.Body, p.c.assignStmt(lhs, p.c.ident(callee.ResultVar)))
		}
		p.cur = &step.Body

	case stmt.Is("ret"):
		// A non-void task stores its result in the promoted result
		// variable before returning control to the scheduler.
		if p.task.ResultVar != "" && stmt.Child(0) != nil {
			p.emit(p.c.assignStmt(p.c.ident(p.task.ResultVar), stmt.Child(0)))
			p.emit(tree.NewTree(syntax.RetTP, nil))
		} else {
			p.emit(n)
		}

	case stmt.Is("if"), stmt.Is("while"), stmt.Is("do"),
		stmt.Is("for"), stmt.Is("switch"), stmt.Is("label"):
		if p.task.hasBoundaryWithin(n) {
			p.c.diagf("task %s: suspension point inside %q is not lowered; statement passed through",
				p.task.Name, stmt.Param.Name)
		}
		p.emit(n)

	case stmt.Is("goto"), stmt.Is("cont"), stmt.Is("break"),
		stmt.Is("timer"), stmt.Is("every"):
		p.emit(n)

	default:
		// An unknown statement form, reported by pass 1, is skipped.
	}
}

// declaration rewrites a promoted local declaration at its original
// position: an ordinary initializer becomes an assignment, and a task
// call initializer becomes the scheduler call registering the
// continuation step; the continuation begins by fetching the callee's
// result.
func (p *pass2) declaration(decl *tree.Tree) {
	d := decl.ChildTree(1)
	declInit := d.ChildTree(0)
	if declInit == nil {
		return
	}
	init := initExpr(declInit)
	if init == nil {
		return
	}
	if callee := p.c.taskWithCall(init); callee != nil {
		step := p.task.findStep(decl)
		p.emit(p.c.schedCall("os_call_task",
			p.c.intNode(callee.ID), p.c.intNode(p.task.ID), p.c.ident(step.Name)))
		if callee.ResultVar != "" {
			step.Body = append(step.Body,
				p.c.assignStmt(declInit.Child(0), p.c.ident(callee.ResultVar)))
		}
		p.cur = &step.Body
	} else {
		p.emit(p.c.assignStmt(declInit.Child(0), init))
	}
}

func (c *compiler) schedCall(fn string, args ...tree.Node) tree.Node {
	return tree.NewTree(syntax.SemiTP,
		tree.NewTree(syntax.CallTP,
			c.ident(fn),
			tree.NewTree(argListTP, args...)))
}

func (c *compiler) assignStmt(lhs, rhs tree.Node) tree.Node {
	return tree.NewTree(syntax.SemiTP,
		tree.NewTree(syntax.AssignmentTP, lhs, tree.NewTree(syntax.AssTP), rhs))
}

func (c *compiler) intNode(v int) *tree.Int { return &tree.Int{Val: int64(v)} }
