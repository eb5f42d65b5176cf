// Copyright © 2026 The Tcpos Authors under an MIT-style license.

// Package compile transforms task-qualified functions into ordinary C:
// each task becomes a set of void-returning step functions, its locals
// are promoted to globals, and calls to other tasks, queue for, and
// poll become scheduler calls that register the continuation step.
package compile

import (
	"fmt"

	"github.com/eaburns/tcpos/syntax"
	"github.com/eaburns/tcpos/tree"
)

// A Task is one task-qualified function found in the input.
type Task struct {
	Name string
	// ID is the task's small integer id. Id 0 is reserved for the
	// main run queue, so ids start at 1.
	ID int
	// ResultVar is the promoted result variable name, or "" for a
	// void task.
	ResultVar string
	Steps     []*Step

	nrLocals int
	entry    []tree.Node
	body     *tree.Tree
}

// A Step is one step function of a task: a suspension-point boundary
// with the statements that run when the scheduler resumes the task.
type Step struct {
	Name  string
	Trace *Trace
	Body  []tree.Node
}

// A Trace is a statement trace: its head is a statement and its tail
// is the trace of the enclosing statement.
type Trace struct {
	Stmt   tree.Node
	Parent *Trace
}

// A varContext maps a lexical local name to its promoted global name
// for the remainder of the scope.
type varContext struct {
	name   *tree.Sym
	global *tree.Sym
	prev   *varContext
}

func (c *varContext) globalName(name *tree.Sym) *tree.Sym {
	for ; c != nil; c = c.prev {
		if c.name == name {
			return c.global
		}
	}
	return name
}

// A Unit is the result of compiling a translation unit.
type Unit struct {
	// Out is the output translation unit: the promoted globals, the
	// step prototypes, the transformed functions, and the non-task
	// declarations passed through.
	Out *tree.Tree
	// Tasks in declaration order.
	Tasks []*Task
	// Diags are the diagnostics of constructs the transformation does
	// not handle. A statement of unknown form is left out of the
	// output; a statement with a suspension point nested in control
	// flow is passed through unchanged.
	Diags []string
}

type compiler struct {
	interner *tree.Interner
	tasks    []*Task
	byName   map[*tree.Sym]*Task
	declTask map[*tree.Tree]*Task
	globals  []tree.Node
	diags    []string
	cur      *Task
}

// Compile transforms the declarations of root. The interner must be
// the one that interned root's identifiers.
func Compile(root *tree.Tree, interner *tree.Interner) *Unit {
	c := &compiler{
		interner: interner,
		byName:   make(map[*tree.Sym]*Task),
		declTask: make(map[*tree.Tree]*Task),
	}
	c.findTasks(root)
	for _, t := range c.tasks {
		if t.body != nil {
			c.cur = t
			c.pass1Statement(t.body.Child(0), nil, nil)
			c.pass2(t)
		}
	}
	return &Unit{Out: c.emit(root), Tasks: c.tasks, Diags: c.diags}
}

func (c *compiler) diagf(format string, args ...interface{}) {
	c.diags = append(c.diags, fmt.Sprintf(format, args...))
}

// findTasks registers every task declaration, assigning ids in
// declaration order, and promotes a result variable for each non-void
// task. All tasks are registered before any body is walked so that
// calls to later-declared tasks are recognized.
func (c *compiler) findTasks(root *tree.Tree) {
	for _, kid := range root.Children {
		decl := tree.TreeOf(kid)
		if !decl.Is("declaration") {
			continue
		}
		types := decl.ChildTree(0)
		if types == nil || !types.ChildTree(0).Is("task") {
			continue
		}
		def := decl.ChildTree(1)
		var name *tree.Ident
		switch {
		case def.Is("new_style"):
			name, _ = def.Child(0).(*tree.Ident)
		case def.Is("decl"):
			// A forward declaration parses as a variable declaration
			// with a function declarator.
			if fn := def.ChildTree(0).ChildTree(0); fn.Is("function") {
				name, _ = fn.Child(0).(*tree.Ident)
			}
		default:
			c.diagf("task declaration form %q not supported", def.Param.Name)
			continue
		}
		if name == nil {
			c.diagf("cannot find the name of a task declarator")
			continue
		}
		t := c.byName[name.Sym]
		if t == nil {
			t = &Task{Name: name.Name(), ID: len(c.tasks) + 1}
			resultType := types.Child(1)
			if resultType != nil && !tree.IsTree(resultType, "void") {
				t.ResultVar = t.Name + "_result"
				c.globals = append(c.globals,
					c.varDecl(tree.NewTree(syntax.ListTP, resultType), t.ResultVar, nil))
			}
			c.tasks = append(c.tasks, t)
			c.byName[name.Sym] = t
		}
		if body := def.ChildTree(2); body.Is("body") {
			t.body = body
		}
		c.declTask[decl] = t
	}
}

// varDecl builds declaration(types, decl(decl_init(name, init))).
// The types argument is the specifier list of the declaration.
func (c *compiler) varDecl(types tree.Node, name string, init tree.Node) tree.Node {
	return tree.NewTree(syntax.DeclarationTP,
		types,
		tree.NewTree(syntax.DeclTP,
			tree.NewTree(syntax.DeclInitTP, c.ident(name), init)))
}

func (c *compiler) ident(name string) *tree.Ident {
	return &tree.Ident{Sym: c.interner.Intern(name)}
}

func (c *compiler) addStep(trace *Trace) *Step {
	t := c.cur
	s := &Step{
		Name:  fmt.Sprintf("%s_step%d", t.Name, len(t.Steps)+1),
		Trace: trace,
	}
	t.Steps = append(t.Steps, s)
	return s
}

// findStep returns the step whose trace begins at stmt, or nil.
func (t *Task) findStep(stmt tree.Node) *Step {
	for _, s := range t.Steps {
		if s.Trace.Stmt == stmt {
			return s
		}
	}
	return nil
}

// hasBoundaryWithin reports whether any step boundary was discovered
// at or inside stmt.
func (t *Task) hasBoundaryWithin(stmt tree.Node) bool {
	for _, s := range t.Steps {
		for tr := s.Trace; tr != nil; tr = tr.Parent {
			if tr.Stmt == stmt {
				return true
			}
		}
	}
	return false
}

func (c *compiler) isCallToTask(n tree.Node) bool { return c.taskWithCall(n) != nil }

func (c *compiler) taskWithCall(n tree.Node) *Task {
	call := tree.TreeOf(n)
	if !call.Is("call") {
		return nil
	}
	callee, ok := call.Child(0).(*tree.Ident)
	if !ok {
		return nil
	}
	return c.byName[callee.Sym]
}

// initExpr returns the initializer expression of a decl_init tree, or
// nil if there is none.
func initExpr(declInit *tree.Tree) tree.Node {
	if init := declInit.ChildTree(1); init.Is("init") {
		return init.Child(0)
	}
	return nil
}

// pass1Statement walks one statement of the current task: it rewrites
// identifier references to promoted names, promotes local declarations
// to new globals, and records a step at every suspension point. It
// returns the variable context extended with the statement's
// declarations, which only a statement list uses.
func (c *compiler) pass1Statement(n tree.Node, parent *Trace, ctx *varContext) *varContext {
	stmt := tree.TreeOf(n)
	if stmt == nil {
		return ctx
	}
	trace := &Trace{Stmt: n, Parent: parent}
	switch {
	case stmt.IsList() || stmt.Is("statements"):
		for _, kid := range stmt.Children {
			child := tree.TreeOf(kid)
			if child.Is("declaration") {
				ctx = c.pass1Declaration(child, trace, ctx)
			} else {
				c.pass1Statement(kid, trace, ctx)
			}
		}
	case stmt.Is("if"):
		c.pass1Expr(stmt.Child(0), ctx)
		c.pass1Statement(stmt.Child(1), trace, ctx)
		if els := stmt.ChildTree(2); els != nil {
			c.pass1Statement(els.Child(0), trace, ctx)
		}
	case stmt.Is("queuefor"):
		c.addStep(trace)
		c.pass1Statement(stmt.Child(1), trace, ctx)
	case stmt.Is("poll"):
		c.addStep(trace)
		c.pass1Statement(stmt.Child(0), trace, ctx)
		if atmost := stmt.ChildTree(1); atmost != nil {
			atmostTrace := &Trace{Stmt: atmost, Parent: trace}
			c.addStep(atmostTrace)
			c.pass1Expr(atmost.Child(0), ctx)
			c.pass1Statement(atmost.Child(1), atmostTrace, ctx)
		}
	case stmt.Is("semi"):
		c.pass1Expr(stmt.Child(0), ctx)
		n := stmt.Child(0)
		if c.isCallToTask(n) ||
			tree.IsTree(n, "assignment") && c.isCallToTask(tree.TreeOf(n).Child(2)) {
			c.addStep(trace)
		}
	case stmt.Is("ret"):
		c.pass1Expr(stmt.Child(0), ctx)
	case stmt.Is("while"), stmt.Is("switch"):
		c.pass1Expr(stmt.Child(0), ctx)
		c.pass1Statement(stmt.Child(1), trace, ctx)
	case stmt.Is("do"):
		c.pass1Statement(stmt.Child(0), trace, ctx)
		c.pass1Expr(stmt.Child(1), ctx)
	case stmt.Is("for"):
		c.pass1Expr(stmt.Child(0), ctx)
		c.pass1Expr(stmt.Child(1), ctx)
		c.pass1Expr(stmt.Child(2), ctx)
		c.pass1Statement(stmt.Child(3), trace, ctx)
	case stmt.Is("label"):
		c.pass1Statement(stmt.Child(1), trace, ctx)
	case stmt.Is("every"):
		c.pass1Expr(stmt.Child(0), ctx)
	case stmt.Is("goto"), stmt.Is("cont"), stmt.Is("break"), stmt.Is("timer"):
		// Nothing to rewrite.
	default:
		c.diagf("task %s: unknown statement form %q; skipped",
			c.cur.Name, stmt.Param.Name)
	}
	return ctx
}

// pass1Declaration promotes one local declaration: the declaration
// moves to the new-globals list under a fresh global name, references
// for the rest of the scope are renamed, and an initializing task call
// records a step boundary after the call site.
func (c *compiler) pass1Declaration(decl *tree.Tree, listTrace *Trace, ctx *varContext) *varContext {
	types := decl.ChildTree(0)
	d := decl.ChildTree(1)
	declInit := d.ChildTree(0)
	if declInit == nil {
		return ctx
	}
	init := initExpr(declInit)
	c.pass1Expr(init, ctx)
	if name, ok := declInit.Child(0).(*tree.Ident); ok {
		c.cur.nrLocals++
		global := fmt.Sprintf("%s_var%d_%s", c.cur.Name, c.cur.nrLocals, name.Name())
		globalSym := c.interner.Intern(global)
		ctx = &varContext{name: name.Sym, global: globalSym, prev: ctx}
		name.Sym = globalSym
		var keptInit tree.Node
		if init != nil && !c.isCallToTask(init) {
			keptInit = declInit.Child(1)
		}
		c.globals = append(c.globals, c.varDecl(types, global, keptInit))
	} else {
		c.diagf("task %s: cannot promote declarator %s",
			c.cur.Name, tree.DebugString(declInit.Child(0)))
	}
	if c.isCallToTask(init) {
		c.addStep(&Trace{Stmt: decl, Parent: listTrace})
	}
	return ctx
}

// pass1Expr rewrites identifier references to their promoted names.
func (c *compiler) pass1Expr(n tree.Node, ctx *varContext) {
	switch n := n.(type) {
	case *tree.Ident:
		n.Sym = ctx.globalName(n.Sym)
	case *tree.Tree:
		for _, kid := range n.Children {
			c.pass1Expr(kid, ctx)
		}
	}
}
