// Copyright © 2026 The Tcpos Authors under an MIT-style license.

package syntax

import (
	"github.com/eaburns/tcpos/grammar"
	"github.com/eaburns/tcpos/tree"
)

// rb wraps a rule builder with the idioms the C grammar repeats:
// keywords, identifiers with trailing white space, child-list trees.
type rb struct {
	b *grammar.RuleB
	p *Parser
}

func (p *Parser) rule(g *grammar.Grammar, name string) rb {
	return rb{b: g.Rule(name), p: p}
}

// recRule starts a left-recursive rule seeding its child list with the
// previously parsed result.
func (p *Parser) recRule(g *grammar.Grammar, name string) rb {
	return rb{b: g.RecRule(name, tree.RecAddChild), p: p}
}

func (r rb) ch(c byte) rb              { r.b.Char(c); return r }
func (r rb) ws() rb                    { r.b.NT("white_space", nil); return r }
func (r rb) charWS(c byte) rb          { return r.ch(c).ws() }
func (r rb) nt(name string) rb         { r.b.NT(name, tree.AddChild); return r }
func (r rb) ntp(name string) rb        { r.b.NT(name, tree.TakeChild); return r }
func (r rb) eof() rb                   { r.b.Eof(); return r }
func (r rb) opt() rb                   { r.b.Opt(nil); return r }
func (r rb) avoid() rb                 { r.b.Avoid(); return r }
func (r rb) backTrack() rb             { r.b.BackTrack(); return r }
func (r rb) addChild() rb              { r.b.Add(tree.AddChild); return r }
func (r rb) pass()                     { r.b.End(tree.PassTree) }
func (r rb) treeTP(tp *tree.TreeParam) { r.b.End(tree.MakeTree(tp)) }

func (r rb) kw(word string) rb {
	r.b.NT("ident", nil).Cond(r.p.isKeyword(word)).Expect(`"` + word + `"`)
	return r.ws()
}

func (r rb) ident() rb {
	r.b.NT("ident", tree.AddChild).Cond(notKeyword)
	return r.ws()
}

func (r rb) identOpt() rb {
	r.b.NT("ident", tree.AddChild).Cond(notKeyword).Opt(nil)
	return r.ws()
}

// seqList makes the last element a sequence collected into a list tree
// with the given separator format.
func (r rb) seqList(sep string) rb {
	r.b.Seq(nil, tree.AddSeqAsList(&tree.TreeParam{Name: tree.ListName, Fmt: sep}))
	return r
}

func (r rb) chainCharWS(c byte) rb {
	r.b.Chain(func(b *grammar.RuleB) { b.Char(c).NT("white_space", nil) })
	return r
}

func (r rb) group(build func(alts)) rb {
	p := r.p
	r.b.Group(func(a *grammar.Alts) { build(alts{a: a, p: p}) })
	return r
}

func (r rb) tree(name, fmt string) {
	r.b.End(tree.MakeTree(&tree.TreeParam{Name: name, Fmt: fmt}))
}

func (r rb) treeFromList(name, fmt string) {
	r.b.End(tree.MakeTreeFromList(&tree.TreeParam{Name: name, Fmt: fmt}))
}

func (r rb) treeFromListTP(tp *tree.TreeParam) {
	r.b.End(tree.MakeTreeFromList(tp))
}

type alts struct {
	a *grammar.Alts
	p *Parser
}

func (a alts) rule() rb { return rb{b: a.a.Rule(), p: a.p} }

func (p *Parser) isKeyword(word string) grammar.CondFunc {
	sym := p.interner.Keyword(word)
	return func(v interface{}) bool {
		id, ok := v.(*tree.Ident)
		return ok && id.Sym == sym
	}
}

func notKeyword(v interface{}) bool {
	id, ok := v.(*tree.Ident)
	return ok && !id.Keyword
}

// cGrammar defines the C expression, declaration, and statement
// grammar with the cooperative-task extensions: the task storage
// class and the queue for, poll, at most, timer, and every
// statements. Operator precedence levels are non-terminals whose
// operators are left-recursive rules.
func (p *Parser) cGrammar(g *grammar.Grammar) {
	whiteSpaceGrammar(g)
	p.identGrammar(g)
	charGrammar(g)
	stringGrammar(g)
	intGrammar(g)
	doubleGrammar(g)

	r := p.rule(g, "primary_expr")
	r.ident()
	r.pass()
	p.rule(g, "primary_expr").ntp("double").ws()
	p.rule(g, "primary_expr").ntp("int").ws()
	p.rule(g, "primary_expr").ntp("char").ws()
	p.rule(g, "primary_expr").ntp("string").ws()
	r = p.rule(g, "primary_expr").charWS('(').nt("expr").charWS(')')
	r.tree("brackets", "(%*)")

	p.rule(g, "postfix_expr").ntp("primary_expr")
	r = p.recRule(g, "postfix_expr").charWS('[').nt("expr").charWS(']')
	r.tree("arrayexp", "%*[%*]")
	r = p.recRule(g, "postfix_expr").charWS('(').
		nt("assignment_expr").seqList(", ").chainCharWS(',').opt().charWS(')')
	r.treeTP(CallTP)
	r = p.recRule(g, "postfix_expr").charWS('.').ident()
	r.tree("field", "%*.%*")
	r = p.recRule(g, "postfix_expr").ch('-').charWS('>').ident()
	r.tree("fieldderef", "%*->%*")
	r = p.recRule(g, "postfix_expr").ch('+').charWS('+')
	r.tree("post_inc", "%*++")
	r = p.recRule(g, "postfix_expr").ch('-').charWS('-')
	r.tree("post_dec", "%*--")

	r = p.rule(g, "unary_expr").ch('+').charWS('+').nt("unary_expr")
	r.tree("pre_inc", "++%*")
	r = p.rule(g, "unary_expr").ch('-').charWS('-').nt("unary_expr")
	r.tree("pre_dec", "--%*")
	r = p.rule(g, "unary_expr").charWS('&').nt("cast_expr")
	r.tree("address_of", "&%*")
	r = p.rule(g, "unary_expr").charWS('*').nt("cast_expr")
	r.tree("deref", "*%*")
	r = p.rule(g, "unary_expr").charWS('+').nt("cast_expr")
	r.tree("plus", "+%*")
	r = p.rule(g, "unary_expr").charWS('-').nt("cast_expr")
	r.tree("min", "-%*")
	r = p.rule(g, "unary_expr").charWS('~').nt("cast_expr")
	r.tree("invert", "~%*")
	r = p.rule(g, "unary_expr").charWS('!').nt("cast_expr")
	r.tree("not", "!%*")
	r = p.rule(g, "unary_expr").kw("sizeof").charWS('(').nt("sizeof_type").charWS(')')
	r.tree("sizeof", "sizeof(%*)")
	r = p.rule(g, "unary_expr").kw("sizeof").nt("unary_expr")
	r.tree("sizeof_expr", "sizeof %*")
	p.rule(g, "unary_expr").ntp("postfix_expr")

	r = p.rule(g, "sizeof_type").kw("char")
	r.tree("char", "char")
	r = p.rule(g, "sizeof_type").kw("short")
	r.tree("short", "short")
	r = p.rule(g, "sizeof_type").kw("int")
	r.tree("int", "int")
	r = p.rule(g, "sizeof_type").kw("long")
	r.tree("long", "long")
	r = p.rule(g, "sizeof_type").kw("signed").nt("sizeof_type")
	r.tree("signed", "signed %*")
	r = p.rule(g, "sizeof_type").kw("unsigned").nt("sizeof_type")
	r.tree("unsigned", "unsigned %*")
	r = p.rule(g, "sizeof_type").kw("float")
	r.tree("float", "float")
	r = p.rule(g, "sizeof_type").kw("double").nt("sizeof_type").opt()
	r.tree("double", "double %*")
	r = p.rule(g, "sizeof_type").kw("const").nt("sizeof_type")
	r.tree("const", "const %*")
	r = p.rule(g, "sizeof_type").kw("volatile").nt("sizeof_type")
	r.tree("volatile", "volatile %*")
	r = p.rule(g, "sizeof_type").kw("void")
	r.tree("void", "void")
	r = p.rule(g, "sizeof_type").kw("struct").ident()
	r.tree("structdecl", "struct %*")
	r = p.rule(g, "sizeof_type").ident()
	r.pass()
	r = p.recRule(g, "sizeof_type").ws().charWS('*')
	r.tree("pointdecl", "%**")

	r = p.rule(g, "cast_expr").charWS('(').nt("abstract_declaration").charWS(')').nt("cast_expr")
	r.tree("cast", "(%*)%*")
	p.rule(g, "cast_expr").ntp("unary_expr")

	p.rule(g, "l_expr1").ntp("cast_expr")
	r = p.recRule(g, "l_expr1").ws().charWS('*').nt("cast_expr")
	r.tree("times", "%* * %*")
	r = p.recRule(g, "l_expr1").ws().charWS('/').nt("cast_expr")
	r.tree("div", "%* / %*")
	r = p.recRule(g, "l_expr1").ws().charWS('%').nt("cast_expr")
	r.tree("mod", "%* %% %*")

	p.rule(g, "l_expr2").ntp("l_expr1")
	r = p.recRule(g, "l_expr2").ws().charWS('+').nt("l_expr1")
	r.tree("add", "%* + %*")
	r = p.recRule(g, "l_expr2").ws().charWS('-').nt("l_expr1")
	r.tree("sub", "%* - %*")

	p.rule(g, "l_expr3").ntp("l_expr2")
	r = p.recRule(g, "l_expr3").ws().ch('<').charWS('<').nt("l_expr2")
	r.tree("ls", "%* << %*")
	r = p.recRule(g, "l_expr3").ws().ch('>').charWS('>').nt("l_expr2")
	r.tree("rs", "%* >> %*")

	p.rule(g, "l_expr4").ntp("l_expr3")
	r = p.recRule(g, "l_expr4").ws().ch('<').charWS('=').nt("l_expr3")
	r.tree("le", "%* <= %*")
	r = p.recRule(g, "l_expr4").ws().ch('>').charWS('=').nt("l_expr3")
	r.tree("ge", "%* >= %*")
	r = p.recRule(g, "l_expr4").ws().charWS('<').nt("l_expr3")
	r.tree("lt", "%* < %*")
	r = p.recRule(g, "l_expr4").ws().charWS('>').nt("l_expr3")
	r.tree("gt", "%* > %*")
	r = p.recRule(g, "l_expr4").ws().ch('=').charWS('=').nt("l_expr3")
	r.tree("eq", "%* == %*")
	r = p.recRule(g, "l_expr4").ws().ch('!').charWS('=').nt("l_expr3")
	r.tree("ne", "%* != %*")

	p.rule(g, "l_expr5").ntp("l_expr4")
	r = p.recRule(g, "l_expr5").ws().charWS('^').nt("l_expr4")
	r.tree("bexor", "%* ^ %*")

	p.rule(g, "l_expr6").ntp("l_expr5")
	// A single '&' only: the '&&' operator is left to l_expr8.
	g.Rule("single_amp").Term(func(text string, off int) (int, interface{}) {
		if off < len(text) && text[off] == '&' && (off+1 == len(text) || text[off+1] != '&') {
			return off + 1, nil
		}
		return off, nil
	}).Expect("'&'")
	r = p.recRule(g, "l_expr6").ws()
	r.b.NT("single_amp", nil)
	r = r.ws().nt("l_expr5")
	r.tree("land", "%* & %*")

	p.rule(g, "l_expr7").ntp("l_expr6")
	r = p.recRule(g, "l_expr7").ws().charWS('|').nt("l_expr6")
	r.tree("lor", "%* | %*")

	p.rule(g, "l_expr8").ntp("l_expr7")
	r = p.recRule(g, "l_expr8").ws().ch('&').charWS('&').nt("l_expr7")
	r.tree("and", "%* && %*")

	p.rule(g, "l_expr9").ntp("l_expr8")
	r = p.recRule(g, "l_expr9").ws().ch('|').charWS('|').nt("l_expr8")
	r.tree("or", "%* || %*")

	r = p.rule(g, "conditional_expr").nt("l_expr9").ws().charWS('?').
		nt("l_expr9").ws().charWS(':').nt("conditional_expr")
	r.tree("if_expr", "%* ? %* : %*")
	p.rule(g, "conditional_expr").ntp("l_expr9")

	r = p.rule(g, "assignment_expr").nt("unary_expr").ws().
		nt("assignment_operator").ws().nt("assignment_expr")
	r.treeTP(AssignmentTP)
	p.rule(g, "assignment_expr").ntp("conditional_expr")

	r = p.rule(g, "assignment_operator").charWS('=')
	r.treeTP(AssTP)
	r = p.rule(g, "assignment_operator").ch('*').charWS('=')
	r.tree("times_ass", "*=")
	r = p.rule(g, "assignment_operator").ch('/').charWS('=')
	r.tree("div_ass", "/=")
	r = p.rule(g, "assignment_operator").ch('%').charWS('=')
	r.tree("mod_ass", "%%=")
	r = p.rule(g, "assignment_operator").ch('+').charWS('=')
	r.tree("add_ass", "+=")
	r = p.rule(g, "assignment_operator").ch('-').charWS('=')
	r.tree("sub_ass", "-=")
	r = p.rule(g, "assignment_operator").ch('<').ch('<').charWS('=')
	r.tree("sl_ass", "<<=")
	r = p.rule(g, "assignment_operator").ch('>').ch('>').charWS('=')
	r.tree("sr_ass", ">>=")
	r = p.rule(g, "assignment_operator").ch('&').charWS('=')
	r.tree("and_ass", "&=")
	r = p.rule(g, "assignment_operator").ch('|').charWS('=')
	r.tree("or_ass", "|=")
	r = p.rule(g, "assignment_operator").ch('^').charWS('=')
	r.tree("exor_ass", "^=")

	r = p.rule(g, "expr").nt("assignment_expr")
	r.pass()

	p.rule(g, "constant_expr").ntp("conditional_expr")

	// A declaration of variables or of a function, either new style or
	// old (K&R) style. The leading specifier list carries Avoid so that
	// the last specifier-shaped name is left to be the declarator.
	r = p.rule(g, "declaration")
	r.group(func(a alts) {
		a.rule().nt("storage_class_specifier").pass()
		a.rule().nt("simple_type_specifier").pass()
	}).seqList("").opt().addChild().avoid()
	r.group(func(a alts) {
		ir := a.rule()
		ir.group(func(b alts) {
			dr := b.rule()
			dr.nt("declarator")
			dr.group(func(c alts) {
				init := c.rule().ws().charWS('=').nt("initializer")
				init.tree("init", " = %*")
			}).opt().addChild()
			dr.treeTP(DeclInitTP)
		}).addChild()
		ir.charWS(';')
		ir.treeFromListTP(DeclTP)
	}).addChild()
	r.treeTP(DeclarationTP)

	r = p.rule(g, "declaration")
	r.group(func(a alts) {
		a.rule().nt("storage_class_specifier").pass()
		a.rule().nt("type_specifier").pass()
	}).seqList("").opt().addChild().avoid()
	r.group(func(a alts) {
		ns := a.rule()
		ns.nt("func_declarator").charWS('(')
		ns.group(func(b alts) {
			b.rule().ntp("parameter_declaration_list").opt()
			void := b.rule().kw("void")
			void.treeTP(VoidTP)
		}).addChild()
		ns.charWS(')')
		ns.group(func(b alts) {
			fwd := b.rule().charWS(';')
			fwd.treeTP(ForwardTP)
			body := b.rule().charWS('{').nt("decl_or_stat").charWS('}')
			body.treeTP(BodyTP)
		}).addChild()
		ns.treeTP(NewStyleTP)
		ns.ws()

		os := a.rule()
		os.nt("func_declarator").charWS('(').nt("ident_list").opt().charWS(')').
			nt("declaration").seqList("").opt().
			charWS('{').nt("decl_or_stat").charWS('}')
		os.tree("old_style", "%*(%*)\n%*{\n%*\n}\n")

		vd := a.rule()
		vd.group(func(b alts) {
			dr := b.rule()
			dr.nt("declarator")
			dr.group(func(c alts) {
				init := c.rule().ws().charWS('=').nt("initializer")
				init.tree("init", " = %*")
			}).opt().addChild()
			dr.treeTP(DeclInitTP)
		}).opt().addChild()
		vd.charWS(';')
		vd.treeFromListTP(DeclTP)
	}).addChild()
	r.treeTP(DeclarationTP)

	// var_declaration is the declaration form allowed inside bodies:
	// no function definitions.
	r = p.rule(g, "var_declaration")
	r.group(func(a alts) {
		a.rule().nt("storage_class_specifier").pass()
		a.rule().nt("type_specifier").pass()
	}).seqList("").opt().addChild().avoid()
	r.group(func(a alts) {
		ir := a.rule()
		ir.group(func(b alts) {
			dr := b.rule()
			dr.nt("declarator")
			dr.group(func(c alts) {
				init := c.rule().ws().charWS('=').nt("initializer")
				init.tree("init", " = %*")
			}).opt().addChild()
			dr.treeTP(DeclInitTP)
		}).opt().addChild()
		ir.charWS(';')
		ir.treeTP(DeclTP)
	}).addChild()
	r.treeTP(DeclarationTP)

	r = p.rule(g, "storage_class_specifier").kw("typedef")
	r.tree("typedef", "typedef")
	r = p.rule(g, "storage_class_specifier").kw("extern")
	r.tree("extern", "extern")
	r = p.rule(g, "storage_class_specifier").kw("inline")
	r.tree("inline", "inline")
	r = p.rule(g, "storage_class_specifier").kw("static")
	r.tree("static", "static")
	r = p.rule(g, "storage_class_specifier").kw("auto")
	r.tree("auto", "auto")
	r = p.rule(g, "storage_class_specifier").kw("task")
	r.tree("task", "task")
	r = p.rule(g, "storage_class_specifier").kw("register")
	r.tree("register", "register")

	for _, simple := range []string{
		"char", "short", "int", "long", "signed", "unsigned",
		"float", "double", "const", "volatile", "void",
	} {
		r = p.rule(g, "simple_type_specifier").kw(simple)
		r.tree(simple, simple)
	}
	r = p.rule(g, "simple_type_specifier").ident()
	r.pass()

	for _, simple := range []string{
		"char", "short", "int", "long", "signed", "unsigned",
		"float", "double", "const", "volatile", "void",
	} {
		r = p.rule(g, "type_specifier").kw(simple)
		r.tree(simple, simple)
	}
	p.rule(g, "type_specifier").nt("struct_or_union_specifier").pass()
	p.rule(g, "type_specifier").nt("enum_specifier").pass()
	r = p.rule(g, "type_specifier").ident()
	r.pass()

	for _, su := range []string{"struct", "union"} {
		r = p.rule(g, "struct_or_union_specifier").kw(su).identOpt()
		r.group(func(a alts) {
			body := a.rule().charWS('{')
			body.group(func(b alts) {
				b.rule().ntp("struct_declaration_or_anon")
			}).seqList("").addChild()
			body.charWS('}')
			body.tree("struct_body", "{\n%>%*%<\n}")
		}).opt().addChild()
		r.tree(su, su+" %*%*")
	}

	r = p.rule(g, "struct_declaration_or_anon").nt("struct_or_union_specifier").charWS(';')
	r.treeFromListTP(SemiTP)
	p.rule(g, "struct_declaration_or_anon").ntp("struct_declaration")

	r = p.rule(g, "struct_declaration").nt("type_specifier").nt("struct_declaration")
	r.tree("type", "%*%*")
	r = p.rule(g, "struct_declaration").nt("struct_declarator").seqList(", ").chainCharWS(',').charWS(';')
	r.tree("strdec", "%*;")

	r = p.rule(g, "struct_declarator")
	r.nt("declarator")
	r.group(func(a alts) {
		fs := a.rule().charWS(':').nt("constant_expr")
		fs.tree("fieldsize", " : %*")
	}).opt().addChild()
	r.tree("record_field", "%*%*")

	r = p.rule(g, "enum_specifier").kw("enum").identOpt().charWS('{').
		nt("enumerator").seqList(", ").chainCharWS(',').charWS('}')
	r.tree("enum", "enum %*{\n%*\n}")

	r = p.rule(g, "enumerator").ident()
	r.group(func(a alts) {
		val := a.rule().charWS('=').nt("constant_expr")
		val.tree("value", " = %*")
	}).opt().addChild()
	r.tree("enumerator", "%*%*")

	r = p.rule(g, "func_declarator").charWS('*')
	r.group(func(a alts) {
		c := a.rule().kw("const")
		c.tree("const", "const")
	}).opt().addChild()
	r.nt("func_declarator")
	r.tree("pointdecl", "*%*%*")
	p.rule(g, "func_declarator").charWS('(').nt("func_declarator").charWS(')').pass()
	r = p.rule(g, "func_declarator").ident()
	r.pass()

	r = p.rule(g, "declarator").charWS('*')
	r.group(func(a alts) {
		c := a.rule().kw("const")
		c.tree("const", "const")
	}).opt().addChild()
	r.nt("declarator")
	r.tree("pointdecl", "*%*%*")
	r = p.rule(g, "declarator").charWS('(').nt("declarator").charWS(')')
	r.tree("brackets", "(%*)")
	r = p.rule(g, "declarator").ws().ident()
	r.pass()
	r = p.recRule(g, "declarator").charWS('[').nt("constant_expr").opt().charWS(']')
	r.tree("array", "%*[%*]")
	r = p.recRule(g, "declarator").charWS('(').nt("abstract_declaration_list").opt().charWS(')')
	r.tree("function", "%*(%*)")

	r = p.rule(g, "abstract_declaration_list")
	r.nt("abstract_declaration").seqList(", ").backTrack().chainCharWS(',')
	r.group(func(a alts) {
		va := a.rule().charWS(',').ch('.').ch('.').charWS('.')
		va.tree("varargs", ", ...")
	}).opt().addChild()
	r.tree("abstract_declaration_list", "%*%*")

	r = p.rule(g, "parameter_declaration_list")
	r.nt("parameter_declaration").seqList(", ").backTrack().chainCharWS(',')
	r.group(func(a alts) {
		va := a.rule().charWS(',').ch('.').ch('.').charWS('.')
		va.tree("varargs", ", ...")
	}).opt().addChild()
	r.tree("parameter_declaration_list", "%*%*")

	r = p.rule(g, "ident_list")
	r.ident()
	r.group(func(a alts) {
		more := a.rule().charWS(',')
		more.group(func(b alts) {
			va := b.rule().ch('.').ch('.').charWS('.')
			va.tree("varargs", ", ...")
			rest := b.rule().nt("ident_list")
			rest.pass()
		})
	}).opt().addChild()
	r.tree("ident_list", "%*%*")

	r = p.rule(g, "parameter_declaration").nt("type_specifier").nt("parameter_declaration")
	r.tree("type", "%*%*")
	p.rule(g, "parameter_declaration").ntp("declarator")
	p.rule(g, "parameter_declaration").ntp("abstract_declarator")

	r = p.rule(g, "abstract_declaration").nt("type_specifier").nt("parameter_declaration")
	r.tree("type", "%*%*")
	p.rule(g, "abstract_declaration").ntp("abstract_declarator")

	r = p.rule(g, "abstract_declarator").charWS('*')
	r.group(func(a alts) {
		c := a.rule().kw("const")
		c.tree("const", "const")
	}).opt().addChild()
	r.nt("abstract_declarator")
	r.tree("abs_pointdecl", "*%*%*")
	r = p.rule(g, "abstract_declarator").charWS('(').nt("abstract_declarator").charWS(')')
	r.tree("abs_brackets", "(%*)")
	p.rule(g, "abstract_declarator")
	r = p.recRule(g, "abstract_declarator").charWS('[').nt("constant_expr").opt().charWS(']')
	r.tree("abs_array", "%*[%*]")
	r = p.recRule(g, "abstract_declarator").charWS('(').nt("parameter_declaration_list").charWS(')')
	r.tree("abs_func", "%*(%*)")

	p.rule(g, "initializer").ntp("assignment_expr")
	r = p.rule(g, "initializer").charWS('{').
		nt("initializer").seqList(", ").chainCharWS(',').
		ch(',').opt().ws().charWS('}')
	r.tree("initializer", "{%*}")

	r = p.rule(g, "decl_or_stat")
	r.group(func(a alts) {
		a.rule().nt("statement").pass()
		a.rule().nt("var_declaration").pass()
	}).seqList("").opt().addChild()
	r.pass()

	r = p.rule(g, "statement")
	r.group(func(a alts) {
		lb := a.rule().ident()
		lb.pass()
		cs := a.rule().kw("case").nt("constant_expr")
		cs.tree("case", "case %*")
		df := a.rule().kw("default")
		df.tree("default", "default")
	}).addChild()
	r.charWS(':').nt("statement")
	r.tree("label", "%*:%*")
	r = p.rule(g, "statement").charWS('{').nt("decl_or_stat").charWS('}')
	r.tree("statements", "%<{\n%>%*\n%<}%>")
	r = p.rule(g, "statement").nt("expr").opt().charWS(';')
	r.treeFromListTP(SemiTP)
	r = p.rule(g, "statement").kw("if").ws().charWS('(').nt("expr").charWS(')').nt("statement")
	r.group(func(a alts) {
		el := a.rule().kw("else").nt("statement")
		el.tree("else", "\nelse\n%>%*%<")
	}).opt().addChild()
	r.tree("if", "if (%*)\n%>%*%<%*")
	r = p.rule(g, "statement").kw("switch").ws().charWS('(').nt("expr").charWS(')').nt("statement")
	r.tree("switch", "switch (%*)%*")
	r = p.rule(g, "statement").kw("while").ws().charWS('(').nt("expr").charWS(')').nt("statement")
	r.tree("while", "while (%*)%*")
	r = p.rule(g, "statement").kw("do").nt("statement").kw("while").ws().
		charWS('(').nt("expr").charWS(')').charWS(';')
	r.tree("do", "do%>%*%<\nwhile (%*);")
	r = p.rule(g, "statement").kw("for").ws().charWS('(').nt("expr").opt().charWS(';')
	r.group(func(a alts) {
		a.rule().ws().ntp("expr")
	}).opt().addChild()
	r.charWS(';')
	r.group(func(a alts) {
		a.rule().ws().ntp("expr")
	}).opt().addChild()
	r.charWS(')').nt("statement")
	r.tree("for", "for (%*; %*; %*)\n%>%*%<")
	r = p.rule(g, "statement").kw("goto").ident().charWS(';')
	r.tree("goto", "goto %*;")
	r = p.rule(g, "statement").kw("continue").charWS(';')
	r.tree("cont", "continue;")
	r = p.rule(g, "statement").kw("break").charWS(';')
	r.tree("break", "break;")
	r = p.rule(g, "statement").kw("return").nt("expr").opt().charWS(';')
	r.treeTP(RetTP)
	r = p.rule(g, "statement").kw("queue").ws().kw("for").ws().nt("ident").ws().nt("statement")
	r.tree("queuefor", "queue for %*\n%>%*%<")
	r = p.rule(g, "statement").kw("poll").ws().nt("statement")
	r.group(func(a alts) {
		am := a.rule().kw("at").ws().kw("most").ws().
			charWS('(').nt("expr").charWS(')').nt("statement")
		am.tree("atmost", "\nat most (%*)\n%>%*%<\n")
	}).opt().addChild()
	r.tree("poll", "poll\n%>%*%<%*")
	r = p.rule(g, "statement").kw("timer").ws().nt("ident").ws().charWS(';')
	r.tree("timer", "timer %*;")
	r = p.rule(g, "statement").kw("every").ws().charWS('(').nt("expr").charWS(')').
		kw("start").ws().nt("ident").ws().charWS(';')
	r.tree("every", "every (%*) start %*;")

	r = p.rule(g, "root")
	r.ws()
	r.group(func(a alts) {
		a.rule().nt("declaration")
	}).seqList("").opt().eof()
	r.pass()
}
