package xpath

// xpath1Registry declares the core grammar: paths, predicates,
// arithmetic, general comparisons and the boolean operators.
func xpath1Registry() *registry {
	r := newRegistry()

	r.keyword("and", opAnd, "")
	r.keyword("or", opOr, "")
	r.keyword("div", opDiv, "")
	r.keyword("mod", opMod, "")

	r.literal(Literal, (*Parser).compileLiteral)
	r.literal(Digit, (*Parser).compileNumber)

	r.nullary(currNode, labelSymbol, (*Parser).compileCurrent)
	r.nullary(parentNode, labelSymbol, (*Parser).compileParent)
	r.nullary(attrNode, labelAxis, (*Parser).compileAttr)
	r.nullary(variable, labelSymbol, (*Parser).compileVariable)
	r.nullary(Name, labelSymbol, (*Parser).compileName)

	r.method(currLevel, func(spec *TokenSpec) {
		spec.Label = labelOperator
		spec.Lbp = powStep
		spec.Nud = (*Parser).compileRoot
		spec.Led = (*Parser).compileStep
	})
	r.method(anyLevel, func(spec *TokenSpec) {
		spec.Label = labelOperator
		spec.Lbp = powStep
		spec.Nud = (*Parser).compileDescendantRoot
		spec.Led = (*Parser).compileDescendantStep
	})
	r.method(begPred, func(spec *TokenSpec) {
		spec.Label = labelSymbol
		spec.Lbp = powPred
		spec.Led = (*Parser).compileFilter
	})
	r.method(begGrp, func(spec *TokenSpec) {
		spec.Label = labelSymbol
		spec.Lbp = powCall
		spec.Nud = (*Parser).compileGroup
		spec.Led = (*Parser).compileCall
	})

	for _, op := range []rune{opAdd, opSub, opMul, opDiv, opMod} {
		r.infix(op, powArith(op), buildBinary(op))
	}
	r.prefix(opSub, func(_ *Parser, expr Expr, pos Position) Expr {
		return reverse{expr: expr, pos: pos}
	})
	r.prefix(opAdd, func(_ *Parser, expr Expr, pos Position) Expr {
		return reverse{expr: expr, plus: true, pos: pos}
	})
	r.method(opMul, func(spec *TokenSpec) {
		spec.Nud = (*Parser).compileName
	})

	for _, op := range []rune{opEq, opNe, opLt, opLe, opGt, opGe} {
		r.infix(op, powCmp, buildGeneralCmp(op))
	}

	r.infix(opAnd, powAnd, func(_ *Parser, left, right Expr, _ Position) Expr {
		return logical{left: left, right: right, and: true}
	})
	r.infix(opOr, powOr, func(_ *Parser, left, right Expr, _ Position) Expr {
		return logical{left: left, right: right}
	})
	r.infix(opUnion, powUnion, buildUnion)

	return r
}

func powArith(op rune) int {
	switch op {
	case opAdd, opSub:
		return powAdd
	default:
		return powMul
	}
}

func buildBinary(op rune) func(*Parser, Expr, Expr, Position) Expr {
	return func(_ *Parser, left, right Expr, pos Position) Expr {
		return binary{
			left:  left,
			right: right,
			op:    op,
			pos:   pos,
		}
	}
}

func buildGeneralCmp(op rune) func(*Parser, Expr, Expr, Position) Expr {
	return func(p *Parser, left, right Expr, pos Position) Expr {
		return generalCmp{
			left:   left,
			right:  right,
			op:     op,
			compat: p.static.Compat || p.version == Xpath1,
			pos:    pos,
		}
	}
}

func buildUnion(_ *Parser, left, right Expr, _ Position) Expr {
	if u, ok := left.(union); ok {
		u.all = append(u.all, right)
		return u
	}
	return union{
		all: []Expr{left, right},
	}
}
