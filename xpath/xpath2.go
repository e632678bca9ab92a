package xpath

// xpath2Registry extends the core table with sequences, value and
// node comparisons, set operators, type expressions and the binding
// forms of XPath 2.0.
func xpath2Registry() *registry {
	r := xpath1Registry().clone()

	r.keyword("union", opUnion, "")
	r.keyword("intersect", opIntersect, "")
	r.keyword("except", opExcept, "")
	r.keyword("idiv", opIntDiv, "")
	r.keyword("to", opRange, "")
	r.keyword("is", opIs, "")
	r.keyword("eq", opValEq, "")
	r.keyword("ne", opValNe, "")
	r.keyword("lt", opValLt, "")
	r.keyword("le", opValLe, "")
	r.keyword("gt", opValGt, "")
	r.keyword("ge", opValGe, "")
	r.keyword("for", opFor, "")
	r.keyword("let", opLet, "")
	r.keyword("some", opSome, "")
	r.keyword("every", opEvery, "")
	r.keyword("if", opIf, "")
	r.keyword("in", opIn, "")
	r.keyword("return", opReturn, "")
	r.keyword("satisfies", opSatisfies, "")
	r.keyword("then", opThen, "")
	r.keyword("else", opElse, "")
	r.keyword("instance", opInstanceOf, "of")
	r.keyword("treat", opTreatAs, "as")
	r.keyword("cast", opCastAs, "as")
	r.keyword("castable", opCastableAs, "as")

	r.infix(opSeq, powSeq, buildSequence)
	r.infix(opRange, powRange, func(_ *Parser, left, right Expr, pos Position) Expr {
		return rng{left: left, right: right, pos: pos}
	})
	r.infix(opIntDiv, powMul, buildBinary(opIntDiv))
	r.infix(opConcat, powConcat, func(_ *Parser, left, right Expr, pos Position) Expr {
		return stringConcat{left: left, right: right, pos: pos}
	})

	for _, op := range []rune{opValEq, opValNe, opValLt, opValLe, opValGt, opValGe} {
		r.infix(op, powCmp, buildValueCmp(op))
	}
	for _, op := range []rune{opIs, opBefore, opAfter} {
		r.infix(op, powCmp, buildNodeCmp(op))
	}

	r.infix(opIntersect, powIntersect, func(_ *Parser, left, right Expr, _ Position) Expr {
		return intersect{all: []Expr{left, right}}
	})
	r.infix(opExcept, powIntersect, func(_ *Parser, left, right Expr, _ Position) Expr {
		return except{all: []Expr{left, right}}
	})

	r.method(opInstanceOf, func(spec *TokenSpec) {
		spec.Label = labelOperator
		spec.Lbp = powCastType
		spec.Led = (*Parser).compileInstanceOf
	})
	r.method(opTreatAs, func(spec *TokenSpec) {
		spec.Label = labelOperator
		spec.Lbp = powCastType
		spec.Led = (*Parser).compileTreatAs
	})
	r.method(opCastAs, func(spec *TokenSpec) {
		spec.Label = labelOperator
		spec.Lbp = powCastType
		spec.Led = (*Parser).compileCastAs
	})
	r.method(opCastableAs, func(spec *TokenSpec) {
		spec.Label = labelOperator
		spec.Lbp = powCastType
		spec.Led = (*Parser).compileCastableAs
	})

	r.nullary(opFor, labelOperator, (*Parser).compileFor)
	r.nullary(opLet, labelOperator, (*Parser).compileLet)
	r.nullary(opSome, labelOperator, (*Parser).compileSome)
	r.nullary(opEvery, labelOperator, (*Parser).compileEvery)
	r.nullary(opIf, labelOperator, (*Parser).compileIf)

	r.method(begGrp, func(spec *TokenSpec) {
		spec.Nud = (*Parser).compileSequenceGroup
	})

	return r
}

// buildSequence flattens nested comma expressions into one sequence.
func buildSequence(_ *Parser, left, right Expr, _ Position) Expr {
	seq, ok := left.(sequence)
	if !ok {
		seq = sequence{all: []Expr{left}}
	}
	if other, ok := right.(sequence); ok {
		seq.all = append(seq.all, other.all...)
	} else {
		seq.all = append(seq.all, right)
	}
	return seq
}

func buildValueCmp(op rune) func(*Parser, Expr, Expr, Position) Expr {
	return func(_ *Parser, left, right Expr, pos Position) Expr {
		return valueCmp{
			left:  left,
			right: right,
			op:    op,
			pos:   pos,
		}
	}
}

func buildNodeCmp(op rune) func(*Parser, Expr, Expr, Position) Expr {
	return func(_ *Parser, left, right Expr, pos Position) Expr {
		return nodeCmp{
			left:  left,
			right: right,
			op:    op,
			pos:   pos,
		}
	}
}
