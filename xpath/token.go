package xpath

import (
	"maps"
)

// Binding powers, ascending. A token binds its left operand when its
// Lbp exceeds the right binding power of the expression being parsed.
const (
	powLowest    = 0
	powSeq       = 5
	powBind      = 20
	powOr        = 25
	powAnd       = 30
	powCmp       = 40
	powConcat    = 42
	powRange     = 45
	powAdd       = 50
	powMul       = 55
	powUnion     = 60
	powIntersect = 65
	powCastType  = 70
	powPrefix    = 75
	powStep      = 90
	powPred      = 100
	powCall      = 105
)

const (
	labelOperator = "operator"
	labelAxis     = "axis"
	labelFunction = "function"
	labelKindTest = "kind test"
	labelLiteral  = "literal"
	labelSymbol   = "symbol"
)

// TokenSpec ties a token to its grammar behavior: how it starts an
// expression (Nud) and how it binds a left operand (Led). The entries
// of a registry define the language a parser accepts.
type TokenSpec struct {
	Type  rune
	Label string
	Lbp   int
	Rbp   int

	Nud func(*Parser) (Expr, error)
	Led func(*Parser, Expr) (Expr, error)
}

type registry struct {
	specs    map[rune]*TokenSpec
	keywords map[string]keyword
}

func newRegistry() *registry {
	return &registry{
		specs:    make(map[rune]*TokenSpec),
		keywords: make(map[string]keyword),
	}
}

func (r *registry) clone() *registry {
	c := newRegistry()
	for k, spec := range r.specs {
		tmp := *spec
		c.specs[k] = &tmp
	}
	maps.Copy(c.keywords, r.keywords)
	return c
}

func (r *registry) get(tok rune) *TokenSpec {
	return r.specs[tok]
}

func (r *registry) power(tok rune) int {
	spec, ok := r.specs[tok]
	if !ok {
		return powLowest
	}
	return spec.Lbp
}

func (r *registry) spec(tok rune) *TokenSpec {
	spec, ok := r.specs[tok]
	if !ok {
		spec = &TokenSpec{
			Type: tok,
		}
		r.specs[tok] = spec
	}
	return spec
}

// keyword reserves a named symbol; follow makes it the first word of
// a two-word operator.
func (r *registry) keyword(name string, tok rune, follow string) {
	r.keywords[name] = keyword{
		Type:   tok,
		Follow: follow,
	}
}

func (r *registry) literal(tok rune, nud func(*Parser) (Expr, error)) {
	spec := r.spec(tok)
	spec.Label = labelLiteral
	spec.Nud = nud
}

func (r *registry) nullary(tok rune, label string, nud func(*Parser) (Expr, error)) {
	spec := r.spec(tok)
	spec.Label = label
	spec.Nud = nud
}

func (r *registry) prefix(tok rune, build func(*Parser, Expr, Position) Expr) {
	spec := r.spec(tok)
	if spec.Label == "" {
		spec.Label = labelOperator
	}
	spec.Nud = func(p *Parser) (Expr, error) {
		pos := p.curr.Position
		p.next()
		expr, err := p.expression(powPrefix)
		if err != nil {
			return nil, err
		}
		return build(p, expr, pos), nil
	}
}

func (r *registry) postfix(tok rune, bp int, build func(*Parser, Expr, Position) Expr) {
	spec := r.spec(tok)
	if spec.Label == "" {
		spec.Label = labelOperator
	}
	spec.Lbp = bp
	spec.Led = func(p *Parser, left Expr) (Expr, error) {
		pos := p.curr.Position
		p.next()
		return build(p, left, pos), nil
	}
}

func (r *registry) infix(tok rune, bp int, build func(*Parser, Expr, Expr, Position) Expr) {
	r.infixAt(tok, bp, bp, build)
}

// infixr registers a right associative operator: the right operand is
// parsed with a binding power one below the operator's own.
func (r *registry) infixr(tok rune, bp int, build func(*Parser, Expr, Expr, Position) Expr) {
	r.infixAt(tok, bp, bp-1, build)
}

func (r *registry) infixAt(tok rune, lbp, rbp int, build func(*Parser, Expr, Expr, Position) Expr) {
	spec := r.spec(tok)
	if spec.Label == "" {
		spec.Label = labelOperator
	}
	spec.Lbp = lbp
	spec.Rbp = rbp
	spec.Led = func(p *Parser, left Expr) (Expr, error) {
		pos := p.curr.Position
		p.next()
		right, err := p.expression(rbp)
		if err != nil {
			return nil, err
		}
		return build(p, left, right, pos), nil
	}
}

// method overrides the hooks of an already registered spec, the way a
// dialect extends its base grammar.
func (r *registry) method(tok rune, update func(*TokenSpec)) {
	update(r.spec(tok))
}
