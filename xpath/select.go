package xpath

import (
	"iter"

	"github.com/midbel/angle/environ"
	"github.com/midbel/angle/xml"
)

// Query is a parsed expression bound to the static context of its
// parser. Environ and Builtins can be swapped before evaluation to
// supply variables and extension functions.
type Query struct {
	expr   Expr
	static *StaticContext

	environ.Environ[Expr]
	Builtins environ.Environ[BuiltinFunc]
}

// Build parses a query with the default XPath 2.0 parser.
func Build(query string) (*Query, error) {
	return BuildWith(query)
}

func BuildWith(query string, opts ...Option) (*Query, error) {
	p := NewParser(opts...)
	return p.ParseString(query)
}

// Find evaluates the query with node as context item. The node tree
// is indexed on first use so that document order holds.
func (q *Query) Find(node xml.Node) (Sequence, error) {
	return q.find(q.context(node))
}

func (q *Query) FindWithEnv(node xml.Node, env environ.Environ[Expr]) (Sequence, error) {
	ctx := q.context(node)
	ctx.Environ = environ.Enclosed(env)
	for ident, value := range q.static.Variables {
		ctx.Define(ident, value)
	}
	return q.find(ctx)
}

// Source gives the canonical form of the parsed expression.
func (q *Query) Source() string {
	return Format(q.expr)
}

func (q *Query) Expr() Expr {
	return q.expr
}

func (q *Query) context(node xml.Node) Context {
	ensureTree(node)
	ctx := DefaultContext(node)
	if q.Environ != nil {
		ctx.Environ = environ.Enclosed(q.Environ)
	}
	if q.Builtins != nil {
		ctx.Builtins = q.Builtins
	}
	for ident, value := range q.static.Variables {
		ctx.Define(ident, value)
	}
	return ctx
}

func (q *Query) find(ctx Context) (Sequence, error) {
	if q.expr == nil {
		return nil, ErrEmpty
	}
	return q.expr.find(ctx)
}

func ensureTree(node xml.Node) {
	if node == nil || xml.Indexed(node) {
		return
	}
	switch root := xml.Root(node).(type) {
	case *xml.Document:
		xml.BuildTree(root)
	case *xml.Element:
		xml.BuildElementTree(root)
	}
}

// Find parses and evaluates a query in one shot.
func Find(node xml.Node, query string) (Sequence, error) {
	return Select(node, query)
}

func Select(node xml.Node, query string, opts ...Option) (Sequence, error) {
	q, err := BuildWith(query, opts...)
	if err != nil {
		return nil, err
	}
	return q.Find(node)
}

// Iter streams the items of a result sequence.
func Iter(node xml.Node, query string, opts ...Option) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		seq, err := Select(node, query, opts...)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, item := range seq {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Selector is a reusable pre-parsed query. A selector is safe for
// concurrent use as long as the trees it runs against are not mutated
// underneath.
type Selector struct {
	query *Query
}

func Compile(query string, opts ...Option) (*Selector, error) {
	q, err := BuildWith(query, opts...)
	if err != nil {
		return nil, err
	}
	s := Selector{
		query: q,
	}
	return &s, nil
}

func (s *Selector) Select(node xml.Node) (Sequence, error) {
	return s.query.Find(node)
}

func (s *Selector) First(node xml.Node) (Item, error) {
	seq, err := s.Select(node)
	if err != nil {
		return nil, err
	}
	return seq.First(), nil
}

func (s *Selector) Iter(node xml.Node) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		seq, err := s.Select(node)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, item := range seq {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (s *Selector) Source() string {
	return s.query.Source()
}
