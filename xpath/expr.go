package xpath

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/midbel/angle/xml"
)

// Expr is a compiled expression. Both parsing and evaluation share
// this tree: the token registry builds it, find walks it against a
// dynamic context.
type Expr interface {
	find(Context) (Sequence, error)
}

// Eval runs a compiled expression against a ready made context.
func Eval(expr Expr, ctx Context) (Sequence, error) {
	if ctx.Builtins == nil {
		ctx.Builtins = DefaultBuiltin()
	}
	return expr.find(ctx)
}

type root struct{}

func (_ root) find(ctx Context) (Sequence, error) {
	node, err := ctx.Root()
	if err != nil {
		return nil, err
	}
	return Singleton(node), nil
}

type current struct{}

func (_ current) find(ctx Context) (Sequence, error) {
	if ctx.Item() == nil {
		return nil, missingContext()
	}
	return Singleton(ctx.Item()), nil
}

type step struct {
	curr Expr
	next Expr
	pos  Position
}

func (s step) find(ctx Context) (Sequence, error) {
	is, err := s.curr.find(ctx)
	if err != nil {
		return nil, err
	}
	var list Sequence
	for i, n := range is {
		if n.Atomic() {
			return nil, errorAt(typeError("path step applied to an atomic value"), s.pos)
		}
		others, err := s.next.find(ctx.Sub(n, i+1, is.Len()))
		if err != nil {
			return nil, err
		}
		list.Concat(others)
	}
	return list.Sorted(), nil
}

type axis struct {
	kind string
	next Expr
}

func (a axis) principal() xml.NodeType {
	switch a.kind {
	case attrAxis:
		return xml.TypeAttribute
	case spaceAxis:
		return xml.TypeNamespace
	default:
		return xml.TypeElement
	}
}

func (a axis) find(ctx Context) (Sequence, error) {
	node := ctx.Node()
	if node == nil {
		return nil, missingContext()
	}
	nodes, err := axisNodes(a.kind, node)
	if err != nil {
		return nil, err
	}
	var list Sequence
	for i, n := range nodes {
		sub := ctx.SubNode(n, i+1, len(nodes))
		sub.Principal = a.principal()
		others, err := a.next.find(sub)
		if err != nil {
			return nil, err
		}
		list.Concat(others)
	}
	return list, nil
}

type name struct {
	xml.QName
}

func (n name) find(ctx Context) (Sequence, error) {
	node := ctx.Node()
	if node == nil {
		return nil, missingContext()
	}
	principal := ctx.Principal
	if principal == 0 {
		principal = xml.TypeElement
	}
	if node.Type() != principal {
		return nil, nil
	}
	if n.Name != "*" && n.Name != node.LocalName() {
		return nil, nil
	}
	if n.Name == "*" && n.Space == "" {
		return Singleton(node), nil
	}
	switch {
	case n.Space == "*":
	case principal == xml.TypeNamespace:
	case n.Space != "" && n.Uri == "":
		if n.Space != nodeSpace(node) {
			return nil, nil
		}
	default:
		if n.Uri != nodeUri(node) {
			return nil, nil
		}
	}
	return Singleton(node), nil
}

func nodeSpace(node xml.Node) string {
	switch n := node.(type) {
	case *xml.Element:
		return n.Space
	case *xml.Attribute:
		return n.Space
	default:
		return ""
	}
}

func nodeUri(node xml.Node) string {
	switch n := node.(type) {
	case *xml.Element:
		if n.Uri != "" {
			return n.Uri
		}
		return lookupUri(n, n.Space)
	case *xml.Attribute:
		if n.Uri != "" {
			return n.Uri
		}
		if n.Space == "" {
			return ""
		}
		if p, ok := n.Parent().(*xml.Element); ok {
			return lookupUri(p, n.Space)
		}
	}
	return ""
}

func lookupUri(el *xml.Element, prefix string) string {
	for curr := xml.Node(el); curr != nil; curr = curr.Parent() {
		e, ok := curr.(*xml.Element)
		if !ok {
			continue
		}
		if ns := e.GetNamespace(prefix); ns != nil {
			return ns.Uri
		}
	}
	if prefix == "xml" {
		return xml.XmlNS
	}
	return ""
}

type kind struct {
	kind   xml.NodeType
	target string
}

func (k kind) find(ctx Context) (Sequence, error) {
	node := ctx.Node()
	if node == nil {
		return nil, missingContext()
	}
	if node.Type()&k.kind == 0 {
		return nil, nil
	}
	if k.target != "" && k.target != "*" && node.LocalName() != k.target {
		return nil, nil
	}
	return Singleton(node), nil
}

type literal struct {
	expr string
}

func (i literal) find(_ Context) (Sequence, error) {
	return Singleton(i.expr), nil
}

type number struct {
	expr float64
}

func (n number) find(_ Context) (Sequence, error) {
	return Singleton(n.expr), nil
}

type sequence struct {
	all []Expr
}

func (s sequence) find(ctx Context) (Sequence, error) {
	var list Sequence
	for i := range s.all {
		is, err := s.all[i].find(ctx)
		if err != nil {
			return nil, err
		}
		list.Concat(is)
	}
	return list, nil
}

type rng struct {
	left  Expr
	right Expr
	pos   Position
}

func (r rng) find(ctx Context) (Sequence, error) {
	beg, empty, err := evalSingleton(r.left, ctx, r.pos)
	if err != nil || empty {
		return nil, err
	}
	end, empty, err := evalSingleton(r.right, ctx, r.pos)
	if err != nil || empty {
		return nil, err
	}
	x, err := toInt(beg.Value())
	if err != nil {
		return nil, errorAt(err, r.pos)
	}
	y, err := toInt(end.Value())
	if err != nil {
		return nil, errorAt(err, r.pos)
	}
	var list Sequence
	for i := x; i <= y; i++ {
		list.Append(createLiteral(i))
	}
	return list, nil
}

type binary struct {
	left  Expr
	right Expr
	op    rune
	pos   Position
}

func (b binary) find(ctx Context) (Sequence, error) {
	left, empty, err := evalSingleton(b.left, ctx, b.pos)
	if err != nil || empty {
		return nil, err
	}
	right, empty, err := evalSingleton(b.right, ctx, b.pos)
	if err != nil || empty {
		return nil, err
	}
	x, err := toNumber(left)
	if err != nil {
		return nil, errorAt(err, b.pos)
	}
	y, err := toNumber(right)
	if err != nil {
		return nil, errorAt(err, b.pos)
	}
	var res any
	switch b.op {
	case opAdd:
		res = x + y
	case opSub:
		res = x - y
	case opMul:
		res = x * y
	case opDiv:
		if y == 0 {
			return nil, errorAt(arithmeticError("division by zero"), b.pos)
		}
		res = x / y
	case opIntDiv:
		if y == 0 {
			return nil, errorAt(arithmeticError("division by zero"), b.pos)
		}
		res = int64(x / y)
	case opMod:
		if y == 0 {
			return nil, errorAt(arithmeticError("division by zero"), b.pos)
		}
		res = math.Mod(x, y)
	default:
		return nil, ErrImplemented
	}
	return Singleton(res), nil
}

// toNumber accepts numeric and untyped operands; a typed string in an
// arithmetic expression is a type error, not a value to coerce.
func toNumber(item Item) (float64, error) {
	switch v := item.Value().(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		if isUntyped(item) {
			return toFloat(v)
		}
		return 0, typeError("operand is not a number")
	default:
		return 0, typeError("operand is not a number")
	}
}

func evalSingleton(expr Expr, ctx Context, pos Position) (Item, bool, error) {
	is, err := expr.find(ctx)
	if err != nil {
		return nil, false, err
	}
	is = is.Atomize()
	if is.Empty() {
		return nil, true, nil
	}
	if !is.Singleton() {
		return nil, false, errorAt(typeError("sequence of more than one item"), pos)
	}
	return is[0], false, nil
}

type logical struct {
	left  Expr
	right Expr
	and   bool
}

func (l logical) find(ctx Context) (Sequence, error) {
	left, err := l.left.find(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := EffectiveBooleanValue(left)
	if err != nil {
		return nil, err
	}
	if l.and && !ok {
		return Singleton(false), nil
	}
	if !l.and && ok {
		return Singleton(true), nil
	}
	right, err := l.right.find(ctx)
	if err != nil {
		return nil, err
	}
	ok, err = EffectiveBooleanValue(right)
	if err != nil {
		return nil, err
	}
	return Singleton(ok), nil
}

type generalCmp struct {
	left   Expr
	right  Expr
	op     rune
	compat bool
	pos    Position
}

func (g generalCmp) find(ctx Context) (Sequence, error) {
	left, err := g.left.find(ctx)
	if err != nil {
		return nil, err
	}
	right, err := g.right.find(ctx)
	if err != nil {
		return nil, err
	}
	left, right = left.Atomize(), right.Atomize()
	for i := range left {
		for j := range right {
			ok, err := compareItems(left[i], right[j], g.op, g.compat)
			if err != nil {
				return nil, errorAt(err, g.pos)
			}
			if ok {
				return Singleton(true), nil
			}
		}
	}
	return Singleton(false), nil
}

type valueCmp struct {
	left  Expr
	right Expr
	op    rune
	pos   Position
}

func (v valueCmp) find(ctx Context) (Sequence, error) {
	left, empty, err := evalSingleton(v.left, ctx, v.pos)
	if err != nil || empty {
		return nil, err
	}
	right, empty, err := evalSingleton(v.right, ctx, v.pos)
	if err != nil || empty {
		return nil, err
	}
	op := valueOp(v.op)
	if !comparableItems(left, right) {
		return nil, errorAt(typeError("operands can not be compared"), v.pos)
	}
	ok, err := compareItems(left, right, op, false)
	if err != nil {
		return nil, errorAt(err, v.pos)
	}
	return Singleton(ok), nil
}

func valueOp(op rune) rune {
	switch op {
	case opValEq:
		return opEq
	case opValNe:
		return opNe
	case opValLt:
		return opLt
	case opValLe:
		return opLe
	case opValGt:
		return opGt
	case opValGe:
		return opGe
	default:
		return op
	}
}

func comparableItems(left, right Item) bool {
	if isUntyped(left) || isUntyped(right) {
		return true
	}
	switch left.Value().(type) {
	case float64, int64:
		return isNumeric(right)
	case string:
		_, ok := right.Value().(string)
		return ok
	case bool:
		_, ok := right.Value().(bool)
		return ok
	case time.Time:
		_, ok := right.Value().(time.Time)
		return ok
	default:
		return false
	}
}

func compareItems(left, right Item, op rune, compat bool) (bool, error) {
	cmp, err := compareValues(left, right, compat)
	if err != nil {
		return false, err
	}
	switch op {
	case opEq:
		return cmp == 0, nil
	case opNe:
		return cmp != 0, nil
	case opLt:
		return cmp < 0, nil
	case opLe:
		return cmp <= 0, nil
	case opGt:
		return cmp > 0, nil
	case opGe:
		return cmp >= 0, nil
	default:
		return false, ErrImplemented
	}
}

// compareValues orders two atomics per the general comparison rules:
// untyped values take the type of the other operand; in compatibility
// mode everything numeric wins.
func compareValues(left, right Item, compat bool) (int, error) {
	if compat && (isNumeric(left) || isNumeric(right)) {
		return compareFloat(left, right)
	}
	switch x := left.Value().(type) {
	case float64, int64:
		if !isNumeric(right) && !isUntyped(right) {
			return 0, typeError("operands can not be compared")
		}
		return compareFloat(left, right)
	case string:
		if isNumeric(right) {
			if !isUntyped(left) {
				return 0, typeError("operands can not be compared")
			}
			return compareFloat(left, right)
		}
		y, err := toString(right.Value())
		if err != nil {
			return 0, err
		}
		return strings.Compare(x, y), nil
	case bool:
		y, err := toBool(right.Value())
		if err != nil {
			return 0, err
		}
		return compareBool(x, y), nil
	case time.Time:
		y, err := toTime(right.Value())
		if err != nil {
			return 0, err
		}
		return x.Compare(y), nil
	default:
		return 0, typeError("operands can not be compared")
	}
}

func compareFloat(left, right Item) (int, error) {
	x, err := toFloat(left.Value())
	if err != nil {
		return 0, err
	}
	y, err := toFloat(right.Value())
	if err != nil {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

func compareBool(x, y bool) int {
	switch {
	case x == y:
		return 0
	case y:
		return -1
	default:
		return 1
	}
}

type nodeCmp struct {
	left  Expr
	right Expr
	op    rune
	pos   Position
}

func (n nodeCmp) find(ctx Context) (Sequence, error) {
	left, err := n.left.find(ctx)
	if err != nil {
		return nil, err
	}
	right, err := n.right.find(ctx)
	if err != nil {
		return nil, err
	}
	if left.Empty() || right.Empty() {
		return nil, nil
	}
	if !left.Singleton() || !right.Singleton() || !left.Nodes() || !right.Nodes() {
		return nil, errorAt(typeError("operands must be single nodes"), n.pos)
	}
	var (
		n1 = left[0].Node()
		n2 = right[0].Node()
	)
	switch n.op {
	case opIs:
		return Singleton(n1.Identity() == n2.Identity()), nil
	case opBefore:
		return Singleton(xml.Before(n1, n2)), nil
	case opAfter:
		return Singleton(xml.After(n1, n2)), nil
	default:
		return nil, ErrImplemented
	}
}

type union struct {
	all []Expr
}

func (u union) find(ctx Context) (Sequence, error) {
	var list Sequence
	for i := range u.all {
		is, err := u.all[i].find(ctx)
		if err != nil {
			return nil, err
		}
		if !is.Nodes() {
			return nil, typeError("union operand is not a node sequence")
		}
		list.Concat(is)
	}
	return list.Sorted(), nil
}

type intersect struct {
	all []Expr
}

func (e intersect) find(ctx Context) (Sequence, error) {
	left, right, err := evalNodePair(e.all, ctx)
	if err != nil {
		return nil, err
	}
	var res Sequence
	for i := range left {
		ok := slices.ContainsFunc(right, func(item Item) bool {
			return item.Node().Identity() == left[i].Node().Identity()
		})
		if ok {
			res.Append(left[i])
		}
	}
	return res.Sorted(), nil
}

type except struct {
	all []Expr
}

func (e except) find(ctx Context) (Sequence, error) {
	left, right, err := evalNodePair(e.all, ctx)
	if err != nil {
		return nil, err
	}
	var res Sequence
	for i := range left {
		ok := slices.ContainsFunc(right, func(item Item) bool {
			return item.Node().Identity() == left[i].Node().Identity()
		})
		if !ok {
			res.Append(left[i])
		}
	}
	return res.Sorted(), nil
}

func evalNodePair(all []Expr, ctx Context) (Sequence, Sequence, error) {
	left, err := all[0].find(ctx)
	if err != nil {
		return nil, nil, err
	}
	right, err := all[1].find(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !left.Nodes() || !right.Nodes() {
		return nil, nil, typeError("operand is not a node sequence")
	}
	return left, right, nil
}

type filter struct {
	expr  Expr
	check Expr
}

func (f filter) find(ctx Context) (Sequence, error) {
	list, err := f.expr.find(ctx)
	if err != nil {
		return nil, err
	}
	var ret Sequence
	for j, n := range list {
		res, err := f.check.find(ctx.Sub(n, j+1, list.Len()))
		if err != nil {
			return nil, err
		}
		keep, err := keepItem(res, j+1)
		if err != nil {
			return nil, err
		}
		if keep {
			ret.Append(n)
		}
	}
	return ret, nil
}

// keepItem applies the predicate rule: a numeric predicate keeps the
// item at exactly that position, anything else goes through the
// effective boolean value.
func keepItem(res Sequence, pos int) (bool, error) {
	if res.Singleton() && res[0].Atomic() {
		switch x := res[0].Value().(type) {
		case float64:
			return x == float64(pos), nil
		case int64:
			return x == int64(pos), nil
		}
	}
	return EffectiveBooleanValue(res)
}

type call struct {
	xml.QName
	args []Expr
	pos  Position
}

func (c call) find(ctx Context) (Sequence, error) {
	if ctx.Builtins == nil {
		ctx.Builtins = DefaultBuiltin()
	}
	key := c.Name
	if c.Space != "" {
		key = c.QualifiedName()
	}
	fn, err := ctx.Builtins.Resolve(key)
	if err != nil {
		return nil, errorAt(unknownFunc(c.QualifiedName()), c.pos)
	}
	if fn == nil {
		return nil, errorAt(fmt.Errorf("%s: %w", c.QualifiedName(), ErrImplemented), c.pos)
	}
	items, err := fn(ctx, c.args)
	if err != nil {
		return nil, errorAt(err, c.pos)
	}
	return items, nil
}

type identifier struct {
	ident string
	pos   Position
}

func (i identifier) find(ctx Context) (Sequence, error) {
	expr, err := ctx.Resolve(i.ident)
	if err != nil {
		return nil, errorAt(undefinedVar(i.ident), i.pos)
	}
	if expr == nil {
		return nil, nil
	}
	return expr.find(ctx)
}

type binding struct {
	ident string
	expr  Expr
}

type loop struct {
	binds []binding
	body  Expr
}

func (o loop) find(ctx Context) (Sequence, error) {
	var res Sequence
	if err := o.eval(ctx, 0, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (o loop) eval(ctx Context, depth int, res *Sequence) error {
	if depth >= len(o.binds) {
		is, err := o.body.find(ctx)
		if err != nil {
			return err
		}
		res.Concat(is)
		return nil
	}
	items, err := o.binds[depth].expr.find(ctx)
	if err != nil {
		return probeBody(o.body, o.binds, ctx, err)
	}
	for i := range items {
		nest := ctx.Nest()
		nest.Define(o.binds[depth].ident, NewValue(items[i]))
		if err := o.eval(nest, depth+1, res); err != nil {
			return err
		}
	}
	return nil
}

// probeBody keeps static analysis honest: when a binding sequence
// cannot be produced without data, the body is still checked once
// with empty bindings so its own static errors surface.
func probeBody(body Expr, binds []binding, ctx Context, cause error) error {
	if !errors.Is(cause, ErrMissingContext) {
		return cause
	}
	nest := ctx.Nest()
	for i := range binds {
		nest.Define(binds[i].ident, value{})
	}
	_, err := body.find(nest)
	if err != nil && !errors.Is(err, ErrMissingContext) {
		return err
	}
	return cause
}

type quantified struct {
	binds []binding
	test  Expr
	every bool
}

func (q quantified) find(ctx Context) (Sequence, error) {
	ok, err := q.eval(ctx, 0)
	if err != nil {
		return nil, err
	}
	return Singleton(ok), nil
}

func (q quantified) eval(ctx Context, depth int) (bool, error) {
	if depth >= len(q.binds) {
		res, err := q.test.find(ctx)
		if err != nil {
			return false, err
		}
		return EffectiveBooleanValue(res)
	}
	items, err := q.binds[depth].expr.find(ctx)
	if err != nil {
		return false, probeBody(q.test, q.binds, ctx, err)
	}
	for i := range items {
		nest := ctx.Nest()
		nest.Define(q.binds[depth].ident, NewValue(items[i]))
		ok, err := q.eval(nest, depth+1)
		if err != nil {
			return false, err
		}
		if ok && !q.every {
			return true, nil
		}
		if !ok && q.every {
			return false, nil
		}
	}
	return q.every, nil
}

type let struct {
	binds []binding
	expr  Expr
}

func (e let) find(ctx Context) (Sequence, error) {
	nest := ctx.Nest()
	for _, b := range e.binds {
		is, err := b.expr.find(nest)
		if err != nil {
			return nil, probeBody(e.expr, e.binds, ctx, err)
		}
		nest.Define(b.ident, NewValueFromSequence(is))
	}
	return e.expr.find(nest)
}

type conditional struct {
	test Expr
	csq  Expr
	alt  Expr
}

func (c conditional) find(ctx Context) (Sequence, error) {
	res, err := c.test.find(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := EffectiveBooleanValue(res)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.csq.find(ctx)
	}
	return c.alt.find(ctx)
}

type reverse struct {
	expr Expr
	plus bool
	pos  Position
}

func (r reverse) find(ctx Context) (Sequence, error) {
	item, empty, err := evalSingleton(r.expr, ctx, r.pos)
	if err != nil || empty {
		return nil, err
	}
	x, err := toNumber(item)
	if err != nil {
		return nil, errorAt(err, r.pos)
	}
	if r.plus {
		return Singleton(x), nil
	}
	return Singleton(-x), nil
}

type stringConcat struct {
	left  Expr
	right Expr
	pos   Position
}

func (s stringConcat) find(ctx Context) (Sequence, error) {
	var str strings.Builder
	for _, e := range []Expr{s.left, s.right} {
		item, empty, err := evalSingleton(e, ctx, s.pos)
		if err != nil {
			return nil, err
		}
		if empty {
			continue
		}
		x, err := toString(item.Value())
		if err != nil {
			return nil, errorAt(err, s.pos)
		}
		str.WriteString(x)
	}
	return Singleton(str.String()), nil
}

type instanceof struct {
	expr Expr
	kind SequenceType
}

func (i instanceof) find(ctx Context) (Sequence, error) {
	is, err := i.expr.find(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(i.kind.Matches(is)), nil
}

type treat struct {
	expr Expr
	kind SequenceType
	pos  Position
}

func (t treat) find(ctx Context) (Sequence, error) {
	is, err := t.expr.find(ctx)
	if err != nil {
		return nil, err
	}
	if !t.kind.Matches(is) {
		return nil, errorAt(treatError(fmt.Sprintf("sequence can not be treated as %s", t.kind)), t.pos)
	}
	return is, nil
}

type cast struct {
	expr Expr
	kind XdmType
	some bool
	pos  Position
}

func (c cast) find(ctx Context) (Sequence, error) {
	item, empty, err := evalSingleton(c.expr, ctx, c.pos)
	if err != nil {
		return nil, err
	}
	if empty {
		if c.some {
			return nil, nil
		}
		return nil, errorAt(typeError("empty sequence can not be cast"), c.pos)
	}
	res, err := c.kind.Cast(item.Value())
	if err != nil {
		return nil, errorAt(err, c.pos)
	}
	return Singleton(res), nil
}

type castable struct {
	expr Expr
	kind XdmType
	some bool
	pos  Position
}

func (c castable) find(ctx Context) (Sequence, error) {
	item, empty, err := evalSingleton(c.expr, ctx, c.pos)
	if err != nil {
		if errors.Is(err, ErrMissingContext) {
			return nil, err
		}
		return Singleton(false), nil
	}
	if empty {
		return Singleton(c.some), nil
	}
	return Singleton(c.kind.Castable(item.Value())), nil
}

type value struct {
	seq Sequence
}

func NewValue(item Item) Expr {
	return value{
		seq: Singleton(item),
	}
}

func NewValueFromSequence(seq Sequence) Expr {
	return value{
		seq: slices.Clone(seq),
	}
}

func NewValueFromLiteral(v any) Expr {
	return NewValue(createLiteral(v))
}

func NewValueFromNode(node xml.Node) Expr {
	return NewValue(createNode(node))
}

func (v value) find(_ Context) (Sequence, error) {
	return slices.Clone(v.seq), nil
}

func errorAt(err error, pos Position) error {
	var e *Error
	if errors.As(err, &e) && e.Line == 0 {
		e.Position = pos
	}
	return err
}
