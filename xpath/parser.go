package xpath

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/midbel/angle/environ"
	"github.com/midbel/angle/xml"
)

type Version int8

const (
	Xpath1 Version = 1
	Xpath2 Version = 2
)

// StaticContext is the compile time configuration of a parser: the
// in-scope namespaces and variables, the default namespaces and the
// optional schema view.
type StaticContext struct {
	Namespaces map[string]string
	DefaultNS  string
	FuncNS     string
	Variables  map[string]Expr
	Schema     SchemaProxy
	Compat     bool
	Strict     bool
}

func defaultStatic() *StaticContext {
	return &StaticContext{
		Namespaces: map[string]string{
			"xml": xml.XmlNS,
			"xs":  schemaNS,
			"fn":  fnNS,
		},
		FuncNS:    fnNS,
		Variables: make(map[string]Expr),
		Strict:    true,
	}
}

type Option func(*Parser)

func WithVersion(v Version) Option {
	return func(p *Parser) {
		p.version = v
	}
}

func WithNamespace(prefix, uri string) Option {
	return func(p *Parser) {
		p.static.Namespaces[prefix] = uri
	}
}

func WithVariable(ident string, value any) Option {
	return func(p *Parser) {
		p.static.Variables[ident] = NewValueFromLiteral(value)
	}
}

func WithDefaultNamespace(uri string) Option {
	return func(p *Parser) {
		p.static.DefaultNS = uri
	}
}

func WithFunctionNamespace(uri string) Option {
	return func(p *Parser) {
		p.static.FuncNS = uri
	}
}

func WithCompatibilityMode() Option {
	return func(p *Parser) {
		p.static.Compat = true
	}
}

func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.static.Strict = strict
	}
}

func WithSchema(proxy SchemaProxy) Option {
	return func(p *Parser) {
		p.static.Schema = proxy
	}
}

// WithConstructors registers a constructor function for each atomic
// type known to the schema proxy.
func WithConstructors() Option {
	return func(p *Parser) {
		p.constructors = true
	}
}

func WithTracer(t Tracer) Option {
	return func(p *Parser) {
		p.Tracer = t
	}
}

// Parser drives the token registry of its version over a scanned
// expression. A parser is reusable but single-owner during Parse.
type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	registry *registry
	static   *StaticContext
	builtins environ.Environ[BuiltinFunc]
	scopes   []map[string]struct{}

	version      Version
	constructors bool

	Tracer
}

// NewParser builds an XPath 2.0 parser unless WithVersion says
// otherwise.
func NewParser(opts ...Option) *Parser {
	p := Parser{
		static:  defaultStatic(),
		version: Xpath2,
		Tracer:  discardTracer{},
	}
	for _, o := range opts {
		o(&p)
	}
	switch p.version {
	case Xpath1:
		p.registry = xpath1Registry()
	default:
		p.registry = xpath2Registry()
	}
	p.builtins = DefaultBuiltin()
	if p.static.Schema != nil {
		p.bindSchema()
	}
	return &p
}

func (p *Parser) bindSchema() {
	p.static.Schema.Bind(p)
	if !p.constructors {
		return
	}
	for qn := range p.static.Schema.AtomicTypes() {
		t, ok := p.static.Schema.GetType(qn)
		if !ok {
			continue
		}
		p.builtins.Define(t.Name().QualifiedName(), constructorFunc(t))
	}
}

func (p *Parser) Parse(r io.Reader) (*Query, error) {
	p.scan = ScanWith(r, p.registry.keywords)
	p.scopes = nil
	p.next()
	p.next()

	expr, err := p.expression(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.unexpected()
	}
	if err := p.staticCheck(expr); err != nil {
		return nil, err
	}
	q := Query{
		expr:     expr,
		static:   p.static,
		Builtins: p.builtins,
	}
	return &q, nil
}

func (p *Parser) ParseString(query string) (*Query, error) {
	return p.Parse(strings.NewReader(query))
}

// NewScanner gives the tokenizer of a parser version, keyword table
// included.
func NewScanner(r io.Reader, v Version) *Scanner {
	switch v {
	case Xpath1:
		return ScanWith(r, xpath1Registry().keywords)
	default:
		return ScanWith(r, xpath2Registry().keywords)
	}
}

// staticCheck evaluates the fresh tree without a context item so that
// type and arity errors surface at parse time. Needing data, calling a
// declared but unimplemented function, or (without strict resolution)
// calling an unknown function is not an error at this point.
func (p *Parser) staticCheck(expr Expr) error {
	ctx := createContext(nil, 1, 1)
	ctx.Environ = environ.Empty[Expr]()
	ctx.Builtins = p.builtins
	for ident, value := range p.static.Variables {
		ctx.Define(ident, value)
	}
	_, err := expr.find(ctx)
	if err == nil || errors.Is(err, ErrMissingContext) || errors.Is(err, ErrImplemented) {
		return nil
	}
	if !p.static.Strict && errors.Is(err, ErrUndefined) && ErrorCode(err) == CodeUnknownFunc {
		return nil
	}
	return err
}

// expression is the standard pratt loop: null denotation of the
// current token, then left denotations while the incoming token binds
// tighter than rbp.
func (p *Parser) expression(rbp int) (Expr, error) {
	spec := p.registry.get(p.curr.Type)
	if spec == nil || spec.Nud == nil {
		return nil, p.unexpected()
	}
	left, err := spec.Nud(p)
	if err != nil {
		return nil, err
	}
	for rbp < p.registry.power(p.curr.Type) {
		spec = p.registry.get(p.curr.Type)
		if spec == nil || spec.Led == nil {
			return nil, p.unexpected()
		}
		left, err = spec.Led(p, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) compileLiteral() (Expr, error) {
	defer p.next()
	i := literal{
		expr: p.curr.Literal,
	}
	return i, nil
}

func (p *Parser) compileNumber() (Expr, error) {
	defer p.next()
	f, err := strconv.ParseFloat(p.curr.Literal, 64)
	if err != nil {
		return nil, p.wrongSyntax("malformed number")
	}
	n := number{
		expr: f,
	}
	return n, nil
}

func (p *Parser) compileCurrent() (Expr, error) {
	p.next()
	return current{}, nil
}

func (p *Parser) compileParent() (Expr, error) {
	p.next()
	expr := axis{
		kind: parentAxis,
		next: kind{kind: xml.TypeNode},
	}
	return expr, nil
}

func (p *Parser) compileAttr() (Expr, error) {
	qn := xml.LocalName(p.curr.Literal)
	p.next()
	if p.is(Namespace) {
		p.next()
		qn.Space = qn.Name
		if !p.is(Name) && !p.is(opMul) {
			return nil, p.wrongSyntax("name expected after namespace")
		}
		qn.Name = p.curr.Literal
		p.next()
	}
	qn, err := p.resolveQName(qn, true)
	if err != nil {
		return nil, err
	}
	expr := axis{
		kind: attrAxis,
		next: name{QName: qn},
	}
	return expr, nil
}

func (p *Parser) compileVariable() (Expr, error) {
	pos := p.curr.Position
	ident := p.curr.Literal
	p.next()
	if !p.inScope(ident) {
		return nil, errorAt(undefinedVar(ident), pos)
	}
	v := identifier{
		ident: ident,
		pos:   pos,
	}
	return v, nil
}

func (p *Parser) compileName() (Expr, error) {
	p.Enter("name")
	defer p.Leave("name")

	if p.is(Name) && p.peekIs(opAxis) {
		return p.compileAxis()
	}
	test, err := p.compileNodeTest(false)
	if err != nil {
		return nil, err
	}
	expr := axis{
		kind: childAxis,
		next: test,
	}
	return expr, nil
}

func (p *Parser) compileAxis() (Expr, error) {
	p.Enter("axis")
	defer p.Leave("axis")

	kind := p.curr.Literal
	if !isAxis(kind) {
		return nil, p.wrongSyntax(fmt.Sprintf("%s: unknown axis", kind))
	}
	p.next()
	p.next()
	test, err := p.compileNodeTest(kind == attrAxis)
	if err != nil {
		return nil, err
	}
	expr := axis{
		kind: kind,
		next: test,
	}
	return expr, nil
}

func (p *Parser) compileNodeTest(attr bool) (Expr, error) {
	if p.is(opMul) && !p.peekIs(Namespace) {
		p.next()
		return name{QName: xml.LocalName("*")}, nil
	}
	if p.is(Name) && isKindTest(p.curr.Literal) && p.peekIs(begGrp) {
		return p.compileKindTest()
	}
	qn, err := p.compileQName()
	if err != nil {
		return nil, err
	}
	if qn, err = p.resolveQName(qn, attr); err != nil {
		return nil, err
	}
	return name{QName: qn}, nil
}

func (p *Parser) compileQName() (xml.QName, error) {
	var qn xml.QName
	if !p.is(Name) && !p.is(opMul) {
		return qn, p.wrongSyntax("name expected")
	}
	qn.Name = p.curr.Literal
	if p.is(opMul) {
		qn.Name = "*"
	}
	p.next()
	if p.is(Namespace) {
		p.next()
		qn.Space = qn.Name
		if !p.is(Name) && !p.is(opMul) {
			return qn, p.wrongSyntax("name expected after namespace")
		}
		qn.Name = p.curr.Literal
		if p.is(opMul) {
			qn.Name = "*"
		}
		p.next()
	}
	return qn, nil
}

func (p *Parser) resolveQName(qn xml.QName, attr bool) (xml.QName, error) {
	switch {
	case qn.Space == "*" || qn.Space == "xmlns":
	case qn.Space != "":
		uri, ok := p.static.Namespaces[qn.Space]
		if !ok && p.static.Strict {
			return qn, unknownPrefix(qn.Space)
		}
		qn.Uri = uri
	case !attr && p.version >= Xpath2:
		qn.Uri = p.static.DefaultNS
	}
	return qn, nil
}

func isKindTest(str string) bool {
	switch str {
	case "node", "text", "comment", "processing-instruction":
	case "element", "attribute", "document-node":
	case "schema-element", "schema-attribute":
	default:
		return false
	}
	return true
}

func (p *Parser) compileKindTest() (Expr, error) {
	p.Enter("kind")
	defer p.Leave("kind")

	var (
		expr   kind
		schema bool
		test   = p.curr.Literal
	)
	switch test {
	case "node":
		expr.kind = xml.TypeNode
	case "text":
		expr.kind = xml.TypeText
	case "comment":
		expr.kind = xml.TypeComment
	case "processing-instruction":
		expr.kind = xml.TypeInstruction
	case "document-node":
		expr.kind = xml.TypeDocument
	case "element", "schema-element":
		expr.kind = xml.TypeElement
		schema = test == "schema-element"
	case "attribute", "schema-attribute":
		expr.kind = xml.TypeAttribute
		schema = test == "schema-attribute"
	default:
		return nil, p.wrongSyntax(fmt.Sprintf("%s: kind test not supported", test))
	}
	p.next()
	if err := p.expect(begGrp); err != nil {
		return nil, err
	}
	switch {
	case test == "processing-instruction" && (p.is(Literal) || p.is(Name)):
		expr.target = p.curr.Literal
		p.next()
	case expr.kind == xml.TypeElement || expr.kind == xml.TypeAttribute:
		if p.is(endGrp) && !schema {
			break
		}
		qn, err := p.compileQName()
		if err != nil {
			return nil, err
		}
		if qn, err = p.resolveQName(qn, expr.kind == xml.TypeAttribute); err != nil {
			return nil, err
		}
		expr.target = qn.Name
		if schema {
			if err := p.checkDeclared(qn, expr.kind); err != nil {
				return nil, err
			}
		}
		if p.is(opSeq) {
			p.next()
			if _, err := p.compileQName(); err != nil {
				return nil, p.wrongSyntax("type annotation expected")
			}
			if p.is(opQuestion) {
				p.next()
			}
		}
	}
	if err := p.expect(endGrp); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) checkDeclared(qn xml.QName, kind xml.NodeType) error {
	proxy := p.static.Schema
	if proxy == nil {
		return nil
	}
	var ok bool
	if kind == xml.TypeElement {
		_, ok = proxy.GetElement(qn)
	} else {
		_, ok = proxy.GetAttribute(qn)
	}
	if !ok {
		return errorWithCode(CodeUndefinedVar, ErrUndefined, fmt.Sprintf("%s: not declared in schema", qn.QualifiedName()))
	}
	return nil
}

func (p *Parser) compileRoot() (Expr, error) {
	p.Enter("root")
	defer p.Leave("root")

	pos := p.curr.Position
	p.next()
	if !p.startsExpr() {
		return root{}, nil
	}
	next, err := p.expression(powStep)
	if err != nil {
		return nil, err
	}
	expr := step{
		curr: root{},
		next: next,
		pos:  pos,
	}
	return expr, nil
}

func (p *Parser) compileDescendantRoot() (Expr, error) {
	p.Enter("descendant-root")
	defer p.Leave("descendant-root")

	pos := p.curr.Position
	p.next()
	next, err := p.expression(powStep)
	if err != nil {
		return nil, err
	}
	expr := step{
		curr: descendantStep(root{}, pos),
		next: next,
		pos:  pos,
	}
	return expr, nil
}

func (p *Parser) compileStep(left Expr) (Expr, error) {
	p.Enter("step")
	defer p.Leave("step")

	pos := p.curr.Position
	p.next()
	next, err := p.expression(powStep)
	if err != nil {
		return nil, err
	}
	expr := step{
		curr: left,
		next: next,
		pos:  pos,
	}
	return expr, nil
}

func (p *Parser) compileDescendantStep(left Expr) (Expr, error) {
	p.Enter("descendant-step")
	defer p.Leave("descendant-step")

	pos := p.curr.Position
	p.next()
	next, err := p.expression(powStep)
	if err != nil {
		return nil, err
	}
	expr := step{
		curr: descendantStep(left, pos),
		next: next,
		pos:  pos,
	}
	return expr, nil
}

// descendantStep rewrites // into /descendant-or-self::node()/,
// keeping the left nested shape the canonical form reparses to.
func descendantStep(left Expr, pos Position) Expr {
	return step{
		curr: left,
		next: axis{
			kind: descendantSelfAxis,
			next: kind{kind: xml.TypeNode},
		},
		pos: pos,
	}
}

func (p *Parser) compileFilter(left Expr) (Expr, error) {
	p.Enter("filter")
	defer p.Leave("filter")

	p.next()
	check, err := p.expression(powLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(endPred); err != nil {
		return nil, err
	}
	f := filter{
		expr:  left,
		check: check,
	}
	return f, nil
}

func (p *Parser) compileCall(left Expr) (Expr, error) {
	p.Enter("call")
	defer p.Leave("call")

	var qn xml.QName
	switch e := left.(type) {
	case name:
		qn = e.QName
	case axis:
		n, ok := e.next.(name)
		if !ok || e.kind != childAxis {
			return nil, p.wrongSyntax("invalid function identifier")
		}
		qn = n.QName
	default:
		return nil, p.wrongSyntax("invalid function identifier")
	}
	fn := call{
		QName: qn,
		pos:   p.curr.Position,
	}
	p.next()
	for !p.done() && !p.is(endGrp) {
		arg, err := p.expression(powSeq)
		if err != nil {
			return nil, err
		}
		fn.args = append(fn.args, arg)
		switch {
		case p.is(opSeq):
			p.next()
			if p.is(endGrp) {
				return nil, p.wrongSyntax("argument expected after comma")
			}
		case p.is(endGrp):
		default:
			return nil, p.unexpected()
		}
	}
	if err := p.expect(endGrp); err != nil {
		return nil, err
	}
	if err := p.checkFunction(fn.QName); err != nil {
		return nil, errorAt(err, fn.pos)
	}
	return fn, nil
}

func (p *Parser) checkFunction(qn xml.QName) error {
	if !p.static.Strict {
		return nil
	}
	key := qn.Name
	if qn.Space != "" {
		key = qn.QualifiedName()
	}
	if _, err := p.builtins.Resolve(key); err != nil {
		return unknownFunc(qn.QualifiedName())
	}
	return nil
}

func (p *Parser) compileGroup() (Expr, error) {
	p.Enter("group")
	defer p.Leave("group")

	p.next()
	expr, err := p.expression(powLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(endGrp); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) compileSequenceGroup() (Expr, error) {
	p.Enter("sequence")
	defer p.Leave("sequence")

	p.next()
	if p.is(endGrp) {
		p.next()
		return sequence{}, nil
	}
	expr, err := p.expression(powLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(endGrp); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) compileFor() (Expr, error) {
	p.Enter("for")
	defer p.Leave("for")

	p.next()
	binds, err := p.compileBindings(opIn)
	if err != nil {
		return nil, err
	}
	defer p.popScope()
	if err := p.expect(opReturn); err != nil {
		return nil, err
	}
	body, err := p.expression(powSeq)
	if err != nil {
		return nil, err
	}
	expr := loop{
		binds: binds,
		body:  body,
	}
	return expr, nil
}

func (p *Parser) compileLet() (Expr, error) {
	p.Enter("let")
	defer p.Leave("let")

	p.next()
	binds, err := p.compileBindings(opAssign)
	if err != nil {
		return nil, err
	}
	defer p.popScope()
	if err := p.expect(opReturn); err != nil {
		return nil, err
	}
	body, err := p.expression(powSeq)
	if err != nil {
		return nil, err
	}
	expr := let{
		binds: binds,
		expr:  body,
	}
	return expr, nil
}

func (p *Parser) compileSome() (Expr, error) {
	return p.compileQuantified(false)
}

func (p *Parser) compileEvery() (Expr, error) {
	return p.compileQuantified(true)
}

func (p *Parser) compileQuantified(every bool) (Expr, error) {
	p.Enter("quantified")
	defer p.Leave("quantified")

	p.next()
	binds, err := p.compileBindings(opIn)
	if err != nil {
		return nil, err
	}
	defer p.popScope()
	if err := p.expect(opSatisfies); err != nil {
		return nil, err
	}
	test, err := p.expression(powSeq)
	if err != nil {
		return nil, err
	}
	expr := quantified{
		binds: binds,
		test:  test,
		every: every,
	}
	return expr, nil
}

// compileBindings parses $v <sep> expr clauses separated by commas and
// leaves a scope holding the bound names for the caller to pop.
func (p *Parser) compileBindings(sep rune) ([]binding, error) {
	p.pushScope()
	var binds []binding
	for {
		if !p.is(variable) {
			return nil, p.wrongSyntax("variable expected")
		}
		ident := p.curr.Literal
		p.next()
		if err := p.expect(sep); err != nil {
			return nil, err
		}
		expr, err := p.expression(powSeq)
		if err != nil {
			return nil, err
		}
		p.declare(ident)
		binds = append(binds, binding{ident: ident, expr: expr})
		if !p.is(opSeq) {
			break
		}
		p.next()
	}
	return binds, nil
}

func (p *Parser) compileIf() (Expr, error) {
	p.Enter("if")
	defer p.Leave("if")

	p.next()
	if err := p.expect(begGrp); err != nil {
		return nil, err
	}
	test, err := p.expression(powLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expect(endGrp); err != nil {
		return nil, err
	}
	if err := p.expect(opThen); err != nil {
		return nil, err
	}
	csq, err := p.expression(powSeq)
	if err != nil {
		return nil, err
	}
	if err := p.expect(opElse); err != nil {
		return nil, err
	}
	alt, err := p.expression(powSeq)
	if err != nil {
		return nil, err
	}
	expr := conditional{
		test: test,
		csq:  csq,
		alt:  alt,
	}
	return expr, nil
}

func (p *Parser) compileInstanceOf(left Expr) (Expr, error) {
	p.Enter("instance-of")
	defer p.Leave("instance-of")

	p.next()
	t, err := p.compileSequenceType()
	if err != nil {
		return nil, err
	}
	expr := instanceof{
		expr: left,
		kind: t,
	}
	return expr, nil
}

func (p *Parser) compileTreatAs(left Expr) (Expr, error) {
	p.Enter("treat-as")
	defer p.Leave("treat-as")

	pos := p.curr.Position
	p.next()
	t, err := p.compileSequenceType()
	if err != nil {
		return nil, err
	}
	expr := treat{
		expr: left,
		kind: t,
		pos:  pos,
	}
	return expr, nil
}

func (p *Parser) compileCastAs(left Expr) (Expr, error) {
	p.Enter("cast-as")
	defer p.Leave("cast-as")

	pos := p.curr.Position
	p.next()
	t, some, err := p.compileCastTarget()
	if err != nil {
		return nil, err
	}
	expr := cast{
		expr: left,
		kind: t,
		some: some,
		pos:  pos,
	}
	return expr, nil
}

func (p *Parser) compileCastableAs(left Expr) (Expr, error) {
	p.Enter("castable-as")
	defer p.Leave("castable-as")

	pos := p.curr.Position
	p.next()
	t, some, err := p.compileCastTarget()
	if err != nil {
		return nil, err
	}
	expr := castable{
		expr: left,
		kind: t,
		some: some,
		pos:  pos,
	}
	return expr, nil
}

func (p *Parser) compileCastTarget() (XdmType, bool, error) {
	qn, err := p.compileQName()
	if err != nil {
		return nil, false, err
	}
	t, err := p.resolveType(qn)
	if err != nil {
		return nil, false, err
	}
	var some bool
	if p.is(opQuestion) {
		some = true
		p.next()
	}
	return t, some, nil
}

func (p *Parser) resolveType(qn xml.QName) (XdmType, error) {
	if proxy := p.static.Schema; proxy != nil {
		if t, ok := proxy.GetType(qn); ok {
			return t, nil
		}
	}
	return ResolveType(qn)
}

func (p *Parser) compileSequenceType() (SequenceType, error) {
	var t SequenceType
	if !p.is(Name) && !p.is(opMul) {
		return t, p.wrongSyntax("sequence type expected")
	}
	switch {
	case p.curr.Literal == "empty-sequence" && p.peekIs(begGrp):
		t.EmptySeq = true
		p.next()
		p.next()
		if err := p.expect(endGrp); err != nil {
			return t, err
		}
		return t, nil
	case p.curr.Literal == "item" && p.peekIs(begGrp):
		t.Any = true
		p.next()
		p.next()
		if err := p.expect(endGrp); err != nil {
			return t, err
		}
	case isKindTest(p.curr.Literal) && p.peekIs(begGrp):
		k, err := p.compileKindTest()
		if err != nil {
			return t, err
		}
		test := k.(kind)
		t.Kind = test.kind
		t.Name = xml.LocalName(test.target)
	default:
		qn, err := p.compileQName()
		if err != nil {
			return t, err
		}
		t.Atomic, err = p.resolveType(qn)
		if err != nil {
			return t, err
		}
	}
	switch p.curr.Type {
	case opQuestion:
		t.Occurrence = occZeroOrOne
		p.next()
	case opMul:
		t.Occurrence = occZeroOrMore
		p.next()
	case opAdd:
		t.Occurrence = occOneOrMore
		p.next()
	}
	return t, nil
}

// startsExpr reports whether the current token can begin an
// expression, which decides if a leading slash is a full path or the
// bare document root.
func (p *Parser) startsExpr() bool {
	spec := p.registry.get(p.curr.Type)
	return spec != nil && spec.Nud != nil
}

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, make(map[string]struct{}))
}

func (p *Parser) popScope() {
	if n := len(p.scopes); n > 0 {
		p.scopes = p.scopes[:n-1]
	}
}

func (p *Parser) declare(ident string) {
	if n := len(p.scopes); n > 0 {
		p.scopes[n-1][ident] = struct{}{}
	}
}

func (p *Parser) inScope(ident string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if _, ok := p.scopes[i][ident]; ok {
			return true
		}
	}
	_, ok := p.static.Variables[ident]
	return ok
}

func (p *Parser) expect(tok rune) error {
	if !p.is(tok) {
		return p.unexpected()
	}
	p.next()
	return nil
}

// advanceUntil drops tokens until one of the given kinds comes up, a
// recovery aid for error reporting.
func (p *Parser) advanceUntil(toks ...rune) {
	for !p.done() {
		for _, t := range toks {
			if p.is(t) {
				return
			}
		}
		p.next()
	}
}

func (p *Parser) unexpected() error {
	p.Error("expr", ErrSyntax)
	return syntaxError(fmt.Sprintf("unexpected token %s", p.curr), p.curr.Position)
}

func (p *Parser) wrongSyntax(msg string) error {
	p.Error("expr", ErrSyntax)
	return syntaxError(msg, p.curr.Position)
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) peekIs(kind rune) bool {
	return p.peek.Type == kind
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}
