package xpath

import (
	"iter"
	"maps"

	"github.com/midbel/angle/xml"
)

// SchemaProxy is the capability set the engine expects from a schema
// aware collaborator. The engine performs no xsd parsing itself; an
// implementation may be backed by a full xsd processor.
type SchemaProxy interface {
	GetType(xml.QName) (XdmType, bool)
	GetElement(xml.QName) (XdmType, bool)
	GetAttribute(xml.QName) (XdmType, bool)
	IsInstance(any, xml.QName) bool
	CastAs(any, xml.QName) (any, error)
	AtomicTypes() iter.Seq[xml.QName]
	PrimitiveType(xml.QName) xml.QName
	Bind(*Parser) error
}

// SimpleProxy is an in memory proxy over declared elements and
// attributes mapped to the builtin atomic types. Enough for tests and
// schema aware name tests; anything richer plugs in through the
// SchemaProxy interface.
type SimpleProxy struct {
	types      map[xml.QName]XdmType
	elements   map[xml.QName]xml.QName
	attributes map[xml.QName]xml.QName
	children   map[xml.QName][]xml.QName
}

func NewSimpleProxy() *SimpleProxy {
	p := SimpleProxy{
		types:      make(map[xml.QName]XdmType),
		elements:   make(map[xml.QName]xml.QName),
		attributes: make(map[xml.QName]xml.QName),
		children:   make(map[xml.QName][]xml.QName),
	}
	for _, t := range atomicTypes {
		p.types[xml.LocalName(t.name)] = t
	}
	return &p
}

func (p *SimpleProxy) DeclareElement(name, typ xml.QName, children ...xml.QName) {
	p.elements[name] = typ
	p.children[name] = children
}

func (p *SimpleProxy) DeclareAttribute(name, typ xml.QName) {
	p.attributes[name] = typ
}

func (p *SimpleProxy) GetType(name xml.QName) (XdmType, bool) {
	t, ok := p.types[xml.LocalName(name.Name)]
	return t, ok
}

func (p *SimpleProxy) GetElement(name xml.QName) (XdmType, bool) {
	typ, ok := p.elements[name]
	if !ok {
		return nil, false
	}
	return p.GetType(typ)
}

func (p *SimpleProxy) GetAttribute(name xml.QName) (XdmType, bool) {
	typ, ok := p.attributes[name]
	if !ok {
		return nil, false
	}
	return p.GetType(typ)
}

func (p *SimpleProxy) IsInstance(value any, name xml.QName) bool {
	t, ok := p.GetType(name)
	if !ok {
		return false
	}
	return t.Castable(value)
}

func (p *SimpleProxy) CastAs(value any, name xml.QName) (any, error) {
	t, ok := p.GetType(name)
	if !ok {
		return nil, castError(name.QualifiedName() + ": unknown type")
	}
	return t.Cast(value)
}

func (p *SimpleProxy) AtomicTypes() iter.Seq[xml.QName] {
	return maps.Keys(p.types)
}

func (p *SimpleProxy) PrimitiveType(name xml.QName) xml.QName {
	if t, ok := p.GetType(name); ok {
		return t.Name()
	}
	return name
}

func (p *SimpleProxy) Bind(_ *Parser) error {
	return nil
}

// BuildSchemaTree materializes the declared element structure of a
// proxy as a node tree, used for static analysis of paths against a
// schema rather than a document.
func BuildSchemaTree(proxy *SimpleProxy, top xml.QName) *xml.Document {
	var build func(name xml.QName, depth int) *xml.Element
	build = func(name xml.QName, depth int) *xml.Element {
		el := xml.NewElement(name)
		if depth >= xml.MaxDepth {
			return el
		}
		for _, c := range proxy.children[name] {
			if _, ok := proxy.elements[c]; !ok {
				continue
			}
			el.Append(build(c, depth+1))
		}
		return el
	}
	return xml.BuildTree(xml.NewDocument(build(top, 0)))
}
