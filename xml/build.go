package xml

import (
	"slices"
)

const XmlNS = "http://www.w3.org/XML/1998/namespace"

type BuildOption func(*builder)

// WithoutTails drops text nodes trailing an element sibling, the way
// hosts without a tail concept expose their trees.
func WithoutTails() BuildOption {
	return func(b *builder) {
		b.keepTails = false
	}
}

type builder struct {
	keepTails bool
	last      int
}

// BuildTree assigns document order slots to every node reachable from
// doc. Slots increase strictly along a pre-order walk; namespace nodes
// and attributes of an element take the slots between the element and
// its first child. The document is returned reindexed.
func BuildTree(doc *Document, opts ...BuildOption) *Document {
	b := builder{
		keepTails: true,
	}
	for _, o := range opts {
		o(&b)
	}
	doc.setPosition(b.last)
	root, ok := doc.Root().(*Element)
	if ok && root.GetNamespace("xml") == nil {
		root.Append(NewNamespace("xml", XmlNS))
	}
	for i := range doc.Nodes {
		doc.Nodes[i].setIndex(i)
		b.build(doc.Nodes[i])
	}
	return doc
}

// BuildElementTree wraps an element into a synthesized document and
// indexes it.
func BuildElementTree(el *Element, opts ...BuildOption) *Document {
	if doc, ok := el.Parent().(*Document); ok {
		return BuildTree(doc, opts...)
	}
	return BuildTree(NewDocument(el), opts...)
}

func (b *builder) build(node Node) {
	b.last++
	node.setPosition(b.last)

	el, ok := node.(*Element)
	if !ok {
		return
	}
	for i := range el.Spaces {
		b.last++
		el.Spaces[i].setIndex(i)
		el.Spaces[i].setPosition(b.last)
	}
	for i := range el.Attrs {
		b.last++
		el.Attrs[i].setIndex(i)
		el.Attrs[i].setPosition(b.last)
	}
	if !b.keepTails {
		b.dropTails(el)
	}
	for i := range el.Nodes {
		el.Nodes[i].setIndex(i)
		b.build(el.Nodes[i])
	}
}

func (b *builder) dropTails(el *Element) {
	var seen bool
	el.Nodes = slices.DeleteFunc(el.Nodes, func(n Node) bool {
		if n.Type() == TypeElement {
			seen = true
			return false
		}
		return seen && n.Type() == TypeText
	})
}

func (e *Element) GetNamespace(prefix string) *Namespace {
	ix := slices.IndexFunc(e.Spaces, func(n *Namespace) bool {
		return n.Prefix == prefix
	})
	if ix < 0 {
		return nil
	}
	return e.Spaces[ix]
}

// Indexed reports whether the tree owning node went through BuildTree.
func Indexed(node Node) bool {
	root := Root(node)
	if doc, ok := root.(*Document); ok {
		el := doc.Root()
		return el != nil && el.Position() > 0
	}
	return root.Position() > 0
}
