package xml

import (
	"fmt"
	"slices"
	"strings"
)

type NodeType int8

const (
	TypeDocument NodeType = 1 << iota
	TypeElement
	TypeAttribute
	TypeText
	TypeNamespace
	TypeComment
	TypeInstruction
)

const TypeNode = TypeDocument | TypeElement | TypeAttribute |
	TypeText | TypeNamespace | TypeComment | TypeInstruction

func (n NodeType) String() string {
	switch n {
	default:
		return "<>"
	case TypeDocument:
		return "document"
	case TypeElement:
		return "element"
	case TypeAttribute:
		return "attribute"
	case TypeText:
		return "text"
	case TypeNamespace:
		return "namespace"
	case TypeComment:
		return "comment"
	case TypeInstruction:
		return "pi"
	case TypeNode:
		return "node"
	}
}

// Node is one of the seven xdm node kinds overlaid on a document.
// Position returns the document order slot assigned by BuildTree;
// Index returns the slot of the node in its parent children list.
type Node interface {
	Type() NodeType
	LocalName() string
	QualifiedName() string
	Leaf() bool
	Parent() Node
	Value() string
	Position() int
	Index() int
	Identity() string

	setParent(Node)
	setIndex(int)
	setPosition(int)
}

func Before(left, right Node) bool {
	return left.Position() < right.Position()
}

func After(left, right Node) bool {
	return left.Position() > right.Position()
}

func Root(node Node) Node {
	for {
		p := node.Parent()
		if p == nil {
			return node
		}
		node = p
	}
}

type QName struct {
	Uri   string
	Space string
	Name  string
}

func ParseName(name string) (QName, error) {
	var (
		qn QName
		ok bool
	)
	qn.Space, qn.Name, ok = strings.Cut(name, ":")
	if !ok {
		qn.Name, qn.Space = qn.Space, ""
	}
	if ok && qn.Space == "" {
		return qn, fmt.Errorf("%s: invalid qualified name", name)
	}
	return qn, nil
}

func ExpandedName(name, space, uri string) QName {
	return QName{
		Name:  name,
		Space: space,
		Uri:   uri,
	}
}

func LocalName(name string) QName {
	return ExpandedName(name, "", "")
}

func QualifiedName(name, space string) QName {
	return ExpandedName(name, space, "")
}

func (q QName) Zero() bool {
	return q.Space == "" && q.Name == ""
}

func (q QName) Equal(other QName) bool {
	return q.Uri == other.Uri && q.Name == other.Name
}

func (q QName) LocalName() string {
	return q.Name
}

func (q QName) ExpandedName() string {
	if q.Uri == "" {
		return q.LocalName()
	}
	return fmt.Sprintf("{%s}%s", q.Uri, q.Name)
}

func (q QName) QualifiedName() string {
	if q.Space == "" {
		return q.LocalName()
	}
	return fmt.Sprintf("%s:%s", q.Space, q.Name)
}

type base struct {
	parent   Node
	index    int
	position int
}

func (b *base) Parent() Node {
	return b.parent
}

func (b *base) Index() int {
	return b.index
}

func (b *base) Position() int {
	return b.position
}

func (b *base) setParent(node Node) {
	b.parent = node
}

func (b *base) setIndex(index int) {
	b.index = index
}

func (b *base) setPosition(pos int) {
	b.position = pos
}

const (
	SupportedVersion  = "1.0"
	SupportedEncoding = "UTF-8"
)

type Document struct {
	Version    string
	Encoding   string
	Standalone string

	Nodes []Node

	base
}

func NewDocument(root Node) *Document {
	doc := EmptyDocument()
	doc.Append(root)
	return doc
}

func EmptyDocument() *Document {
	doc := Document{
		Version:  SupportedVersion,
		Encoding: SupportedEncoding,
	}
	return &doc
}

func (d *Document) Append(node Node) {
	node.setParent(d)
	node.setIndex(len(d.Nodes))
	d.Nodes = append(d.Nodes, node)
}

func (d *Document) Root() Node {
	for i := range d.Nodes {
		if d.Nodes[i].Type() == TypeElement {
			return d.Nodes[i]
		}
	}
	return nil
}

func (_ *Document) Type() NodeType {
	return TypeDocument
}

func (_ *Document) LocalName() string {
	return ""
}

func (_ *Document) QualifiedName() string {
	return ""
}

func (_ *Document) Leaf() bool {
	return false
}

func (d *Document) Parent() Node {
	return nil
}

func (d *Document) Value() string {
	root := d.Root()
	if root == nil {
		return ""
	}
	return root.Value()
}

func (d *Document) Identity() string {
	return "document(0)"
}

func (d *Document) setParent(_ Node) {}

type Element struct {
	QName
	Attrs  []*Attribute
	Spaces []*Namespace
	Nodes  []Node

	base
}

func NewElement(name QName) *Element {
	return &Element{
		QName: name,
	}
}

func (_ *Element) Type() NodeType {
	return TypeElement
}

func (e *Element) Leaf() bool {
	return false
}

func (e *Element) Empty() bool {
	return len(e.Nodes) == 0
}

func (e *Element) Value() string {
	var str strings.Builder
	for _, n := range e.Nodes {
		switch n.Type() {
		case TypeText, TypeElement:
			str.WriteString(n.Value())
		default:
		}
	}
	return str.String()
}

func (e *Element) Identity() string {
	return fmt.Sprintf("element(%s)[%d]", e.QualifiedName(), e.position)
}

func (e *Element) Append(node Node) {
	switch n := node.(type) {
	case *Attribute:
		e.SetAttribute(n)
	case *Namespace:
		n.setParent(e)
		e.Spaces = append(e.Spaces, n)
	default:
		node.setParent(e)
		node.setIndex(len(e.Nodes))
		e.Nodes = append(e.Nodes, node)
	}
}

func (e *Element) Find(name string) Node {
	ix := slices.IndexFunc(e.Nodes, func(n Node) bool {
		return n.LocalName() == name
	})
	if ix < 0 {
		return nil
	}
	return e.Nodes[ix]
}

func (e *Element) FindAll(name string) []Node {
	var nodes []Node
	for i := range e.Nodes {
		if e.Nodes[i].LocalName() != name {
			continue
		}
		nodes = append(nodes, e.Nodes[i])
	}
	return nodes
}

func (e *Element) Has(name string) bool {
	return e.Find(name) != nil
}

func (e *Element) GetAttribute(name string) *Attribute {
	ix := slices.IndexFunc(e.Attrs, func(a *Attribute) bool {
		return a.Name == name
	})
	if ix < 0 {
		return nil
	}
	return e.Attrs[ix]
}

func (e *Element) SetAttribute(attr *Attribute) {
	attr.setParent(e)
	ix := slices.IndexFunc(e.Attrs, func(a *Attribute) bool {
		return a.QualifiedName() == attr.QualifiedName()
	})
	if ix < 0 {
		attr.setIndex(len(e.Attrs))
		e.Attrs = append(e.Attrs, attr)
	} else {
		attr.setIndex(ix)
		e.Attrs[ix] = attr
	}
}

func (e *Element) NextSibling() Node {
	nodes := siblings(e.parent)
	pos := e.index + 1
	if pos >= len(nodes) {
		return nil
	}
	return nodes[pos]
}

func (e *Element) PrevSibling() Node {
	nodes := siblings(e.parent)
	pos := e.index - 1
	if pos < 0 || pos >= len(nodes) {
		return nil
	}
	return nodes[pos]
}

func (e *Element) Len() int {
	return len(e.Nodes)
}

func siblings(parent Node) []Node {
	switch p := parent.(type) {
	case *Element:
		return p.Nodes
	case *Document:
		return p.Nodes
	default:
		return nil
	}
}

type Attribute struct {
	QName
	Datum string

	base
}

func NewAttribute(name QName, value string) *Attribute {
	return &Attribute{
		QName: name,
		Datum: value,
	}
}

func (_ *Attribute) Type() NodeType {
	return TypeAttribute
}

func (_ *Attribute) Leaf() bool {
	return true
}

func (a *Attribute) Value() string {
	return a.Datum
}

func (a *Attribute) Identity() string {
	return fmt.Sprintf("attribute(%s)[%d]", a.QualifiedName(), a.position)
}

func (a *Attribute) Reserved() bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Name == "xmlns")
}

type Namespace struct {
	Prefix string
	Uri    string

	base
}

func NewNamespace(prefix, uri string) *Namespace {
	return &Namespace{
		Prefix: prefix,
		Uri:    uri,
	}
}

func (_ *Namespace) Type() NodeType {
	return TypeNamespace
}

func (n *Namespace) LocalName() string {
	return n.Prefix
}

func (n *Namespace) QualifiedName() string {
	if n.Prefix == "" {
		return "xmlns"
	}
	return fmt.Sprintf("xmlns:%s", n.Prefix)
}

func (_ *Namespace) Leaf() bool {
	return true
}

func (n *Namespace) Default() bool {
	return n.Prefix == ""
}

func (n *Namespace) Value() string {
	return n.Uri
}

func (n *Namespace) Identity() string {
	return fmt.Sprintf("namespace(%s)[%d]", n.Prefix, n.position)
}

type Text struct {
	Content string
	Cdata   bool

	base
}

func NewText(text string) *Text {
	return &Text{
		Content: text,
	}
}

func NewCharacterData(chardata string) *Text {
	return &Text{
		Content: chardata,
		Cdata:   true,
	}
}

func (_ *Text) Type() NodeType {
	return TypeText
}

func (_ *Text) LocalName() string {
	return ""
}

func (_ *Text) QualifiedName() string {
	return ""
}

func (_ *Text) Leaf() bool {
	return true
}

func (t *Text) Value() string {
	return t.Content
}

func (t *Text) Identity() string {
	return fmt.Sprintf("text[%d]", t.position)
}

type Comment struct {
	Content string

	base
}

func NewComment(comment string) *Comment {
	return &Comment{
		Content: comment,
	}
}

func (_ *Comment) Type() NodeType {
	return TypeComment
}

func (_ *Comment) LocalName() string {
	return ""
}

func (_ *Comment) QualifiedName() string {
	return ""
}

func (_ *Comment) Leaf() bool {
	return true
}

func (c *Comment) Value() string {
	return c.Content
}

func (c *Comment) Identity() string {
	return fmt.Sprintf("comment[%d]", c.position)
}

type Instruction struct {
	QName
	Attrs []*Attribute

	base
}

func NewInstruction(name QName) *Instruction {
	return &Instruction{
		QName: name,
	}
}

func (_ *Instruction) Type() NodeType {
	return TypeInstruction
}

func (_ *Instruction) Leaf() bool {
	return true
}

func (i *Instruction) Value() string {
	return ""
}

func (i *Instruction) SetAttribute(attr *Attribute) {
	attr.setParent(i)
	ix := slices.IndexFunc(i.Attrs, func(a *Attribute) bool {
		return a.QualifiedName() == attr.QualifiedName()
	})
	if ix < 0 {
		attr.setIndex(len(i.Attrs))
		i.Attrs = append(i.Attrs, attr)
	} else {
		attr.setIndex(ix)
		i.Attrs[ix] = attr
	}
}

func (i *Instruction) Identity() string {
	return fmt.Sprintf("pi(%s)[%d]", i.QualifiedName(), i.position)
}
