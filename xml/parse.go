package xml

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

const MaxDepth = 512

type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	depth int

	TrimSpace  bool
	KeepEmpty  bool
	OmitProlog bool
	MaxDepth   int
}

func NewParser(r io.Reader) *Parser {
	p := Parser{
		scan:      Scan(r),
		TrimSpace: true,
		MaxDepth:  MaxDepth,
	}
	p.next()
	p.next()
	return &p
}

func ParseString(str string) (*Document, error) {
	return NewParser(strings.NewReader(str)).Parse()
}

func ParseFile(file string) (*Document, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return NewParser(r).Parse()
}

func (p *Parser) Parse() (*Document, error) {
	if _, err := p.parseProlog(); err != nil {
		return nil, err
	}
	doc := EmptyDocument()
	for !p.done() {
		if p.is(Literal) {
			p.next()
			continue
		}
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			doc.Append(node)
		}
	}
	if doc.Root() == nil {
		return nil, p.formatError("document: missing root element")
	}
	return doc, nil
}

func (p *Parser) parseProlog() (Node, error) {
	if !p.is(ProcInstTag) {
		if !p.OmitProlog {
			return nil, p.formatError("document: xml prolog missing")
		}
		return nil, nil
	}
	node, err := p.parseProcessingInstr()
	if err != nil {
		return nil, err
	}
	pi, ok := node.(*Instruction)
	if !ok || pi.Name != "xml" {
		return nil, p.formatError("document: processing instruction expected")
	}
	ok = slices.ContainsFunc(pi.Attrs, func(a *Attribute) bool {
		return a.LocalName() == "version" && a.Value() == SupportedVersion
	})
	if !ok {
		return nil, p.formatError("document: xml version not supported")
	}
	return pi, nil
}

func (p *Parser) parseNode() (Node, error) {
	p.enter()
	defer p.leave()
	if p.depth >= p.MaxDepth {
		return nil, p.formatError("document: maximum depth reached")
	}
	switch p.curr.Type {
	case OpenTag:
		return p.parseElement()
	case CommentTag:
		return p.parseComment()
	case ProcInstTag:
		return p.parseProcessingInstr()
	case Cdata:
		return p.parseCharData()
	case Literal:
		return p.parseLiteral()
	default:
		return nil, p.formatError("document: unexpected element type")
	}
}

func (p *Parser) parseElement() (Node, error) {
	p.next()
	var (
		elem Element
		err  error
	)
	if p.is(Prefix) {
		elem.Space = p.curr.Literal
		p.next()
	}
	if !p.is(Name) {
		return nil, p.formatError("element: missing name")
	}
	elem.Name = p.curr.Literal
	p.next()

	attrs, err := p.parseAttributes(func() bool {
		return p.is(EndTag) || p.is(EmptyElemTag)
	})
	if err != nil {
		return nil, err
	}
	for i := range attrs {
		if attrs[i].Reserved() {
			prefix := attrs[i].Name
			if prefix == "xmlns" {
				prefix = ""
			}
			elem.Append(NewNamespace(prefix, attrs[i].Value()))
			continue
		}
		elem.Append(attrs[i])
	}
	switch p.curr.Type {
	case EmptyElemTag:
		p.next()
		return &elem, nil
	case EndTag:
		p.next()
		for !p.done() && !p.is(CloseTag) {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if child != nil {
				elem.Append(child)
			}
		}
		if !p.is(CloseTag) {
			return nil, p.formatError("element: missing closing element")
		}
		p.next()
		return &elem, p.parseCloseElement(elem)
	default:
		return nil, p.formatError("element: expected end of element")
	}
}

func (p *Parser) parseCloseElement(elem Element) error {
	if p.is(Prefix) {
		if elem.Space != p.curr.Literal {
			return p.formatError("element: namespace mismatched")
		}
		p.next()
	}
	if !p.is(Name) {
		return p.formatError("element: missing name")
	}
	if p.curr.Literal != elem.Name {
		return p.formatError("element: name mismatched")
	}
	p.next()
	if !p.is(EndTag) {
		return p.formatError("element: expected end of element")
	}
	p.next()
	return nil
}

func (p *Parser) parseProcessingInstr() (Node, error) {
	p.next()
	if !p.is(Name) {
		return nil, p.formatError("pi: missing name")
	}
	var elem Instruction
	elem.Name = p.curr.Literal
	p.next()
	attrs, err := p.parseAttributes(func() bool {
		return p.is(ProcInstTag)
	})
	if err != nil {
		return nil, err
	}
	for i := range attrs {
		elem.SetAttribute(attrs[i])
	}
	if !p.is(ProcInstTag) {
		return nil, p.formatError("pi: expected end of element")
	}
	p.next()
	return &elem, nil
}

func (p *Parser) parseAttributes(done func() bool) ([]*Attribute, error) {
	var attrs []*Attribute
	for !p.done() && !done() {
		attr, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		ok := slices.ContainsFunc(attrs, func(a *Attribute) bool {
			return attr.QualifiedName() == a.QualifiedName()
		})
		if ok {
			return nil, p.formatError("attribute: duplicate attribute")
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *Parser) parseAttr() (*Attribute, error) {
	var attr Attribute
	if p.is(Prefix) {
		attr.Space = p.curr.Literal
		p.next()
	}
	if !p.is(Attr) {
		return nil, p.formatError("attribute: attribute name expected")
	}
	attr.Name = p.curr.Literal
	p.next()
	if !p.is(Literal) {
		return nil, p.formatError("attribute: missing attribute value")
	}
	attr.Datum = p.curr.Literal
	p.next()
	return &attr, nil
}

func (p *Parser) parseComment() (Node, error) {
	defer p.next()
	node := Comment{
		Content: p.curr.Literal,
	}
	return &node, nil
}

func (p *Parser) parseCharData() (Node, error) {
	defer p.next()
	return NewCharacterData(p.curr.Literal), nil
}

func (p *Parser) parseLiteral() (Node, error) {
	text := Text{
		Content: p.curr.Literal,
	}
	if p.TrimSpace {
		text.Content = strings.TrimSpace(text.Content)
	}
	p.next()
	if !p.KeepEmpty && text.Content == "" {
		return nil, nil
	}
	return &text, nil
}

func (p *Parser) formatError(msg string) error {
	return fmt.Errorf("(%d:%d) %s", p.curr.Line, p.curr.Column, msg)
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) enter() {
	p.depth++
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}
