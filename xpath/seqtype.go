package xpath

import (
	"strings"

	"github.com/midbel/angle/xml"
)

const (
	occOne        = 0
	occZeroOrOne  = '?'
	occZeroOrMore = '*'
	occOneOrMore  = '+'
)

// SequenceType is an occurrence qualified item type, the right hand
// side of instance of and treat as expressions.
type SequenceType struct {
	Atomic XdmType
	Kind   xml.NodeType
	Name   xml.QName

	Any        bool
	EmptySeq   bool
	Occurrence rune
}

func (t SequenceType) Matches(seq Sequence) bool {
	if t.EmptySeq {
		return seq.Empty()
	}
	switch t.Occurrence {
	case occOne:
		if seq.Len() != 1 {
			return false
		}
	case occZeroOrOne:
		if seq.Len() > 1 {
			return false
		}
	case occOneOrMore:
		if seq.Empty() {
			return false
		}
	case occZeroOrMore:
	}
	return seq.Every(t.matchItem)
}

func (t SequenceType) matchItem(item Item) bool {
	if t.Any {
		return true
	}
	if t.Atomic != nil {
		return t.Atomic.Matches(item)
	}
	if item.Atomic() {
		return false
	}
	node := item.Node()
	if t.Kind != 0 && node.Type()&t.Kind == 0 {
		return false
	}
	if !t.Name.Zero() && t.Name.Name != "*" {
		if node.LocalName() != t.Name.Name {
			return false
		}
	}
	return true
}

func (t SequenceType) String() string {
	var str strings.Builder
	switch {
	case t.EmptySeq:
		str.WriteString("empty-sequence()")
	case t.Any:
		str.WriteString("item()")
	case t.Atomic != nil:
		str.WriteString(t.Atomic.Name().QualifiedName())
	default:
		switch t.Kind {
		case xml.TypeNode:
			str.WriteString("node(")
		case xml.TypeElement:
			str.WriteString("element(")
		case xml.TypeAttribute:
			str.WriteString("attribute(")
		case xml.TypeText:
			str.WriteString("text(")
		case xml.TypeComment:
			str.WriteString("comment(")
		case xml.TypeInstruction:
			str.WriteString("processing-instruction(")
		case xml.TypeDocument:
			str.WriteString("document-node(")
		}
		if !t.Name.Zero() {
			str.WriteString(t.Name.QualifiedName())
		}
		str.WriteString(")")
	}
	if t.Occurrence != occOne {
		str.WriteRune(t.Occurrence)
	}
	return str.String()
}
