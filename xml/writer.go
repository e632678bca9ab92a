package xml

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

type Writer struct {
	writer *bufio.Writer

	Compact  bool
	Indent   string
	NoProlog bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: bufio.NewWriter(w),
		Indent: "  ",
	}
}

func WriteString(doc *Document) (string, error) {
	var (
		buf bytes.Buffer
		err = NewWriter(&buf).Write(doc)
	)
	return buf.String(), err
}

// WriteNode renders a single node and its subtree.
func WriteNode(node Node) string {
	var buf bytes.Buffer
	ws := NewWriter(&buf)
	ws.Compact = true
	ws.Indent = ""
	ws.writeNode(node, -1)
	ws.writer.Flush()
	return buf.String()
}

func (w *Writer) Write(doc *Document) error {
	if w.Compact {
		w.Indent = ""
	}
	if err := w.writeProlog(doc); err != nil {
		return err
	}
	for _, n := range doc.Nodes {
		if err := w.writeNode(n, -1); err != nil {
			return err
		}
	}
	w.writeNL()
	return w.writer.Flush()
}

func (w *Writer) writeNode(node Node, depth int) error {
	switch node := node.(type) {
	case *Element:
		return w.writeElement(node, depth+1)
	case *Text:
		return w.writeText(node, depth+1)
	case *Instruction:
		return w.writeInstruction(node, depth+1)
	case *Comment:
		return w.writeComment(node, depth+1)
	case *Attribute:
		_, err := w.writer.WriteString(node.Value())
		return err
	case *Namespace:
		_, err := w.writer.WriteString(node.Value())
		return err
	case *Document:
		for _, n := range node.Nodes {
			if err := w.writeNode(n, depth); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("node: unknown type")
	}
}

func (w *Writer) writeElement(node *Element, depth int) error {
	w.writeNL()

	prefix := strings.Repeat(w.Indent, depth)
	if prefix != "" {
		w.writer.WriteString(prefix)
	}
	w.writer.WriteRune(langle)
	w.writer.WriteString(node.QualifiedName())
	for _, n := range node.Spaces {
		if n.Prefix == "xml" {
			continue
		}
		w.writer.WriteRune(' ')
		w.writer.WriteString(n.QualifiedName())
		w.writeValue(n.Uri)
	}
	for _, a := range node.Attrs {
		w.writer.WriteRune(' ')
		w.writer.WriteString(a.QualifiedName())
		w.writeValue(a.Value())
	}
	if len(node.Nodes) == 0 {
		w.writer.WriteRune(slash)
		w.writer.WriteRune(rangle)
		return w.writer.Flush()
	}
	w.writer.WriteRune(rangle)
	for _, n := range node.Nodes {
		if err := w.writeNode(n, depth); err != nil {
			return err
		}
	}
	if n := len(node.Nodes); n > 0 {
		_, ok := node.Nodes[n-1].(*Text)
		if !ok {
			w.writeNL()
			w.writer.WriteString(prefix)
		}
	}
	w.writer.WriteRune(langle)
	w.writer.WriteRune(slash)
	w.writer.WriteString(node.QualifiedName())
	w.writer.WriteRune(rangle)
	return w.writer.Flush()
}

func (w *Writer) writeText(node *Text, _ int) error {
	if node.Cdata {
		w.writer.WriteString("<![CDATA[")
		w.writer.WriteString(node.Content)
		w.writer.WriteString("]]>")
		return nil
	}
	_, err := w.writer.WriteString(escapeText(node.Content))
	return err
}

func (w *Writer) writeComment(node *Comment, depth int) error {
	w.writeNL()
	prefix := strings.Repeat(w.Indent, depth)
	w.writer.WriteString(prefix)
	w.writer.WriteString("<!--")
	w.writer.WriteString(node.Content)
	w.writer.WriteString("-->")
	return nil
}

func (w *Writer) writeInstruction(node *Instruction, depth int) error {
	if depth > 0 {
		w.writeNL()
	}
	prefix := strings.Repeat(w.Indent, depth)
	if prefix != "" {
		w.writer.WriteString(prefix)
	}
	w.writer.WriteRune(langle)
	w.writer.WriteRune(question)
	w.writer.WriteString(node.Name)
	for _, a := range node.Attrs {
		w.writer.WriteRune(' ')
		w.writer.WriteString(a.QualifiedName())
		w.writeValue(a.Value())
	}
	w.writer.WriteRune(question)
	w.writer.WriteRune(rangle)
	return w.writer.Flush()
}

func (w *Writer) writeProlog(doc *Document) error {
	if w.NoProlog {
		return nil
	}
	version := doc.Version
	if version == "" {
		version = SupportedVersion
	}
	encoding := doc.Encoding
	if encoding == "" {
		encoding = SupportedEncoding
	}
	prolog := NewInstruction(LocalName("xml"))
	prolog.SetAttribute(NewAttribute(LocalName("version"), version))
	prolog.SetAttribute(NewAttribute(LocalName("encoding"), encoding))
	return w.writeInstruction(prolog, 0)
}

func (w *Writer) writeValue(value string) {
	w.writer.WriteRune(equal)
	w.writer.WriteRune(quote)
	w.writer.WriteString(escapeText(value))
	w.writer.WriteRune(quote)
}

func (w *Writer) writeNL() {
	if w.Compact {
		return
	}
	w.writer.WriteRune('\n')
}

func escapeText(str string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(str)
}
