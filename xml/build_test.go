package xml

import (
	"testing"
)

func TestBuildTree(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?><A><B1 x="1"/><B2><C1/><C2/></B2></A>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	BuildTree(doc)

	var (
		last  int
		check func(Node)
	)
	check = func(n Node) {
		if n.Position() <= last {
			t.Errorf("%s: position not increasing (%d after %d)", n.Identity(), n.Position(), last)
		}
		last = n.Position()
		el, ok := n.(*Element)
		if !ok {
			return
		}
		for i := range el.Spaces {
			check(el.Spaces[i])
		}
		for i := range el.Attrs {
			check(el.Attrs[i])
		}
		for i := range el.Nodes {
			check(el.Nodes[i])
		}
	}
	for _, n := range doc.Nodes {
		check(n)
	}
	if !Indexed(doc) {
		t.Errorf("document should report as indexed")
	}

	root := doc.Root().(*Element)
	b1 := root.Nodes[0].(*Element)
	if x := b1.GetAttribute("x"); x.Position() <= b1.Position() {
		t.Errorf("attribute should sort after its element")
	}
	b2 := root.Nodes[1].(*Element)
	if x := b1.GetAttribute("x"); x.Position() >= b2.Position() {
		t.Errorf("attribute should sort before the next sibling")
	}
	if root.GetNamespace("xml") == nil {
		t.Errorf("implicit xml namespace missing on root")
	}
}

func TestBuildTreeWithoutTails(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?><r>head<a/>tail<b/>end</r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	BuildTree(doc, WithoutTails())
	root := doc.Root().(*Element)
	var texts []string
	for _, n := range root.Nodes {
		if n.Type() == TypeText {
			texts = append(texts, n.Value())
		}
	}
	if len(texts) != 1 || texts[0] != "head" {
		t.Errorf("tails should be dropped, got %q", texts)
	}
}

func TestDocumentOrder(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?><r><a/><b><c/></b></r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	BuildTree(doc)
	var (
		root = doc.Root().(*Element)
		a    = root.Nodes[0]
		b    = root.Nodes[1].(*Element)
		c    = b.Nodes[0]
	)
	if !Before(a, b) || !Before(b, c) || !Before(a, c) {
		t.Errorf("document order mismatched")
	}
	if !After(c, a) {
		t.Errorf("document order mismatched")
	}
}
