package xpath

import (
	"slices"
	"testing"

	"github.com/midbel/angle/xml"
)

const axisDoc = `<?xml version="1.0"?><r><a><a1/><a2/></a><b x="1"><b1><b2/></b1></b><c/></r>`

func axisFixture(t *testing.T) *xml.Document {
	t.Helper()
	doc, err := xml.ParseString(axisDoc)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	return xml.BuildTree(doc)
}

func locate(t *testing.T, doc *xml.Document, path string) xml.Node {
	t.Helper()
	seq, err := Find(doc, path)
	if err != nil || seq.Empty() {
		t.Fatalf("%s: node not found (%v)", path, err)
	}
	return seq[0].Node()
}

func collect(t *testing.T, kind string, node xml.Node) []string {
	t.Helper()
	nodes, err := axisNodes(kind, node)
	if err != nil {
		t.Fatalf("%s: %s", kind, err)
	}
	var names []string
	for _, n := range nodes {
		if n.Type() == xml.TypeText {
			continue
		}
		names = append(names, n.LocalName())
	}
	return names
}

func TestAxes(t *testing.T) {
	doc := axisFixture(t)
	b1 := locate(t, doc, "//b1")

	tests := []struct {
		Axis string
		Want []string
	}{
		{Axis: childAxis, Want: []string{"b2"}},
		{Axis: parentAxis, Want: []string{"b"}},
		{Axis: selfAxis, Want: []string{"b1"}},
		{Axis: ancestorAxis, Want: []string{"b", "r", ""}},
		{Axis: ancestorSelfAxis, Want: []string{"b1", "b", "r", ""}},
		{Axis: descendantAxis, Want: []string{"b2"}},
		{Axis: descendantSelfAxis, Want: []string{"b1", "b2"}},
		{Axis: nextSiblingAxis, Want: nil},
		{Axis: prevSiblingAxis, Want: nil},
		{Axis: nextAxis, Want: []string{"c"}},
		{Axis: prevAxis, Want: []string{"a2", "a1", "a"}},
	}
	for _, c := range tests {
		got := collect(t, c.Axis, b1)
		if !slices.Equal(got, c.Want) {
			t.Errorf("%s: axis mismatched! want %v, got %v", c.Axis, c.Want, got)
		}
	}
}

func TestAxisSiblings(t *testing.T) {
	doc := axisFixture(t)
	b := locate(t, doc, "/r/b")

	if got := collect(t, nextSiblingAxis, b); !slices.Equal(got, []string{"c"}) {
		t.Errorf("following-sibling mismatched! got %v", got)
	}
	if got := collect(t, prevSiblingAxis, b); !slices.Equal(got, []string{"a"}) {
		t.Errorf("preceding-sibling mismatched! got %v", got)
	}
}

func TestAxisAttribute(t *testing.T) {
	doc := axisFixture(t)
	b := locate(t, doc, "/r/b")

	nodes, err := axisNodes(attrAxis, b)
	if err != nil {
		t.Fatalf("attribute axis failed: %s", err)
	}
	if len(nodes) != 1 || nodes[0].LocalName() != "x" {
		t.Fatalf("attribute axis mismatched! got %v", nodes)
	}
	// attributes are not children but sort with their element
	if nodes[0].Position() <= b.Position() {
		t.Errorf("attribute should sort after its element start")
	}
	children, _ := axisNodes(childAxis, b)
	for _, c := range children {
		if c.Type() == xml.TypeAttribute {
			t.Errorf("attribute leaked into the child axis")
		}
	}
}

func TestAxisReverseOrder(t *testing.T) {
	if !isReverse(prevAxis) || !isReverse(ancestorAxis) || isReverse(childAxis) {
		t.Fatalf("axis direction mismatched")
	}
	doc := axisFixture(t)
	c := locate(t, doc, "/r/c")

	nodes, err := axisNodes(prevAxis, c)
	if err != nil {
		t.Fatalf("preceding axis failed: %s", err)
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Position() >= nodes[i-1].Position() {
			t.Errorf("preceding axis should run in reverse document order")
		}
	}
}

func TestAxisLazy(t *testing.T) {
	doc := axisFixture(t)
	it, err := iterAxis(descendantSelfAxis, doc)
	if err != nil {
		t.Fatalf("iterAxis failed: %s", err)
	}
	var count int
	for range it {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("iterator should stop on demand, got %d", count)
	}
}
