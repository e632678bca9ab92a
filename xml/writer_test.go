package xml

import (
	"strings"
	"testing"
)

func TestWriteString(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?><r a="1"><b>text</b></r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	str, err := WriteString(doc)
	if err != nil {
		t.Fatalf("fail to write document: %s", err)
	}
	for _, want := range []string{`<?xml version="1.0"`, `<r a="1">`, `<b>text</b>`, "</r>"} {
		if !strings.Contains(str, want) {
			t.Errorf("output missing %q in %q", want, str)
		}
	}
}

func TestWriteNode(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?><r><b x="2">v</b></r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	root := doc.Root().(*Element)
	str := WriteNode(root.Nodes[0])
	if str != `<b x="2">v</b>` {
		t.Errorf("node output mismatched! got %q", str)
	}
}

func TestWriteEscapes(t *testing.T) {
	el := NewElement(LocalName("r"))
	el.SetAttribute(NewAttribute(LocalName("a"), `x&y`))
	el.Append(NewText("1 < 2"))
	str := WriteNode(el)
	if !strings.Contains(str, "&amp;") || !strings.Contains(str, "&lt;") {
		t.Errorf("output not escaped: %q", str)
	}
}
