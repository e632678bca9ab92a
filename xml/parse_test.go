package xml

import (
	"strings"
	"testing"
)

const document = `<?xml version="1.0" encoding="UTF-8"?>
<!-- catalog of items -->
<catalog xmlns:m="http://midbel.org/meta">
	<item id="first">element-1</item>
	<item id="second">element-2</item>
	<m:info>
		<m:author>midbel</m:author>
	</m:info>
	<script><![CDATA[if (a < b) run();]]></script>
</catalog>
`

func TestParse(t *testing.T) {
	doc, err := ParseString(document)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	root, ok := doc.Root().(*Element)
	if !ok {
		t.Fatalf("root element expected")
	}
	if root.QualifiedName() != "catalog" {
		t.Errorf("root name mismatched! want catalog, got %s", root.QualifiedName())
	}
	if n := len(root.Nodes); n != 4 {
		t.Fatalf("children mismatched! want 4, got %d", n)
	}
	if n := len(root.Spaces); n != 1 {
		t.Fatalf("namespaces mismatched! want 1, got %d", n)
	}
	if ns := root.Spaces[0]; ns.Prefix != "m" || ns.Uri != "http://midbel.org/meta" {
		t.Errorf("namespace mismatched! got %s=%s", ns.Prefix, ns.Uri)
	}
	items := root.FindAll("item")
	if len(items) != 2 {
		t.Fatalf("items mismatched! want 2, got %d", len(items))
	}
	el := items[0].(*Element)
	if a := el.GetAttribute("id"); a == nil || a.Value() != "first" {
		t.Errorf("attribute mismatched! want first, got %v", a)
	}
	if v := el.Value(); v != "element-1" {
		t.Errorf("value mismatched! want element-1, got %s", v)
	}
	if doc.Nodes[0].Type() != TypeComment {
		t.Errorf("top level comment expected, got %s", doc.Nodes[0].Type())
	}
}

func TestParseEntities(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?><r a="x&amp;y">1 &lt; 2</r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	root := doc.Root().(*Element)
	if a := root.GetAttribute("a"); a.Value() != "x&y" {
		t.Errorf("attribute entity mismatched! got %s", a.Value())
	}
	if v := root.Value(); v != "1 < 2" {
		t.Errorf("text entity mismatched! got %s", v)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		`<?xml version="1.0"?><a><b></a>`,
		`<?xml version="1.0"?><a x="1" x="2"/>`,
		`<a/>`,
	}
	for _, str := range tests {
		_, err := NewParser(strings.NewReader(str)).Parse()
		if err == nil {
			t.Errorf("%s: error expected", str)
		}
	}
}
