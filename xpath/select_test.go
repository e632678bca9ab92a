package xpath

import (
	"sync"
	"testing"

	"github.com/midbel/angle/xml"
)

const catalog = `<?xml version="1.0"?>
<catalog>
	<book price="10"><title>first</title></book>
	<book price="25"><title>second</title></book>
	<book price="40"><title>third</title></book>
</catalog>`

func TestSelector(t *testing.T) {
	doc, err := xml.ParseString(catalog)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	sel, err := Compile("/catalog/book[@price > 15]/title")
	if err != nil {
		t.Fatalf("fail to compile: %s", err)
	}
	seq, err := sel.Select(doc)
	if err != nil {
		t.Fatalf("fail to select: %s", err)
	}
	if !matchValues(seq, []string{"second", "third"}) {
		t.Errorf("selection mismatched! got %q", seq.Stringify())
	}

	first, err := sel.First(doc)
	if err != nil {
		t.Fatalf("fail to select first: %s", err)
	}
	if first == nil || first.Value() != "second" {
		t.Errorf("first item mismatched! got %v", first)
	}
}

func TestSelectorIter(t *testing.T) {
	doc, err := xml.ParseString(catalog)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	sel, err := Compile("//title")
	if err != nil {
		t.Fatalf("fail to compile: %s", err)
	}
	var count int
	for item, err := range sel.Iter(doc) {
		if err != nil {
			t.Fatalf("iteration failed: %s", err)
		}
		if item.Atomic() {
			t.Fatalf("node item expected")
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("iteration should stop on demand, got %d", count)
	}
}

func TestSelectBuildsTree(t *testing.T) {
	doc, err := xml.ParseString(catalog)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	if xml.Indexed(doc) {
		t.Fatalf("fresh document should not be indexed")
	}
	if _, err := Select(doc, "//book"); err != nil {
		t.Fatalf("fail to select: %s", err)
	}
	if !xml.Indexed(doc) {
		t.Errorf("selection should index the tree")
	}
}

func TestSelectorConcurrent(t *testing.T) {
	doc, err := xml.ParseString(catalog)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	xml.BuildTree(doc)
	sel, err := Compile("count(//book)")
	if err != nil {
		t.Fatalf("fail to compile: %s", err)
	}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := sel.Select(doc)
			if err != nil {
				t.Errorf("fail to select: %s", err)
				return
			}
			if !matchValues(seq, []string{"3"}) {
				t.Errorf("count mismatched! got %q", seq.Stringify())
			}
		}()
	}
	wg.Wait()
}

func TestSelectFromElement(t *testing.T) {
	doc, err := xml.ParseString(catalog)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	xml.BuildTree(doc)
	seq, err := Find(doc, "/catalog/book[2]")
	if err != nil || seq.Empty() {
		t.Fatalf("fail to locate element: %v", err)
	}
	el := seq[0].Node()
	res, err := Find(el, "title")
	if err != nil {
		t.Fatalf("fail to select from element: %s", err)
	}
	if !matchValues(res, []string{"second"}) {
		t.Errorf("relative selection mismatched! got %q", res.Stringify())
	}
}
