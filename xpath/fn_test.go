package xpath

import (
	"errors"
	"testing"

	"github.com/midbel/angle/xml"
)

func TestFunctions(t *testing.T) {
	tests := []evalCase{
		{Expr: `string(3.5)`, Values: []string{"3.5"}},
		{Expr: `string-length("hello")`, Values: []string{"5"}},
		{Expr: `starts-with("hello", "he")`, Values: []string{"true"}},
		{Expr: `ends-with("hello", "lo")`, Values: []string{"true"}},
		{Expr: `contains("hello", "ell")`, Values: []string{"true"}},
		{Expr: `substring("hello", 2)`, Values: []string{"ello"}},
		{Expr: `substring("hello", 2, 3)`, Values: []string{"ell"}},
		{Expr: `substring-before("a=b", "=")`, Values: []string{"a"}},
		{Expr: `substring-after("a=b", "=")`, Values: []string{"b"}},
		{Expr: `normalize-space("  a   b  ")`, Values: []string{"a b"}},
		{Expr: `translate("bar", "abc", "ABC")`, Values: []string{"BAr"}},
		{Expr: `translate("--aaa--", "abc-", "ABC")`, Values: []string{"AAA"}},
		{Expr: `upper-case("mix")`, Values: []string{"MIX"}},
		{Expr: `lower-case("MIX")`, Values: []string{"mix"}},
		{Expr: `string-join(("a", "b", "c"), "-")`, Values: []string{"a-b-c"}},
		{Expr: `not(false())`, Values: []string{"true"}},
		{Expr: `number("3.5") + 1`, Values: []string{"4.5"}},
		{Expr: `sum((1, 2, 3))`, Values: []string{"6"}},
		{Expr: `avg((2, 4))`, Values: []string{"3"}},
		{Expr: `min((3, 1, 2))`, Values: []string{"1"}},
		{Expr: `max((3, 1, 2))`, Values: []string{"3"}},
		{Expr: `floor(1.7)`, Values: []string{"1"}},
		{Expr: `ceiling(1.2)`, Values: []string{"2"}},
		{Expr: `round(1.5)`, Values: []string{"2"}},
		{Expr: `abs(-4)`, Values: []string{"4"}},
		{Expr: `empty(())`, Values: []string{"true"}},
		{Expr: `exists(())`, Values: []string{"false"}},
		{Expr: `distinct-values((1, 2, 1, 3))`, Values: []string{"1", "2", "3"}},
		{Expr: `reverse((1, 2, 3))`, Values: []string{"3", "2", "1"}},
		{Expr: `subsequence((1, 2, 3, 4), 2, 2)`, Values: []string{"2", "3"}},
		{Expr: `exactly-one((7))`, Values: []string{"7"}},
		{Expr: `zero-or-one(())`, Values: nil},
		{Expr: `string-join(("a", "b"))`, Values: []string{"ab"}},
	}
	for _, c := range tests {
		runEvalCase(t, c)
	}
}

func TestFunctionsOnNodes(t *testing.T) {
	tests := []evalCase{
		{
			Expr:   `name(/r/ns:a)`,
			Doc:    `<r xmlns:ns="http://midbel.org/ns"><ns:a/></r>`,
			Values: []string{"ns:a"},
		},
		{
			Expr:   `local-name(/r/ns:a)`,
			Doc:    `<r xmlns:ns="http://midbel.org/ns"><ns:a/></r>`,
			Values: []string{"a"},
		},
		{
			Expr:   `namespace-uri(/r/ns:a)`,
			Doc:    `<r xmlns:ns="http://midbel.org/ns"><ns:a/></r>`,
			Values: []string{"http://midbel.org/ns"},
		},
		{
			Expr:   `string(/r)`,
			Doc:    `<r><a>one</a><b>two</b></r>`,
			Values: []string{"onetwo"},
		},
		{
			Expr:  `id("two")`,
			Doc:   `<r><x id="one"/><x id="two"/></r>`,
			Names: []string{"x"},
		},
		{
			Expr:  `//b/root()`,
			Doc:   `<r><b/></r>`,
			Names: []string{""},
		},
		{
			Expr:   `//text()[lang("en")]`,
			Doc:    `<r xml:lang="en"><a>yes</a></r>`,
			Values: []string{"yes"},
		},
		{
			Expr:   `sum(/r/x/@v)`,
			Doc:    `<r><x v="1"/><x v="2"/></r>`,
			Values: []string{"3"},
		},
	}
	for _, c := range tests {
		q, err := BuildWith(c.Expr, WithNamespace("ns", "http://midbel.org/ns"))
		if err != nil {
			t.Errorf("%s: fail to compile expression: %s", c.Expr, err)
			continue
		}
		doc, err := xml.ParseString(prolog + c.Doc)
		if err != nil {
			t.Errorf("%s: fail to parse document: %s", c.Expr, err)
			continue
		}
		seq, err := q.Find(doc)
		if err != nil {
			t.Errorf("%s: error evaluating expression: %s", c.Expr, err)
			continue
		}
		if c.Names != nil {
			if !compareNames(seq, c.Names) {
				t.Errorf("%s: nodes mismatched! want %s, got %s", c.Expr, c.Names, names(seq))
			}
			continue
		}
		if seq.Len() != len(c.Values) || !matchValues(seq, c.Values) {
			t.Errorf("%s: values mismatched! want %s, got %q", c.Expr, c.Values, seq.Stringify())
		}
	}
}

func TestFunctionNotImplemented(t *testing.T) {
	q, err := Build("doc-available('x')")
	if err != nil {
		t.Fatalf("declared function should compile: %s", err)
	}
	_, err = q.Find(nil)
	if !errors.Is(err, ErrImplemented) {
		t.Errorf("graceful refusal expected, got %v", err)
	}
}

func TestConstructorFunctions(t *testing.T) {
	proxy := NewSimpleProxy()
	q, err := BuildWith("xs:integer('42') + 1", WithSchema(proxy), WithConstructors())
	if err != nil {
		t.Fatalf("fail to compile: %s", err)
	}
	seq, err := q.Find(nil)
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	if !matchValues(seq, []string{"43"}) {
		t.Errorf("constructor mismatched! got %s", seq.Stringify())
	}
}
