package xpath

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/midbel/angle/xml"
)

const prolog = `<?xml version="1.0" encoding="UTF-8"?>`

type evalCase struct {
	Expr   string
	Doc    string
	Names  []string
	Values []string
	Code   string
}

func TestEval(t *testing.T) {
	tests := []evalCase{
		{
			Expr:  "/A/B2/*",
			Doc:   `<A><B1/><B2><C1/><C2/><C3/></B2></A>`,
			Names: []string{"C1", "C2", "C3"},
		},
		{
			Expr:  "//C2",
			Doc:   `<A><B1/><B2><C1/><C2/><C3/></B2></A>`,
			Names: []string{"C2"},
		},
		{
			Expr:   "/r/x[@a>15]/@a",
			Doc:    `<r><x a="10"/><x a="20"/></r>`,
			Values: []string{"20"},
		},
		{
			Expr:   "count(/r/x)",
			Doc:    `<r><x/><x/><x/></r>`,
			Values: []string{"3"},
		},
		{
			Expr:   `concat("foo", " ", "bar")`,
			Values: []string{"foo bar"},
		},
		{
			Expr:  "/r/*[last()]",
			Doc:   `<r><a/><b/><c/></r>`,
			Names: []string{"c"},
		},
		{
			Expr:   "for $x in /r/* return name($x)",
			Doc:    `<r><a/><b/></r>`,
			Values: []string{"a", "b"},
		},
		{
			Expr:  "/root/item",
			Doc:   `<root><item>one</item><item>two</item></root>`,
			Names: []string{"item", "item"},
		},
		{
			Expr:   "/root/item[1]",
			Doc:    `<root><item>one</item><item>two</item></root>`,
			Values: []string{"one"},
		},
		{
			Expr:   "/root/item[position() > 1]",
			Doc:    `<root><item>one</item><item>two</item></root>`,
			Values: []string{"two"},
		},
		{
			Expr:   "/root/item[1.5]",
			Doc:    `<root><item>one</item><item>two</item></root>`,
			Values: nil,
		},
		{
			Expr:   `//item[text() = "two"]`,
			Doc:    `<root><item>one</item><item>two</item></root>`,
			Values: []string{"two"},
		},
		{
			Expr:  "/r/b/ancestor::*",
			Doc:   `<r><b><c/></b></r>`,
			Names: []string{"r"},
		},
		{
			Expr:  "/r/b/c/ancestor-or-self::*",
			Doc:   `<r><b><c/></b></r>`,
			Names: []string{"r", "b", "c"},
		},
		{
			Expr:  "/r/a/following-sibling::*",
			Doc:   `<r><a/><b/><c/></r>`,
			Names: []string{"b", "c"},
		},
		{
			Expr:  "/r/c/preceding-sibling::*[1]",
			Doc:   `<r><a/><b/><c/></r>`,
			Names: []string{"b"},
		},
		{
			Expr:  "/r/b/following::*",
			Doc:   `<r><a/><b/><x><y/></x></r>`,
			Names: []string{"x", "y"},
		},
		{
			Expr:  "/r/x/preceding::*",
			Doc:   `<r><a/><b/><x><y/></x></r>`,
			Names: []string{"a", "b"},
		},
		{
			Expr:  "//y/parent::x",
			Doc:   `<r><a/><b/><x><y/></x></r>`,
			Names: []string{"x"},
		},
		{
			Expr:  "(/r/a | /r/c | /r/a)",
			Doc:   `<r><a/><b/><c/></r>`,
			Names: []string{"a", "c"},
		},
		{
			Expr:  "(/r/* intersect /r/b)",
			Doc:   `<r><a/><b/><c/></r>`,
			Names: []string{"b"},
		},
		{
			Expr:  "(/r/* except /r/b)",
			Doc:   `<r><a/><b/><c/></r>`,
			Names: []string{"a", "c"},
		},
		{
			Expr:   "/r/a is /r/a",
			Doc:    `<r><a/><b/></r>`,
			Values: []string{"true"},
		},
		{
			Expr:   "/r/a << /r/b",
			Doc:    `<r><a/><b/></r>`,
			Values: []string{"true"},
		},
		{
			Expr:   "/r/b >> /r/a",
			Doc:    `<r><a/><b/></r>`,
			Values: []string{"true"},
		},
		{
			Expr:   "1 to 4",
			Values: []string{"1", "2", "3", "4"},
		},
		{
			Expr:   "(1, 2, (3, 4))",
			Values: []string{"1", "2", "3", "4"},
		},
		{
			Expr:   "()",
			Values: nil,
		},
		{
			Expr:   "2 + 3 * 4",
			Values: []string{"14"},
		},
		{
			Expr:   "7 idiv 2",
			Values: []string{"3"},
		},
		{
			Expr:   "7 mod 2",
			Values: []string{"1"},
		},
		{
			Expr:   "-(2 + 3)",
			Values: []string{"-5"},
		},
		{
			Expr:   `"a" eq "a"`,
			Values: []string{"true"},
		},
		{
			Expr:   "2 lt 10",
			Values: []string{"true"},
		},
		{
			Expr:   `"2" = 2`,
			Code:   CodeType,
			Values: nil,
		},
		{
			Expr:   "if (1 < 2) then 'yes' else 'no'",
			Values: []string{"yes"},
		},
		{
			Expr:   "some $x in (1, 2, 3) satisfies $x > 2",
			Values: []string{"true"},
		},
		{
			Expr:   "every $x in (1, 2, 3) satisfies $x > 2",
			Values: []string{"false"},
		},
		{
			Expr:   "for $x in (1, 2), $y in (10, 20) return $x * $y",
			Values: []string{"10", "20", "20", "40"},
		},
		{
			Expr:   "let $x := 2 return $x * $x",
			Values: []string{"4"},
		},
		{
			Expr:   `"15" cast as xs:integer`,
			Values: []string{"15"},
		},
		{
			Expr:   `"abc" castable as xs:integer`,
			Values: []string{"false"},
		},
		{
			Expr:   "(1, 2) instance of xs:integer+",
			Values: []string{"true"},
		},
		{
			Expr:   `"a" instance of xs:integer`,
			Values: []string{"false"},
		},
		{
			Expr:   "(1, 2) treat as xs:integer+",
			Values: []string{"1", "2"},
		},
		{
			Expr: "(1, 2) treat as xs:string+",
			Code: CodeTreatAs,
		},
		{
			Expr:   `"foo" || "bar"`,
			Values: []string{"foobar"},
		},
		{
			Expr:  "//b//d",
			Doc:   `<r><b><c><d/></c><d/></b></r>`,
			Names: []string{"d", "d"},
		},
		{
			Expr:  "/r/*/self::b",
			Doc:   `<r><a/><b/></r>`,
			Names: []string{"b"},
		},
		{
			Expr:  "//node()[self::text()]",
			Doc:   `<r><a>hello</a></r>`,
			Names: []string{""},
		},
		{
			Expr:  "//comment()",
			Doc:   `<r><!-- note --><a/></r>`,
			Names: []string{""},
		},
		{
			Expr:   "/r/a/namespace::xml",
			Doc:    `<r><a/></r>`,
			Values: []string{xml.XmlNS},
		},
	}
	for _, c := range tests {
		runEvalCase(t, c)
	}
}

func runEvalCase(t *testing.T, c evalCase) {
	t.Helper()
	q, err := Build(c.Expr)
	if err != nil {
		if c.Code != "" && ErrorCode(err) == c.Code {
			return
		}
		t.Errorf("%s: fail to compile expression: %s", c.Expr, err)
		return
	}
	var node xml.Node
	if c.Doc != "" {
		doc, err := xml.ParseString(prolog + c.Doc)
		if err != nil {
			t.Errorf("%s: fail to parse document: %s", c.Expr, err)
			return
		}
		node = doc
	}
	seq, err := q.Find(node)
	if c.Code != "" {
		if err == nil {
			t.Errorf("%s: error %s expected", c.Expr, c.Code)
		} else if code := ErrorCode(err); code != c.Code {
			t.Errorf("%s: error code mismatched! want %s, got %s (%s)", c.Expr, c.Code, code, err)
		}
		return
	}
	if err != nil {
		t.Errorf("%s: error evaluating expression: %s", c.Expr, err)
		return
	}
	if c.Names != nil {
		if !compareNames(seq, c.Names) {
			t.Errorf("%s: nodes mismatched! want %s, got %s", c.Expr, c.Names, names(seq))
		}
		return
	}
	if seq.Len() != len(c.Values) {
		t.Errorf("%s: number of items mismatched! want %d, got %d", c.Expr, len(c.Values), seq.Len())
		return
	}
	if !matchValues(seq, c.Values) {
		t.Errorf("%s: values mismatched! want %s, got %q", c.Expr, c.Values, seq.Stringify())
	}
}

func names(seq Sequence) []string {
	var list []string
	for i := range seq {
		if seq[i].Atomic() {
			list = append(list, "<atomic>")
			continue
		}
		list = append(list, seq[i].Node().LocalName())
	}
	return list
}

func compareNames(seq Sequence, want []string) bool {
	got := names(seq)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func matchValues(seq Sequence, values []string) bool {
	for i := range seq {
		var (
			val = seq[i].Value()
			str string
		)
		switch v := val.(type) {
		case time.Time:
			str = v.Format("2006-01-02")
		case float64:
			str = strconv.FormatFloat(v, 'f', -1, 64)
		case int64:
			str = strconv.FormatInt(v, 10)
		case bool:
			str = strconv.FormatBool(v)
		case string:
			str = v
		}
		if str != values[i] {
			return false
		}
	}
	return true
}

func TestEvalDocumentOrder(t *testing.T) {
	doc, err := xml.ParseString(prolog + `<r><a><b/><c/></a><d><e/></d></r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	seq, err := Find(doc, "//e | //b | //a")
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	var last int
	for i := range seq {
		pos := seq[i].Node().Position()
		if pos <= last {
			t.Errorf("document order violated at %d", i)
		}
		last = pos
	}
	if !compareNames(seq, []string{"a", "b", "e"}) {
		t.Errorf("union mismatched! got %s", names(seq))
	}
}

func TestEvalAxisSelfInverse(t *testing.T) {
	doc, err := xml.ParseString(prolog + `<r><a><b/></a><c/></r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	seq, err := Find(doc, "//*")
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	sel, err := Compile("child::*/parent::*")
	if err != nil {
		t.Fatalf("fail to compile: %s", err)
	}
	for i := range seq {
		el, ok := seq[i].Node().(*xml.Element)
		if !ok {
			continue
		}
		var children int
		for _, n := range el.Nodes {
			if n.Type() == xml.TypeElement {
				children++
			}
		}
		if children == 0 {
			continue
		}
		back, err := sel.Select(el)
		if err != nil {
			t.Fatalf("fail to evaluate inverse: %s", err)
		}
		if back.Len() != 1 || back[0].Node().Identity() != el.Identity() {
			t.Errorf("%s: child/parent round trip mismatched", el.Identity())
		}
	}
}

func TestEvalPredicateLaw(t *testing.T) {
	doc, err := xml.ParseString(prolog + `<r><x/><x/><x/><x/></r>`)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	for k := 1; k <= 5; k++ {
		var (
			direct  = "/r/x[" + strconv.Itoa(k) + "]"
			viaFunc = "/r/x[position() = " + strconv.Itoa(k) + "]"
		)
		s1, err := Find(doc, direct)
		if err != nil {
			t.Fatalf("%s: %s", direct, err)
		}
		s2, err := Find(doc, viaFunc)
		if err != nil {
			t.Fatalf("%s: %s", viaFunc, err)
		}
		if s1.Len() != s2.Len() {
			t.Errorf("predicate law broken for k=%d: %d vs %d", k, s1.Len(), s2.Len())
		}
	}
}

func TestEvalStableNow(t *testing.T) {
	q, err := Build("current-dateTime() eq current-dateTime()")
	if err != nil {
		t.Fatalf("fail to compile: %s", err)
	}
	seq, err := q.Find(nil)
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	if ok, _ := seq[0].Value().(bool); !ok {
		t.Errorf("current dateTime should be stable during one evaluation")
	}
}

func TestEvalMissingContext(t *testing.T) {
	tests := []string{
		"position()",
		"last()",
		".",
		"/a",
	}
	for _, str := range tests {
		q, err := Build(str)
		if err != nil {
			t.Errorf("%s: compile should absorb missing context: %s", str, err)
			continue
		}
		_, err = q.Find(nil)
		if !errors.Is(err, ErrMissingContext) {
			t.Errorf("%s: missing context error expected, got %v", str, err)
		}
		if code := ErrorCode(err); code != CodeNoContext {
			t.Errorf("%s: code mismatched! want %s, got %s", str, CodeNoContext, code)
		}
	}
}

func TestEvalVariables(t *testing.T) {
	seq, err := Select(nil, "$limit * 2", WithVariable("limit", 21.0))
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	if !matchValues(seq, []string{"42"}) {
		t.Errorf("variable mismatched! got %s", seq.Stringify())
	}
}

func TestEvalNamespaces(t *testing.T) {
	const doc = `<root xmlns:m="http://midbel.org/meta"><m:a/><a/></root>`
	d, err := xml.ParseString(prolog + doc)
	if err != nil {
		t.Fatalf("fail to parse document: %s", err)
	}
	seq, err := Select(d, "/root/m:a", WithNamespace("m", "http://midbel.org/meta"))
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	if seq.Len() != 1 {
		t.Fatalf("one node expected, got %d", seq.Len())
	}
	seq, err = Select(d, "/root/w:a", WithNamespace("w", "http://midbel.org/wrong"))
	if err != nil {
		t.Fatalf("fail to evaluate: %s", err)
	}
	if !seq.Empty() {
		t.Errorf("no node expected, got %d", seq.Len())
	}
}

func TestEvalEBV(t *testing.T) {
	tests := []struct {
		Expr string
		Want bool
	}{
		{Expr: "boolean(())", Want: false},
		{Expr: "boolean(0)", Want: false},
		{Expr: "boolean(0.0)", Want: false},
		{Expr: `boolean("")`, Want: false},
		{Expr: `boolean("x")`, Want: true},
		{Expr: "boolean(7)", Want: true},
		{Expr: "boolean(true())", Want: true},
		{Expr: "boolean(false())", Want: false},
	}
	for _, c := range tests {
		seq, err := Select(nil, c.Expr)
		if err != nil {
			t.Errorf("%s: fail to evaluate: %s", c.Expr, err)
			continue
		}
		got, _ := seq[0].Value().(bool)
		if got != c.Want {
			t.Errorf("%s: want %t, got %t", c.Expr, c.Want, got)
		}
	}
	if _, err := Select(nil, "boolean((1, 2))"); err == nil {
		t.Errorf("boolean((1, 2)): error expected")
	}
}
