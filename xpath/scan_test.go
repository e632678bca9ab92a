package xpath

import (
	"strings"
	"testing"
)

func scanAll(str string, keywords map[string]keyword) []Token {
	var (
		scan = ScanWith(strings.NewReader(str), keywords)
		list []Token
	)
	for {
		tok := scan.Scan()
		list = append(list, tok)
		if tok.Type == EOF || tok.Type == Invalid {
			return list
		}
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		Input string
		Want  []rune
	}{
		{
			Input: "/root/item[1]",
			Want:  []rune{currLevel, Name, currLevel, Name, begPred, Digit, endPred},
		},
		{
			Input: "//item[@id = 'x']",
			Want:  []rune{anyLevel, Name, begPred, attrNode, opEq, Literal, endPred},
		},
		{
			Input: "child::node()",
			Want:  []rune{Name, opAxis, Name, begGrp, endGrp},
		},
		{
			Input: "ns:item",
			Want:  []rune{Name, Namespace, Name},
		},
		{
			Input: "1.5e2 + $var",
			Want:  []rune{Digit, opAdd, variable},
		},
		{
			Input: ". .. << >> != <= >= || |",
			Want:  []rune{currNode, parentNode, opBefore, opAfter, opNe, opLe, opGe, opConcat, opUnion},
		},
		{
			Input: "$x := 2",
			Want:  []rune{variable, opAssign, Digit},
		},
		{
			Input: "(: comment (: nested :) :) 1",
			Want:  []rune{Digit},
		},
	}
	for _, c := range tests {
		got := scanAll(c.Input, nil)
		if got[len(got)-1].Type != EOF {
			t.Errorf("%s: scan ended on %s", c.Input, got[len(got)-1])
			continue
		}
		got = got[:len(got)-1]
		if len(got) != len(c.Want) {
			t.Errorf("%s: token count mismatched! want %d, got %d", c.Input, len(c.Want), len(got))
			continue
		}
		for i := range got {
			if got[i].Type != c.Want[i] {
				t.Errorf("%s: token %d mismatched! got %s", c.Input, i, got[i])
			}
		}
	}
}

func TestScanKeywords(t *testing.T) {
	var (
		kw1 = xpath1Registry().keywords
		kw2 = xpath2Registry().keywords
	)
	toks := scanAll("for $x in e return $x", kw2)
	want := []rune{opFor, variable, opIn, Name, opReturn, variable, EOF}
	for i := range want {
		if toks[i].Type != want[i] {
			t.Fatalf("token %d mismatched! got %s", i, toks[i])
		}
	}
	// the 1.0 scanner does not reserve the 2.0 keywords
	toks = scanAll("for", kw1)
	if toks[0].Type != Name {
		t.Errorf("for should stay a name with the 1.0 keyword table, got %s", toks[0])
	}

	toks = scanAll("5 instance of xs:integer", kw2)
	if toks[1].Type != opInstanceOf {
		t.Errorf("instance of should scan as one operator, got %s", toks[1])
	}
	toks = scanAll("instance", kw2)
	if toks[0].Type != Name {
		t.Errorf("instance without of should stay a name, got %s", toks[0])
	}
}

func TestScanPositions(t *testing.T) {
	toks := scanAll("a +\nb", nil)
	if toks[0].Line != 1 {
		t.Errorf("first token line mismatched! got %d", toks[0].Line)
	}
	last := toks[len(toks)-2]
	if last.Line != 2 {
		t.Errorf("token on second line mismatched! got %d", last.Line)
	}
}
