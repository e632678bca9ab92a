package xpath

import (
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []string{
		"/root",
		"/root/item",
		"//item",
		"/root/item[1]",
		"/root/item[last()]",
		"/root/item[position() >= 2]",
		"item",
		"./item",
		"../item",
		"@id",
		"@*",
		"*",
		"ns:item",
		"*:item",
		"ns:*",
		"child::item/descendant-or-self::node()",
		"ancestor::*[1]",
		"text()",
		"comment()",
		"processing-instruction('style')",
		"element(item)",
		"attribute(id)",
		"document-node()",
		"count(/root/item) + 1",
		"concat('a', 'b', 'c')",
		"1 + 2 * 3 - 4 div 5 mod 6",
		"7 idiv 2",
		"1 = 1 and 2 != 3 or 4 < 5",
		"1 eq 1 and 2 le 3",
		"/a is /b",
		"/a << /b",
		"(1, 2, 3)",
		"()",
		"1 to 10",
		"(/a | /b | /c)",
		"/a intersect /b",
		"/a except /b",
		"for $x in (1, 2) return $x",
		"for $x in (1, 2), $y in (3, 4) return $x + $y",
		"let $x := 1 return $x",
		"some $x in (1, 2) satisfies $x = 1",
		"every $x in (1, 2) satisfies $x > 0",
		"if (1) then 2 else 3",
		"5 instance of xs:integer",
		"5 instance of xs:integer?",
		"(1, 2) instance of item()*",
		"() instance of empty-sequence()",
		"'4' cast as xs:integer",
		"'4' cast as xs:integer?",
		"'4' castable as xs:date",
		"(1, 2) treat as xs:integer+",
		"'a' || 'b'",
		"(: leading comment :) /root",
		"/root (: trailing (: nested :) comment :)",
		"$var + 1",
	}
	for _, str := range tests {
		_, err := BuildWith(str, WithVariable("var", 1.0), WithNamespace("ns", "http://midbel.org/ns"))
		if err != nil {
			t.Errorf("%s: fail to compile expression: %s", str, err)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		Expr string
		Code string
	}{
		{Expr: "", Code: CodeSyntax},
		{Expr: "/root/", Code: CodeSyntax},
		{Expr: "1 +", Code: CodeSyntax},
		{Expr: "f(1,)", Code: CodeSyntax},
		{Expr: "[1]", Code: CodeSyntax},
		{Expr: "/root/item[", Code: CodeSyntax},
		{Expr: "unknown::item", Code: CodeSyntax},
		{Expr: "1 + 'a'", Code: CodeType},
		{Expr: "'a' - 1", Code: CodeType},
		{Expr: "$nope", Code: CodeUndefinedVar},
		{Expr: "nope:item", Code: CodeUnknownPrefix},
		{Expr: "unknown-function()", Code: CodeUnknownFunc},
		{Expr: "count()", Code: CodeUnknownFunc},
		{Expr: "count(1, 2)", Code: CodeUnknownFunc},
		{Expr: "true(1)", Code: CodeUnknownFunc},
		{Expr: "5 cast as xs:nope", Code: CodeStaticType},
		{Expr: "1 div 0", Code: CodeArithmetic},
	}
	for _, c := range tests {
		_, err := Build(c.Expr)
		if err == nil {
			t.Errorf("%s: error expected", c.Expr)
			continue
		}
		if code := ErrorCode(err); code != c.Code {
			t.Errorf("%s: code mismatched! want %s, got %s (%s)", c.Expr, c.Code, code, err)
		}
	}
}

func TestCompileVersions(t *testing.T) {
	xp2only := []string{
		"(1, 2)",
		"1 eq 1",
		"for $x in (1) return $x",
		"some $x in (1) satisfies $x",
		"if (1) then 2 else 3",
		"5 instance of xs:integer",
		"'4' cast as xs:integer",
		"1 to 3",
		"/a intersect /b",
	}
	for _, str := range xp2only {
		if _, err := Build(str); err != nil {
			t.Errorf("%s: should compile with xpath 2.0: %s", str, err)
		}
		if _, err := BuildWith(str, WithVersion(Xpath1)); err == nil {
			t.Errorf("%s: should not compile with xpath 1.0", str)
		}
	}
	xp1 := []string{
		"/root/item[1]",
		"//item[@id='x']",
		"count(/root/item)",
		"1 + 2 * 3",
		"a and b or c",
		"(/a | /b)",
	}
	for _, str := range xp1 {
		if _, err := BuildWith(str, WithVersion(Xpath1)); err != nil {
			t.Errorf("%s: should compile with xpath 1.0: %s", str, err)
		}
	}
}

func TestCompileCanonical(t *testing.T) {
	tests := []string{
		"/root/item[1]",
		"//item",
		"1 + 2 * 3",
		"/a | /b",
		"for $x in (1, 2) return $x + 1",
		"if (1 < 2) then 'a' else 'b'",
		"some $x in (1, 2) satisfies $x eq 1",
		"5 instance of xs:integer?",
		"'4' cast as xs:integer",
		"@id",
		"../*",
		"text()",
		"processing-instruction('style')",
		"-3",
		"'a' || 'b'",
		"1 to 3",
		"/a is /b",
	}
	for _, str := range tests {
		q, err := Build(str)
		if err != nil {
			t.Errorf("%s: fail to compile expression: %s", str, err)
			continue
		}
		canon := q.Source()
		again, err := Build(canon)
		if err != nil {
			t.Errorf("%s: canonical form %q does not parse: %s", str, canon, err)
			continue
		}
		if again.Source() != canon {
			t.Errorf("%s: canonical form not idempotent: %q then %q", str, canon, again.Source())
		}
	}
}

func TestCompileTwoWordOperators(t *testing.T) {
	tests := []string{
		"5 instance  of xs:integer",
		"'4' cast as xs:integer",
		"'4' castable as xs:decimal",
		"(1) treat as xs:integer*",
	}
	for _, str := range tests {
		if _, err := Build(str); err != nil {
			t.Errorf("%s: fail to compile expression: %s", str, err)
		}
	}
	// instance and cast stay plain names without their second word
	if _, err := Build("/instance/cast"); err != nil {
		t.Errorf("keywords should not be reserved outside their operator: %s", err)
	}
}
