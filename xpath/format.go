package xpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/angle/xml"
)

// Format reconstructs a canonical source form of an expression.
// Parsing the result yields the same tree, and formatting is
// idempotent: Format(parse(Format(e))) == Format(e).
func Format(expr Expr) string {
	return formatExpr(expr)
}

func formatExpr(expr Expr) string {
	switch e := expr.(type) {
	case root:
		return "/"
	case current:
		return "."
	case step:
		curr := formatExpr(e.curr)
		if curr == "/" {
			return "/" + formatExpr(e.next)
		}
		return curr + "/" + formatExpr(e.next)
	case axis:
		return e.kind + "::" + formatExpr(e.next)
	case name:
		return formatName(e)
	case kind:
		return formatKind(e)
	case literal:
		return strconv.Quote(e.expr)
	case number:
		return strconv.FormatFloat(e.expr, 'f', -1, 64)
	case sequence:
		var parts []string
		for i := range e.all {
			parts = append(parts, formatExpr(e.all[i]))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case rng:
		return group(formatExpr(e.left), "to", formatExpr(e.right))
	case binary:
		return group(formatExpr(e.left), formatOp(e.op), formatExpr(e.right))
	case logical:
		op := "or"
		if e.and {
			op = "and"
		}
		return group(formatExpr(e.left), op, formatExpr(e.right))
	case generalCmp:
		return group(formatExpr(e.left), formatOp(e.op), formatExpr(e.right))
	case valueCmp:
		return group(formatExpr(e.left), formatOp(e.op), formatExpr(e.right))
	case nodeCmp:
		return group(formatExpr(e.left), formatOp(e.op), formatExpr(e.right))
	case stringConcat:
		return group(formatExpr(e.left), "||", formatExpr(e.right))
	case union:
		var parts []string
		for i := range e.all {
			parts = append(parts, formatExpr(e.all[i]))
		}
		return "(" + strings.Join(parts, " | ") + ")"
	case intersect:
		return group(formatExpr(e.all[0]), "intersect", formatExpr(e.all[1]))
	case except:
		return group(formatExpr(e.all[0]), "except", formatExpr(e.all[1]))
	case filter:
		return formatExpr(e.expr) + "[" + formatExpr(e.check) + "]"
	case call:
		var parts []string
		for i := range e.args {
			parts = append(parts, formatExpr(e.args[i]))
		}
		return e.QualifiedName() + "(" + strings.Join(parts, ", ") + ")"
	case identifier:
		return "$" + e.ident
	case loop:
		return "(for " + formatBindings(e.binds, ":=", "in") + " return " + formatExpr(e.body) + ")"
	case let:
		return "(let " + formatBindings(e.binds, "in", ":=") + " return " + formatExpr(e.expr) + ")"
	case quantified:
		word := "some"
		if e.every {
			word = "every"
		}
		return "(" + word + " " + formatBindings(e.binds, ":=", "in") + " satisfies " + formatExpr(e.test) + ")"
	case conditional:
		return "(if (" + formatExpr(e.test) + ") then " + formatExpr(e.csq) + " else " + formatExpr(e.alt) + ")"
	case reverse:
		if e.plus {
			return "(+" + formatExpr(e.expr) + ")"
		}
		return "(-" + formatExpr(e.expr) + ")"
	case instanceof:
		return group(formatExpr(e.expr), "instance of", e.kind.String())
	case treat:
		return group(formatExpr(e.expr), "treat as", e.kind.String())
	case cast:
		return group(formatExpr(e.expr), "cast as", formatCastTarget(e.kind, e.some))
	case castable:
		return group(formatExpr(e.expr), "castable as", formatCastTarget(e.kind, e.some))
	case value:
		return "(" + e.seq.Stringify() + ")"
	default:
		return ""
	}
}

func group(left, op, right string) string {
	return "(" + left + " " + op + " " + right + ")"
}

func formatName(e name) string {
	if e.Space == "" && e.Name == "*" {
		return "*"
	}
	return e.QualifiedName()
}

func formatKind(e kind) string {
	t := SequenceType{
		Kind: e.kind,
		Name: xml.LocalName(e.target),
	}
	return t.String()
}

func formatCastTarget(t XdmType, some bool) string {
	str := t.Name().QualifiedName()
	if some {
		str += "?"
	}
	return str
}

func formatBindings(binds []binding, _, sep string) string {
	var parts []string
	for i := range binds {
		parts = append(parts, "$"+binds[i].ident+" "+sep+" "+formatExpr(binds[i].expr))
	}
	return strings.Join(parts, ", ")
}

func formatOp(op rune) string {
	switch op {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	case opDiv:
		return "div"
	case opIntDiv:
		return "idiv"
	case opMod:
		return "mod"
	case opEq:
		return "="
	case opNe:
		return "!="
	case opLt:
		return "<"
	case opLe:
		return "<="
	case opGt:
		return ">"
	case opGe:
		return ">="
	case opValEq:
		return "eq"
	case opValNe:
		return "ne"
	case opValLt:
		return "lt"
	case opValLe:
		return "le"
	case opValGt:
		return "gt"
	case opValGe:
		return "ge"
	case opIs:
		return "is"
	case opBefore:
		return "<<"
	case opAfter:
		return ">>"
	default:
		return "?"
	}
}

// Dump renders the tree of an expression, one node per line, for the
// cli debugger.
func Dump(expr Expr) string {
	var str strings.Builder
	dumpExpr(&str, expr, 0)
	return str.String()
}

func dumpExpr(str *strings.Builder, expr Expr, depth int) {
	prefix := strings.Repeat("  ", depth)
	write := func(format string, args ...any) {
		str.WriteString(prefix)
		fmt.Fprintf(str, format, args...)
		str.WriteString("\n")
	}
	switch e := expr.(type) {
	case root:
		write("root")
	case current:
		write("current")
	case step:
		write("step")
		dumpExpr(str, e.curr, depth+1)
		dumpExpr(str, e.next, depth+1)
	case axis:
		write("axis(%s)", e.kind)
		dumpExpr(str, e.next, depth+1)
	case name:
		write("name(%s)", formatName(e))
	case kind:
		write("kind(%s)", formatKind(e))
	case literal:
		write("literal(%s)", e.expr)
	case number:
		write("number(%s)", strconv.FormatFloat(e.expr, 'f', -1, 64))
	case sequence:
		write("sequence")
		for i := range e.all {
			dumpExpr(str, e.all[i], depth+1)
		}
	case rng:
		write("range")
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case binary:
		write("arithmetic(%s)", formatOp(e.op))
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case logical:
		if e.and {
			write("and")
		} else {
			write("or")
		}
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case generalCmp:
		write("compare(%s)", formatOp(e.op))
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case valueCmp:
		write("compare-value(%s)", formatOp(e.op))
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case nodeCmp:
		write("compare-node(%s)", formatOp(e.op))
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case stringConcat:
		write("concat")
		dumpExpr(str, e.left, depth+1)
		dumpExpr(str, e.right, depth+1)
	case union:
		write("union")
		for i := range e.all {
			dumpExpr(str, e.all[i], depth+1)
		}
	case intersect:
		write("intersect")
		for i := range e.all {
			dumpExpr(str, e.all[i], depth+1)
		}
	case except:
		write("except")
		for i := range e.all {
			dumpExpr(str, e.all[i], depth+1)
		}
	case filter:
		write("filter")
		dumpExpr(str, e.expr, depth+1)
		dumpExpr(str, e.check, depth+1)
	case call:
		write("call(%s)", e.QualifiedName())
		for i := range e.args {
			dumpExpr(str, e.args[i], depth+1)
		}
	case identifier:
		write("variable(%s)", e.ident)
	case loop:
		write("for")
		for i := range e.binds {
			write("  bind(%s)", e.binds[i].ident)
			dumpExpr(str, e.binds[i].expr, depth+2)
		}
		dumpExpr(str, e.body, depth+1)
	case let:
		write("let")
		for i := range e.binds {
			write("  bind(%s)", e.binds[i].ident)
			dumpExpr(str, e.binds[i].expr, depth+2)
		}
		dumpExpr(str, e.expr, depth+1)
	case quantified:
		if e.every {
			write("every")
		} else {
			write("some")
		}
		for i := range e.binds {
			write("  bind(%s)", e.binds[i].ident)
			dumpExpr(str, e.binds[i].expr, depth+2)
		}
		dumpExpr(str, e.test, depth+1)
	case conditional:
		write("if")
		dumpExpr(str, e.test, depth+1)
		dumpExpr(str, e.csq, depth+1)
		dumpExpr(str, e.alt, depth+1)
	case reverse:
		write("unary")
		dumpExpr(str, e.expr, depth+1)
	case instanceof:
		write("instance-of(%s)", e.kind)
		dumpExpr(str, e.expr, depth+1)
	case treat:
		write("treat-as(%s)", e.kind)
		dumpExpr(str, e.expr, depth+1)
	case cast:
		write("cast-as(%s)", formatCastTarget(e.kind, e.some))
		dumpExpr(str, e.expr, depth+1)
	case castable:
		write("castable-as(%s)", formatCastTarget(e.kind, e.some))
		dumpExpr(str, e.expr, depth+1)
	case value:
		write("value(%s)", e.seq.Stringify())
	default:
		write("unknown")
	}
}
