package xpath

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/midbel/angle/environ"
	"github.com/midbel/angle/xml"
)

// BuiltinFunc is the shape of every function callable from an
// expression. Arguments come unevaluated so that a function can
// control the focus they run against.
type BuiltinFunc func(Context, []Expr) (Sequence, error)

var builtinEnv environ.Environ[BuiltinFunc]

func init() {
	builtinEnv = environ.Empty[BuiltinFunc]()
	all := map[string]BuiltinFunc{
		"name":             checkArity(0, 1, callName),
		"local-name":       checkArity(0, 1, callLocalName),
		"namespace-uri":    checkArity(0, 1, callNamespaceUri),
		"string":           checkArity(0, 1, callString),
		"concat":           checkArity(2, -1, callConcat),
		"starts-with":      checkArity(2, 2, callStartsWith),
		"ends-with":        checkArity(2, 2, callEndsWith),
		"contains":         checkArity(2, 2, callContains),
		"substring":        checkArity(2, 3, callSubstring),
		"substring-before": checkArity(2, 2, callSubstringBefore),
		"substring-after":  checkArity(2, 2, callSubstringAfter),
		"string-length":    checkArity(0, 1, callStringLength),
		"normalize-space":  checkArity(0, 1, callNormalizeSpace),
		"translate":        checkArity(3, 3, callTranslate),
		"upper-case":       checkArity(1, 1, callUpperCase),
		"lower-case":       checkArity(1, 1, callLowerCase),
		"string-join":      checkArity(1, 2, callStringJoin),
		"boolean":          checkArity(1, 1, callBoolean),
		"not":              checkArity(1, 1, callNot),
		"true":             checkArity(0, 0, callTrue),
		"false":            checkArity(0, 0, callFalse),
		"lang":             checkArity(1, 1, callLang),
		"number":           checkArity(0, 1, callNumber),
		"sum":              checkArity(1, 2, callSum),
		"floor":            checkArity(1, 1, callFloor),
		"ceiling":          checkArity(1, 1, callCeiling),
		"round":            checkArity(1, 1, callRound),
		"abs":              checkArity(1, 1, callAbs),
		"count":            checkArity(1, 1, callCount),
		"avg":              checkArity(1, 1, callAverage),
		"min":              checkArity(1, 1, callMin),
		"max":              checkArity(1, 1, callMax),
		"last":             checkArity(0, 0, callLast),
		"position":         checkArity(0, 0, callPosition),
		"id":               checkArity(1, 1, callId),
		"root":             checkArity(0, 1, callRoot),
		"empty":            checkArity(1, 1, callEmpty),
		"exists":           checkArity(1, 1, callExists),
		"distinct-values":  checkArity(1, 1, callDistinctValues),
		"reverse":          checkArity(1, 1, callReverse),
		"subsequence":      checkArity(2, 3, callSubsequence),
		"zero-or-one":      checkArity(1, 1, callZeroOrOne),
		"one-or-more":      checkArity(1, 1, callOneOrMore),
		"exactly-one":      checkArity(1, 1, callExactlyOne),
		"current-dateTime": checkArity(0, 0, callCurrentDateTime),
		"doc-available":    nil,
		"base-uri":         nil,
	}
	for n, fn := range all {
		builtinEnv.Define(n, fn)
	}
}

// DefaultBuiltin returns the standard function library; callers get a
// copy they can extend without touching the shared set.
func DefaultBuiltin() environ.Environ[BuiltinFunc] {
	c, ok := builtinEnv.(interface {
		Clone() environ.Environ[BuiltinFunc]
	})
	if ok {
		return c.Clone()
	}
	return builtinEnv
}

func checkArity(minArgs, maxArgs int, fn BuiltinFunc) BuiltinFunc {
	do := func(ctx Context, args []Expr) (Sequence, error) {
		if len(args) < minArgs || (maxArgs >= 0 && len(args) > maxArgs) {
			return nil, errorWithCode(CodeUnknownFunc, ErrArgument, "invalid number of argument(s)")
		}
		return fn(ctx, args)
	}
	return do
}

// constructorFunc makes a function out of an atomic type: xs:integer("4").
func constructorFunc(t XdmType) BuiltinFunc {
	return checkArity(1, 1, func(ctx Context, args []Expr) (Sequence, error) {
		item, empty, err := evalSingletonArg(args[0], ctx)
		if err != nil || empty {
			return nil, err
		}
		res, err := t.Cast(item.Value())
		if err != nil {
			return nil, err
		}
		return Singleton(res), nil
	})
}

func evalSingletonArg(arg Expr, ctx Context) (Item, bool, error) {
	is, err := arg.find(ctx)
	if err != nil {
		return nil, false, err
	}
	is = is.Atomize()
	if is.Empty() {
		return nil, true, nil
	}
	if !is.Singleton() {
		return nil, false, typeError("sequence of more than one item")
	}
	return is[0], false, nil
}

func argOrContext(ctx Context, args []Expr) (Sequence, error) {
	if len(args) == 0 {
		if ctx.Item() == nil {
			return nil, missingContext()
		}
		return Singleton(ctx.Item()), nil
	}
	return args[0].find(ctx)
}

func stringArg(arg Expr, ctx Context) (string, error) {
	item, empty, err := evalSingletonArg(arg, ctx)
	if err != nil || empty {
		return "", err
	}
	return toString(item.Value())
}

func floatArg(arg Expr, ctx Context) (float64, bool, error) {
	item, empty, err := evalSingletonArg(arg, ctx)
	if err != nil || empty {
		return 0, empty, err
	}
	f, err := toFloat(item.Value())
	return f, false, err
}

func callName(ctx Context, args []Expr) (Sequence, error) {
	node, err := nodeArg(ctx, args)
	if err != nil || node == nil {
		return Singleton(""), err
	}
	return Singleton(node.QualifiedName()), nil
}

func callLocalName(ctx Context, args []Expr) (Sequence, error) {
	node, err := nodeArg(ctx, args)
	if err != nil || node == nil {
		return Singleton(""), err
	}
	return Singleton(node.LocalName()), nil
}

func callNamespaceUri(ctx Context, args []Expr) (Sequence, error) {
	node, err := nodeArg(ctx, args)
	if err != nil || node == nil {
		return Singleton(""), err
	}
	return Singleton(nodeUri(node)), nil
}

func nodeArg(ctx Context, args []Expr) (xml.Node, error) {
	is, err := argOrContext(ctx, args)
	if err != nil {
		return nil, err
	}
	if is.Empty() {
		return nil, nil
	}
	if is[0].Atomic() {
		return nil, typeError("node expected")
	}
	return is[0].Node(), nil
}

func callString(ctx Context, args []Expr) (Sequence, error) {
	is, err := argOrContext(ctx, args)
	if err != nil {
		return nil, err
	}
	if is.Empty() {
		return Singleton(""), nil
	}
	str, err := toString(atomicItem(is[0]).Value())
	if err != nil {
		return nil, err
	}
	return Singleton(str), nil
}

func callConcat(ctx Context, args []Expr) (Sequence, error) {
	var str strings.Builder
	for i := range args {
		part, err := stringArg(args[i], ctx)
		if err != nil {
			return nil, err
		}
		str.WriteString(part)
	}
	return Singleton(str.String()), nil
}

func callStartsWith(ctx Context, args []Expr) (Sequence, error) {
	str, prefix, err := stringPair(ctx, args)
	if err != nil {
		return nil, err
	}
	return Singleton(strings.HasPrefix(str, prefix)), nil
}

func callEndsWith(ctx Context, args []Expr) (Sequence, error) {
	str, suffix, err := stringPair(ctx, args)
	if err != nil {
		return nil, err
	}
	return Singleton(strings.HasSuffix(str, suffix)), nil
}

func callContains(ctx Context, args []Expr) (Sequence, error) {
	str, sub, err := stringPair(ctx, args)
	if err != nil {
		return nil, err
	}
	return Singleton(strings.Contains(str, sub)), nil
}

func stringPair(ctx Context, args []Expr) (string, string, error) {
	left, err := stringArg(args[0], ctx)
	if err != nil {
		return "", "", err
	}
	right, err := stringArg(args[1], ctx)
	if err != nil {
		return "", "", err
	}
	return left, right, nil
}

func callSubstring(ctx Context, args []Expr) (Sequence, error) {
	str, err := stringArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	start, _, err := floatArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	var (
		runes = []rune(str)
		beg   = int(math.Round(start)) - 1
		end   = len(runes)
	)
	if len(args) > 2 {
		size, _, err := floatArg(args[2], ctx)
		if err != nil {
			return nil, err
		}
		end = beg + int(math.Round(size))
	}
	beg = max(beg, 0)
	end = min(end, len(runes))
	if beg >= end {
		return Singleton(""), nil
	}
	return Singleton(string(runes[beg:end])), nil
}

func callSubstringBefore(ctx Context, args []Expr) (Sequence, error) {
	str, sub, err := stringPair(ctx, args)
	if err != nil {
		return nil, err
	}
	before, _, ok := strings.Cut(str, sub)
	if !ok {
		before = ""
	}
	return Singleton(before), nil
}

func callSubstringAfter(ctx Context, args []Expr) (Sequence, error) {
	str, sub, err := stringPair(ctx, args)
	if err != nil {
		return nil, err
	}
	_, after, ok := strings.Cut(str, sub)
	if !ok {
		after = ""
	}
	return Singleton(after), nil
}

func callStringLength(ctx Context, args []Expr) (Sequence, error) {
	is, err := argOrContext(ctx, args)
	if err != nil {
		return nil, err
	}
	if is.Empty() {
		return Singleton(int64(0)), nil
	}
	str, err := toString(atomicItem(is[0]).Value())
	if err != nil {
		return nil, err
	}
	return Singleton(int64(len([]rune(str)))), nil
}

func callNormalizeSpace(ctx Context, args []Expr) (Sequence, error) {
	is, err := argOrContext(ctx, args)
	if err != nil {
		return nil, err
	}
	if is.Empty() {
		return Singleton(""), nil
	}
	str, err := toString(atomicItem(is[0]).Value())
	if err != nil {
		return nil, err
	}
	return Singleton(strings.Join(strings.Fields(str), " ")), nil
}

func callTranslate(ctx Context, args []Expr) (Sequence, error) {
	str, err := stringArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	from, err := stringArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	to, err := stringArg(args[2], ctx)
	if err != nil {
		return nil, err
	}
	var (
		out  strings.Builder
		dst  = []rune(to)
		keys = []rune(from)
	)
	for _, c := range str {
		ix := slices.Index(keys, c)
		if ix < 0 {
			out.WriteRune(c)
			continue
		}
		if ix < len(dst) {
			out.WriteRune(dst[ix])
		}
	}
	return Singleton(out.String()), nil
}

func callUpperCase(ctx Context, args []Expr) (Sequence, error) {
	str, err := stringArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(strings.ToUpper(str)), nil
}

func callLowerCase(ctx Context, args []Expr) (Sequence, error) {
	str, err := stringArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(strings.ToLower(str)), nil
}

func callStringJoin(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	var sep string
	if len(args) > 1 {
		if sep, err = stringArg(args[1], ctx); err != nil {
			return nil, err
		}
	}
	var list []string
	for _, i := range is.Atomize() {
		str, err := toString(i.Value())
		if err != nil {
			return nil, err
		}
		list = append(list, str)
	}
	return Singleton(strings.Join(list, sep)), nil
}

func callBoolean(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := EffectiveBooleanValue(is)
	if err != nil {
		return nil, err
	}
	return Singleton(ok), nil
}

func callNot(ctx Context, args []Expr) (Sequence, error) {
	is, err := callBoolean(ctx, args)
	if err != nil {
		return nil, err
	}
	ok, _ := is[0].Value().(bool)
	return Singleton(!ok), nil
}

func callTrue(_ Context, _ []Expr) (Sequence, error) {
	return Singleton(true), nil
}

func callFalse(_ Context, _ []Expr) (Sequence, error) {
	return Singleton(false), nil
}

func callLang(ctx Context, args []Expr) (Sequence, error) {
	want, err := stringArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	node := ctx.Node()
	if node == nil {
		return nil, missingContext()
	}
	for curr := node; curr != nil; curr = curr.Parent() {
		el, ok := curr.(*xml.Element)
		if !ok {
			continue
		}
		ix := slices.IndexFunc(el.Attrs, func(a *xml.Attribute) bool {
			return a.Space == "xml" && a.Name == "lang"
		})
		if ix < 0 {
			continue
		}
		var (
			got  = strings.ToLower(el.Attrs[ix].Value())
			lang = strings.ToLower(want)
		)
		ok = got == lang || strings.HasPrefix(got, lang+"-")
		return Singleton(ok), nil
	}
	return Singleton(false), nil
}

func callNumber(ctx Context, args []Expr) (Sequence, error) {
	is, err := argOrContext(ctx, args)
	if err != nil {
		return nil, err
	}
	if is.Empty() {
		return Singleton(math.NaN()), nil
	}
	f, err := toFloat(atomicItem(is[0]).Value())
	if err != nil {
		return Singleton(math.NaN()), nil
	}
	return Singleton(f), nil
}

func callSum(ctx Context, args []Expr) (Sequence, error) {
	values, err := floatValues(args[0], ctx)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, f := range values {
		sum += f
	}
	return Singleton(sum), nil
}

func callAverage(ctx Context, args []Expr) (Sequence, error) {
	values, err := floatValues(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	var sum float64
	for _, f := range values {
		sum += f
	}
	return Singleton(sum / float64(len(values))), nil
}

func callMin(ctx Context, args []Expr) (Sequence, error) {
	values, err := floatValues(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return Singleton(slices.Min(values)), nil
}

func callMax(ctx Context, args []Expr) (Sequence, error) {
	values, err := floatValues(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return Singleton(slices.Max(values)), nil
}

func floatValues(arg Expr, ctx Context) ([]float64, error) {
	is, err := arg.find(ctx)
	if err != nil {
		return nil, err
	}
	var values []float64
	for _, i := range is.Atomize() {
		f, err := toFloat(i.Value())
		if err != nil {
			return nil, err
		}
		values = append(values, f)
	}
	return values, nil
}

func callFloor(ctx Context, args []Expr) (Sequence, error) {
	return callMath(ctx, args, math.Floor)
}

func callCeiling(ctx Context, args []Expr) (Sequence, error) {
	return callMath(ctx, args, math.Ceil)
}

func callRound(ctx Context, args []Expr) (Sequence, error) {
	return callMath(ctx, args, math.Round)
}

func callAbs(ctx Context, args []Expr) (Sequence, error) {
	return callMath(ctx, args, math.Abs)
}

func callMath(ctx Context, args []Expr, do func(float64) float64) (Sequence, error) {
	f, empty, err := floatArg(args[0], ctx)
	if err != nil || empty {
		return nil, err
	}
	return Singleton(do(f)), nil
}

func callCount(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(int64(is.Len())), nil
}

func callLast(ctx Context, _ []Expr) (Sequence, error) {
	if ctx.Item() == nil {
		return nil, missingContext()
	}
	return Singleton(int64(ctx.Size)), nil
}

func callPosition(ctx Context, _ []Expr) (Sequence, error) {
	if ctx.Item() == nil {
		return nil, missingContext()
	}
	return Singleton(int64(ctx.Index)), nil
}

func callId(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	var wanted []string
	for _, i := range is.Atomize() {
		str, err := toString(i.Value())
		if err != nil {
			return nil, err
		}
		wanted = append(wanted, strings.Fields(str)...)
	}
	root, err := ctx.Root()
	if err != nil {
		return nil, err
	}
	var res Sequence
	for n := range iterDescendant(root, true) {
		el, ok := n.(*xml.Element)
		if !ok {
			continue
		}
		a := el.GetAttribute("id")
		if a != nil && slices.Contains(wanted, a.Value()) {
			res.Append(createNode(el))
		}
	}
	return res.Sorted(), nil
}

func callRoot(ctx Context, args []Expr) (Sequence, error) {
	node, err := nodeArg(ctx, args)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, missingContext()
	}
	return Singleton(xml.Root(node)), nil
}

func callEmpty(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(is.Empty()), nil
}

func callExists(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(!is.Empty()), nil
}

func callDistinctValues(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	var (
		res  Sequence
		seen = make(map[string]struct{})
	)
	for _, i := range is.Atomize() {
		str, err := toString(i.Value())
		if err != nil {
			return nil, err
		}
		if _, ok := seen[str]; ok {
			continue
		}
		seen[str] = struct{}{}
		res.Append(i)
	}
	return res, nil
}

func callReverse(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	res := slices.Clone(is)
	slices.Reverse(res)
	return res, nil
}

func callSubsequence(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	start, _, err := floatArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	var (
		beg = int(math.Round(start)) - 1
		end = is.Len()
	)
	if len(args) > 2 {
		size, _, err := floatArg(args[2], ctx)
		if err != nil {
			return nil, err
		}
		end = beg + int(math.Round(size))
	}
	beg = max(beg, 0)
	end = min(end, is.Len())
	if beg >= end {
		return nil, nil
	}
	return slices.Clone(is[beg:end]), nil
}

func callZeroOrOne(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	if is.Len() > 1 {
		return nil, typeError("more than one item")
	}
	return is, nil
}

func callOneOrMore(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	if is.Empty() {
		return nil, typeError("empty sequence")
	}
	return is, nil
}

func callExactlyOne(ctx Context, args []Expr) (Sequence, error) {
	is, err := args[0].find(ctx)
	if err != nil {
		return nil, err
	}
	if !is.Singleton() {
		return nil, typeError(fmt.Sprintf("exactly one item expected, got %d", is.Len()))
	}
	return is, nil
}

func callCurrentDateTime(ctx Context, _ []Expr) (Sequence, error) {
	return Singleton(ctx.Now.In(ctx.Timezone)), nil
}
