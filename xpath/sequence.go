package xpath

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/midbel/angle/xml"
)

// Item is a member of a sequence: a node or an atomic value.
type Item interface {
	Node() xml.Node
	Value() any
	True() bool
	Atomic() bool
}

type Sequence []Item

func NewSequence() Sequence {
	var seq Sequence
	return seq
}

func Singleton(value any) Sequence {
	var item Item
	switch value := value.(type) {
	case xml.Node:
		item = createNode(value)
	case Item:
		item = value
	default:
		item = createLiteral(value)
	}
	var seq Sequence
	seq.Append(item)
	return seq
}

func (s *Sequence) First() Item {
	if s.Empty() {
		return nil
	}
	return (*s)[0]
}

func (s *Sequence) Len() int {
	return len(*s)
}

func (s *Sequence) Append(item Item) {
	*s = append(*s, item)
}

func (s *Sequence) Concat(other Sequence) {
	*s = slices.Concat(*s, other)
}

func (s *Sequence) Empty() bool {
	return len(*s) == 0
}

func (s *Sequence) Singleton() bool {
	return len(*s) == 1
}

func (s *Sequence) True() bool {
	ok, _ := EffectiveBooleanValue(*s)
	return ok
}

// Nodes reports whether every item of the sequence is a node.
func (s *Sequence) Nodes() bool {
	for i := range *s {
		if (*s)[i].Atomic() {
			return false
		}
	}
	return true
}

// Sorted returns the sequence in document order without duplicate
// nodes. Sequences holding atomic items are returned unchanged.
func (s *Sequence) Sorted() Sequence {
	if !s.Nodes() {
		return *s
	}
	seq := slices.Clone(*s)
	slices.SortStableFunc(seq, func(a, b Item) int {
		return a.Node().Position() - b.Node().Position()
	})
	var (
		res  Sequence
		seen = make(map[string]struct{})
	)
	for _, i := range seq {
		id := i.Node().Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res.Append(i)
	}
	return res
}

// Atomize projects the sequence to its typed values, unwrapping nodes
// to their untyped string value.
func (s *Sequence) Atomize() Sequence {
	var seq Sequence
	for _, i := range *s {
		seq.Append(atomicItem(i))
	}
	return seq
}

func (s *Sequence) Every(test func(i Item) bool) bool {
	for i := range *s {
		if !test((*s)[i]) {
			return false
		}
	}
	return true
}

// EffectiveBooleanValue implements the xpath boolean rules: an empty
// sequence is false, a sequence starting with a node is true, a
// singleton atomic follows its type rules, anything else has no
// boolean value.
func EffectiveBooleanValue(seq Sequence) (bool, error) {
	if seq.Empty() {
		return false, nil
	}
	if !seq[0].Atomic() {
		return true, nil
	}
	if !seq.Singleton() {
		return false, booleanError()
	}
	switch x := seq[0].Value().(type) {
	case string:
		return x != "", nil
	case float64:
		return x != 0 && !math.IsNaN(x), nil
	case int64:
		return x != 0, nil
	case bool:
		return x, nil
	default:
		return false, booleanError()
	}
}

func isTrue(list Sequence) bool {
	return list.True()
}

type literalItem struct {
	value   any
	untyped bool
}

func NewLiteralItem(value any) Item {
	return createLiteral(value)
}

func createLiteral(value any) Item {
	if i, ok := value.(literalItem); ok {
		return i
	}
	return literalItem{
		value: value,
	}
}

func createUntyped(value string) Item {
	return literalItem{
		value:   value,
		untyped: true,
	}
}

func (i literalItem) Atomic() bool {
	return true
}

func (i literalItem) Untyped() bool {
	return i.untyped
}

func (i literalItem) True() bool {
	switch v := i.value.(type) {
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int64:
		return v != 0
	case string:
		return v != ""
	case bool:
		return v
	case time.Time:
		return !v.IsZero()
	default:
		return false
	}
}

func (i literalItem) Node() xml.Node {
	str, _ := toString(i.value)
	return xml.NewText(str)
}

func (i literalItem) Value() any {
	return i.value
}

type nodeItem struct {
	node xml.Node
}

func NewNodeItem(node xml.Node) Item {
	return createNode(node)
}

func createNode(node xml.Node) Item {
	return nodeItem{
		node: node,
	}
}

func (i nodeItem) Atomic() bool {
	return false
}

func (i nodeItem) Node() xml.Node {
	return i.node
}

func (i nodeItem) True() bool {
	return true
}

func (i nodeItem) Value() any {
	return i.node.Value()
}

// atomicItem unwraps a node to its untyped string value; atomic items
// pass through.
func atomicItem(item Item) Item {
	if item.Atomic() {
		return item
	}
	return createUntyped(item.Node().Value())
}

func isUntyped(item Item) bool {
	u, ok := item.(interface{ Untyped() bool })
	return ok && u.Untyped()
}

func isNumeric(item Item) bool {
	switch item.Value().(type) {
	case float64, int64:
		return true
	default:
		return false
	}
}

// Stringify renders a sequence the way the cli prints results.
func (s *Sequence) Stringify() string {
	var str strings.Builder
	for i := range *s {
		if i > 0 {
			str.WriteString(" ")
		}
		switch x := (*s)[i].Value().(type) {
		case string:
			str.WriteString(x)
		case float64:
			str.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
		case int64:
			str.WriteString(strconv.FormatInt(x, 10))
		case bool:
			str.WriteString(strconv.FormatBool(x))
		case time.Time:
			str.WriteString(x.Format(time.RFC3339))
		default:
		}
	}
	return str.String()
}
