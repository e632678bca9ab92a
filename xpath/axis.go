package xpath

import (
	"fmt"
	"iter"
	"slices"

	"github.com/midbel/angle/xml"
)

const (
	childAxis          = "child"
	parentAxis         = "parent"
	selfAxis           = "self"
	ancestorAxis       = "ancestor"
	ancestorSelfAxis   = "ancestor-or-self"
	descendantAxis     = "descendant"
	descendantSelfAxis = "descendant-or-self"
	prevAxis           = "preceding"
	prevSiblingAxis    = "preceding-sibling"
	nextAxis           = "following"
	nextSiblingAxis    = "following-sibling"
	attrAxis           = "attribute"
	spaceAxis          = "namespace"
)

func isAxis(name string) bool {
	switch name {
	case childAxis, parentAxis, selfAxis:
	case ancestorAxis, ancestorSelfAxis:
	case descendantAxis, descendantSelfAxis:
	case prevAxis, prevSiblingAxis:
	case nextAxis, nextSiblingAxis:
	case attrAxis, spaceAxis:
	default:
		return false
	}
	return true
}

// isReverse reports the axes whose natural order is reverse document
// order. Their results are re-sorted at path output.
func isReverse(name string) bool {
	switch name {
	case parentAxis, ancestorAxis, ancestorSelfAxis, prevAxis, prevSiblingAxis:
		return true
	default:
		return false
	}
}

// iterAxis traverses the given axis from node lazily, in axis order.
func iterAxis(kind string, node xml.Node) (iter.Seq[xml.Node], error) {
	switch kind {
	case selfAxis:
		return iterSelf(node), nil
	case childAxis:
		return iterChild(node), nil
	case parentAxis:
		return iterParent(node), nil
	case ancestorAxis:
		return iterAncestor(node, false), nil
	case ancestorSelfAxis:
		return iterAncestor(node, true), nil
	case descendantAxis:
		return iterDescendant(node, false), nil
	case descendantSelfAxis:
		return iterDescendant(node, true), nil
	case nextSiblingAxis:
		return iterNextSibling(node), nil
	case prevSiblingAxis:
		return iterPrevSibling(node), nil
	case nextAxis:
		return iterNext(node), nil
	case prevAxis:
		return iterPrev(node), nil
	case attrAxis:
		return iterAttribute(node), nil
	case spaceAxis:
		return iterNamespace(node), nil
	default:
		return nil, fmt.Errorf("%s: %w axis", kind, ErrImplemented)
	}
}

// axisNodes materializes an axis traversal, giving predicates a focus
// size to work with.
func axisNodes(kind string, node xml.Node) ([]xml.Node, error) {
	it, err := iterAxis(kind, node)
	if err != nil {
		return nil, err
	}
	return slices.Collect(it), nil
}

func childNodes(node xml.Node) []xml.Node {
	switch n := node.(type) {
	case *xml.Element:
		return n.Nodes
	case *xml.Document:
		return n.Nodes
	default:
		return nil
	}
}

func iterSelf(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		yield(node)
	}
}

func iterChild(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		for _, n := range childNodes(node) {
			if !yield(n) {
				return
			}
		}
	}
}

func iterParent(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		if p := node.Parent(); p != nil {
			yield(p)
		}
	}
}

func iterAncestor(node xml.Node, self bool) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		if self && !yield(node) {
			return
		}
		for p := node.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

func iterDescendant(node xml.Node, self bool) iter.Seq[xml.Node] {
	var descend func(xml.Node, func(xml.Node) bool) bool
	descend = func(n xml.Node, yield func(xml.Node) bool) bool {
		for _, c := range childNodes(n) {
			if !yield(c) {
				return false
			}
			if !descend(c, yield) {
				return false
			}
		}
		return true
	}
	return func(yield func(xml.Node) bool) {
		if self && !yield(node) {
			return
		}
		descend(node, yield)
	}
}

func iterNextSibling(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		if !isChild(node) {
			return
		}
		nodes := childNodes(node.Parent())
		for i := node.Index() + 1; i < len(nodes); i++ {
			if !yield(nodes[i]) {
				return
			}
		}
	}
}

func iterPrevSibling(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		if !isChild(node) {
			return
		}
		nodes := childNodes(node.Parent())
		for i := node.Index() - 1; i >= 0 && i < len(nodes); i-- {
			if !yield(nodes[i]) {
				return
			}
		}
	}
}

func iterNext(node xml.Node) iter.Seq[xml.Node] {
	var descend func(xml.Node, func(xml.Node) bool) bool
	descend = func(n xml.Node, yield func(xml.Node) bool) bool {
		if !yield(n) {
			return false
		}
		for _, c := range childNodes(n) {
			if !descend(c, yield) {
				return false
			}
		}
		return true
	}
	return func(yield func(xml.Node) bool) {
		for curr := node; curr != nil; curr = curr.Parent() {
			if !isChild(curr) {
				continue
			}
			nodes := childNodes(curr.Parent())
			for i := curr.Index() + 1; i < len(nodes); i++ {
				if !descend(nodes[i], yield) {
					return
				}
			}
		}
	}
}

func iterPrev(node xml.Node) iter.Seq[xml.Node] {
	var descend func(xml.Node, func(xml.Node) bool) bool
	descend = func(n xml.Node, yield func(xml.Node) bool) bool {
		nodes := childNodes(n)
		for i := len(nodes) - 1; i >= 0; i-- {
			if !descend(nodes[i], yield) {
				return false
			}
		}
		return yield(n)
	}
	return func(yield func(xml.Node) bool) {
		for curr := node; curr != nil; curr = curr.Parent() {
			if !isChild(curr) {
				continue
			}
			nodes := childNodes(curr.Parent())
			for i := curr.Index() - 1; i >= 0 && i < len(nodes); i-- {
				if !descend(nodes[i], yield) {
					return
				}
			}
		}
	}
}

func iterAttribute(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		el, ok := node.(*xml.Element)
		if !ok {
			return
		}
		for _, a := range el.Attrs {
			if !yield(a) {
				return
			}
		}
	}
}

func iterNamespace(node xml.Node) iter.Seq[xml.Node] {
	return func(yield func(xml.Node) bool) {
		if _, ok := node.(*xml.Element); !ok {
			return
		}
		seen := make(map[string]struct{})
		for curr := node; curr != nil; curr = curr.Parent() {
			el, ok := curr.(*xml.Element)
			if !ok {
				continue
			}
			for _, ns := range el.Spaces {
				if _, ok := seen[ns.Prefix]; ok {
					continue
				}
				seen[ns.Prefix] = struct{}{}
				if !yield(ns) {
					return
				}
			}
		}
	}
}

// isChild reports whether the node takes part in the child axis of
// its parent. Attributes and namespaces do not.
func isChild(node xml.Node) bool {
	if node.Parent() == nil {
		return false
	}
	switch node.Type() {
	case xml.TypeAttribute, xml.TypeNamespace:
		return false
	default:
		return true
	}
}
