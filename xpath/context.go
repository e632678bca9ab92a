package xpath

import (
	"time"

	"github.com/midbel/angle/environ"
	"github.com/midbel/angle/xml"
)

// Context is the focus of an evaluation: the context item, its
// position in the focus and the focus size, plus the variables and
// functions in scope. Now is read once when the context is created
// and stays stable for the whole evaluation.
type Context struct {
	item  Item
	Index int
	Size  int

	// Principal is the node kind matched by name tests, set by the
	// axis owning the current step.
	Principal xml.NodeType

	environ.Environ[Expr]
	Builtins environ.Environ[BuiltinFunc]

	Uri      string
	Timezone *time.Location
	Now      time.Time
}

func DefaultContext(node xml.Node) Context {
	ctx := createContext(nil, 1, 1)
	if node != nil {
		ctx.item = createNode(node)
	}
	ctx.Environ = environ.Empty[Expr]()
	ctx.Builtins = DefaultBuiltin()
	return ctx
}

func createContext(item Item, pos, size int) Context {
	return Context{
		item:     item,
		Index:    pos,
		Size:     size,
		Timezone: time.UTC,
		Now:      time.Now(),
	}
}

func (c Context) Item() Item {
	return c.item
}

// Node gives the context item as a node, nil when the context item is
// absent or atomic.
func (c Context) Node() xml.Node {
	if c.item == nil || c.item.Atomic() {
		return nil
	}
	return c.item.Node()
}

// Sub derives a new focus keeping variables and functions in scope.
func (c Context) Sub(item Item, pos, size int) Context {
	ctx := c
	ctx.item = item
	ctx.Index = pos
	ctx.Size = size
	return ctx
}

func (c Context) SubNode(node xml.Node, pos, size int) Context {
	return c.Sub(createNode(node), pos, size)
}

// Nest pushes a variable frame. The frame is popped by discarding the
// returned context, whatever the exit path.
func (c Context) Nest() Context {
	ctx := c
	ctx.Environ = environ.Enclosed(c.Environ)
	return ctx
}

func (c Context) Root() (xml.Node, error) {
	node := c.Node()
	if node == nil {
		return nil, missingContext()
	}
	return xml.Root(node), nil
}
