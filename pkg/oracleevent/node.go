package oracleevent

import "github.com/oliviaoracle/olivia/pkg/eventpath"

// NodeKindTag discriminates how a node's children are summarized.
type NodeKindTag int

const (
	// NodeKindList is the default: children are listed explicitly,
	// capped at 100 entries.
	NodeKindList NodeKindTag = iota
	// NodeKindRangeTime summarizes children by a time interval: min
	// and max child segment plus the next unattested child.
	NodeKindRangeTime
	// NodeKindDateMap groups children by the ISO date their first
	// segment parses as. Inferred, not normally set explicitly.
	NodeKindDateMap
)

// NodeKind is a node's stored summarization strategy.
type NodeKind struct {
	Tag                      NodeKindTag
	RangeTimeIntervalSeconds int64 // meaningful when Tag == NodeKindRangeTime
}

// DefaultNodeKind returns the List kind every node has unless set
// explicitly.
func DefaultNodeKind() NodeKind { return NodeKind{Tag: NodeKindList} }

// ChildDescTag discriminates the ChildDesc shapes a query can return.
type ChildDescTag int

const (
	ChildDescList ChildDescTag = iota
	ChildDescRange
	ChildDescDateMap
)

// ChildEntry is one child segment and whether it directly names an
// event (vs. being purely a sub-node).
type ChildEntry struct {
	Segment  string
	HasEvent bool
}

// ChildDesc is the computed description of a node's children, shaped by
// its NodeKind.
type ChildDesc struct {
	Tag ChildDescTag

	// ChildDescList
	List []ChildEntry

	// ChildDescRange
	RangeStart          *string
	RangeEnd            *string
	RangeNextUnattested *string

	// ChildDescDateMap: date string -> segments filed under it
	DateMap map[string][]string
}

// PathNode is the combination of a node's own events and its child
// description, as returned by get_node.
type PathNode struct {
	Events   []eventpath.EventKind
	Children ChildDesc
}
