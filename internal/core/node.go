package core

// BaseFlags is the first byte of both a cell header and a stub leader, so
// code holding an untyped node can tell what it is looking at.
type BaseFlags uint8

const (
	BaseNode       BaseFlags = 0x80 // set on every cell and stub
	BaseUnreadable BaseFlags = 0x40 // freed stub, or cell that must not be read
	BaseCell       BaseFlags = 0x20
	BaseManaged    BaseFlags = 0x10 // owned by the collector
	BaseRoot       BaseFlags = 0x08 // marked on every recycle
	BaseMarked     BaseFlags = 0x04 // reached during the current mark phase
)

// NodeKind is what Detect concludes from a leading byte.
type NodeKind uint8

const (
	NodeUTF8 NodeKind = iota // not a node: ASCII or a UTF-8 lead byte
	NodeStub
	NodeCell
	NodeFree
)

func (k NodeKind) String() string {
	switch k {
	case NodeStub:
		return "stub"
	case NodeCell:
		return "cell"
	case NodeFree:
		return "free"
	}
	return "utf8"
}

// Detect classifies a leading byte. UTF-8 text never starts with 0xC0 or
// 0xC1, which is what a freed stub's leader (node|unreadable, no cell bit)
// looks like, and ASCII never has the node bit.
func Detect(b byte) NodeKind {
	f := BaseFlags(b)
	switch {
	case f&BaseNode == 0:
		return NodeUTF8
	case f&BaseCell != 0:
		return NodeCell
	case f&BaseUnreadable != 0:
		return NodeFree
	default:
		return NodeStub
	}
}
