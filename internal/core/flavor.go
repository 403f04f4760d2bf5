package core

// Flavor selects the stub subtype: what its elements are and how the
// collector walks it.
type Flavor uint8

const (
	FlavorArray       Flavor = iota // cells; link: file symbol, misc: line
	FlavorVarlist                   // cells[0] archetype; link: keylist, misc: parent binding
	FlavorKeylist                   // symbol nodes
	FlavorDetails                   // action body cells; link: keylist, misc: definition binding
	FlavorSymbol                    // utf-8 spelling; link: synonym ring, misc: symbol id
	FlavorString                    // utf-8; link/misc: codepoint bookmark
	FlavorBinary                    // bytes
	FlavorAPI                       // one root cell handed out by the embedding API
	FlavorInstruction               // one cell carrying a feed instruction
	FlavorHandle                    // opaque host data with a cleanup hook
	FlavorError                     // payload of an ERROR! cell
	FlavorDatastack                 // one chunk of data stack cells
	FlavorDecayed                   // freed; every stale reference ends up here
	flavorMax
)

type elemKind uint8

const (
	elemNone elemKind = iota
	elemCells
	elemBytes
	elemNodes
)

const (
	cellSize     = 32
	stubOverhead = 128
)

type flavorInfo struct {
	name  string
	elems elemKind
	// markChildren queues whatever this stub keeps alive.
	markChildren func(m *Marker, s *Stub)
	// cleanup runs when the sweeper frees the stub.
	cleanup func(s *Stub)
}

func (i *flavorInfo) width() int64 {
	switch i.elems {
	case elemCells:
		return cellSize
	case elemBytes:
		return 1
	case elemNodes:
		return 8
	}
	return 0
}

var flavors [flavorMax]flavorInfo

func init() {
	flavors = [flavorMax]flavorInfo{
		FlavorArray:       {name: "array", elems: elemCells, markChildren: markCells},
		FlavorVarlist:     {name: "varlist", elems: elemCells, markChildren: markLinkedCells},
		FlavorKeylist:     {name: "keylist", elems: elemNodes, markChildren: markNothing},
		FlavorDetails:     {name: "details", elems: elemCells, markChildren: markLinkedCells},
		FlavorSymbol:      {name: "symbol", elems: elemBytes, markChildren: markNothing},
		FlavorString:      {name: "string", elems: elemBytes, markChildren: markNothing},
		FlavorBinary:      {name: "binary", elems: elemBytes, markChildren: markNothing},
		FlavorAPI:         {name: "api", elems: elemCells, markChildren: markCells},
		FlavorInstruction: {name: "instruction", elems: elemCells, markChildren: markCells},
		FlavorHandle:      {name: "handle", elems: elemNone, markChildren: markNothing, cleanup: cleanupHandle},
		FlavorError:       {name: "error", elems: elemNone, markChildren: markNothing},
		FlavorDatastack:   {name: "datastack", elems: elemCells, markChildren: markCells},
		FlavorDecayed:     {name: "decayed", elems: elemNone, markChildren: markNothing},
	}
}

func (f Flavor) String() string {
	if f >= flavorMax {
		return "flavor?"
	}
	return flavors[f].name
}

func markNothing(*Marker, *Stub) {}

func markCells(m *Marker, s *Stub) {
	for i := range s.cells {
		m.MarkCell(&s.cells[i])
	}
}

func markLinkedCells(m *Marker, s *Stub) {
	m.markSlot(&s.Link)
	m.markSlot(&s.Misc)
	markCells(m, s)
}

// HandleData is the payload of a handle stub.
type HandleData struct {
	Value   any
	Cleanup func(v any)
}

func cleanupHandle(s *Stub) {
	if hd, ok := s.obj.(*HandleData); ok && hd.Cleanup != nil {
		hd.Cleanup(hd.Value)
	}
}
