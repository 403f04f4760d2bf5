package core

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// SymID identifies a word case-insensitively. Spellings that differ only
// in case share an id and sit on one synonym ring.
type SymID int64

const (
	SymNone SymID = iota
	SymNull
	SymOkay
	SymNan
	SymReturn
	SymSelf
	builtinSymCount
)

var builtinSpellings = [builtinSymCount]string{
	SymNull:   "null",
	SymOkay:   "okay",
	SymNan:    "nan",
	SymReturn: "return",
	SymSelf:   "self",
}

// Symbols are immortal and shared by every heap in the process, so the
// table is guarded. Symbol stubs are never marked or swept.
type symbolTable struct {
	mu         sync.RWMutex
	bySpelling map[string]*Stub
	byCanon    map[string]*Stub
	next       SymID
}

var symbols = newSymbolTable()

func newSymbolTable() *symbolTable {
	t := &symbolTable{
		bySpelling: make(map[string]*Stub),
		byCanon:    make(map[string]*Stub),
		next:       builtinSymCount,
	}
	for id := SymNull; id < builtinSymCount; id++ {
		t.add(builtinSpellings[id], id)
	}
	return t
}

func (t *symbolTable) add(spelling string, id SymID) *Stub {
	s := &Stub{
		base:   BaseNode | BaseManaged,
		flavor: FlavorSymbol,
		flags:  FlexFlagFrozen | FlexFlagUntracked,
		bytes:  []byte(spelling),
	}
	s.Misc.Int = int64(id)
	s.Link.Node = s
	t.bySpelling[spelling] = s
	t.byCanon[strings.ToLower(spelling)] = s
	return s
}

// Intern returns the symbol for a spelling, creating it on first use.
// Spellings are normalized to NFC first.
func Intern(spelling string) *Stub {
	spelling = norm.NFC.String(spelling)

	symbols.mu.RLock()
	s, ok := symbols.bySpelling[spelling]
	symbols.mu.RUnlock()
	if ok {
		return s
	}

	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	if s, ok := symbols.bySpelling[spelling]; ok {
		return s
	}
	canonKey := strings.ToLower(spelling)
	canon, ok := symbols.byCanon[canonKey]
	if !ok {
		symbols.next++
		return symbols.add(spelling, symbols.next)
	}
	s = &Stub{
		base:   BaseNode | BaseManaged,
		flavor: FlavorSymbol,
		flags:  FlexFlagFrozen | FlexFlagUntracked,
		bytes:  []byte(spelling),
	}
	s.Misc.Int = canon.Misc.Int
	s.Link.Node = canon.Link.Node
	canon.Link.Node = s
	symbols.bySpelling[spelling] = s
	return s
}

// Canon returns the first-interned spelling of a symbol's synonyms.
func Canon(sym *Stub) *Stub {
	symbols.mu.RLock()
	defer symbols.mu.RUnlock()
	return symbols.byCanon[strings.ToLower(string(sym.bytes))]
}

// Synonyms walks the synonym ring of sym, starting with sym itself.
func Synonyms(sym *Stub) []*Stub {
	symbols.mu.RLock()
	defer symbols.mu.RUnlock()
	out := []*Stub{sym}
	for s := sym.Link.Node; s != nil && s != sym; s = s.Link.Node {
		out = append(out, s)
	}
	return out
}

// SymIDOf returns the case-insensitive id of a symbol.
func SymIDOf(sym *Stub) SymID {
	if sym == nil || sym.flavor != FlavorSymbol {
		return SymNone
	}
	return SymID(sym.Misc.Int)
}

// SameSymbol compares two symbols case-insensitively.
func SameSymbol(a, b *Stub) bool { return SymIDOf(a) == SymIDOf(b) && a != nil }

// Spelling returns the text of a symbol.
func Spelling(sym *Stub) string {
	if sym == nil {
		return ""
	}
	return string(sym.bytes)
}

var (
	SymbolNull   = Intern("null")
	SymbolOkay   = Intern("okay")
	SymbolNan    = Intern("nan")
	SymbolReturn = Intern("return")
	SymbolSelf   = Intern("self")
)
