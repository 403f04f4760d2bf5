package scan

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	End Kind = iota
	Integer
	Decimal
	Word
	SetWord
	GetWord
	Text
	Tag
	Rune
	Binary
	Blank
	Comma
	BlockBegin
	BlockEnd
	GroupBegin
	GroupEnd
)

var kindNames = [...]string{
	End:        "end",
	Integer:    "integer",
	Decimal:    "decimal",
	Word:       "word",
	SetWord:    "set-word",
	GetWord:    "get-word",
	Text:       "text",
	Tag:        "tag",
	Rune:       "rune",
	Binary:     "binary",
	Blank:      "blank",
	Comma:      "comma",
	BlockBegin: "[",
	BlockEnd:   "]",
	GroupBegin: "(",
	GroupEnd:   ")",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsOpen reports [ and (.
func (k Kind) IsOpen() bool { return k == BlockBegin || k == GroupBegin }

// IsClose reports ] and ).
func (k Kind) IsClose() bool { return k == BlockEnd || k == GroupEnd }

// Closer returns the delimiter that ends an opening one.
func (k Kind) Closer() Kind {
	if k == GroupBegin {
		return GroupEnd
	}
	return BlockEnd
}

// Token is one lexical unit.
type Token struct {
	Kind Kind
	// Text is the spelling of a word without sigil or colon, or the decoded
	// content of a text or tag.
	Text  string
	Int   int64
	Float float64
	Rune  rune
	Bytes []byte

	Sigil  byte // '@', '^', '$' or 0
	Quotes int  // leading apostrophes
	// Quasi is set for ~word~, a lone ~, an opening ~[ or ~( and a
	// closing ]~ or )~.
	Quasi bool
	// Newline is set when a line break separates this token from the
	// previous one.
	Newline bool

	Line  int
	Start int // byte offsets into the source
	End   int
}
