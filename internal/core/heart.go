package core

// Heart is the base datatype of a cell, independent of quoting and lift.
type Heart uint8

const (
	HeartErased Heart = iota // unreadable; a cell that was never written
	HeartBlank
	HeartInteger
	HeartDecimal
	HeartRune
	HeartText
	HeartTag
	HeartBinary
	HeartWord
	HeartSetWord
	HeartGetWord
	HeartBlock
	HeartGroup
	HeartComma
	HeartFrame
	HeartObject
	HeartError
	HeartHandle
	HeartDatatype
	heartMax
)

var heartNames = [heartMax]string{
	HeartErased:   "erased",
	HeartBlank:    "blank",
	HeartInteger:  "integer",
	HeartDecimal:  "decimal",
	HeartRune:     "rune",
	HeartText:     "text",
	HeartTag:      "tag",
	HeartBinary:   "binary",
	HeartWord:     "word",
	HeartSetWord:  "set-word",
	HeartGetWord:  "get-word",
	HeartBlock:    "block",
	HeartGroup:    "group",
	HeartComma:    "comma",
	HeartFrame:    "frame",
	HeartObject:   "object",
	HeartError:    "error",
	HeartHandle:   "handle",
	HeartDatatype: "datatype",
}

func (h Heart) String() string {
	if h >= heartMax {
		return "heart?"
	}
	return heartNames[h]
}

// IsWord reports WORD!, SET-WORD! and GET-WORD!.
func (h Heart) IsWord() bool {
	return h == HeartWord || h == HeartSetWord || h == HeartGetWord
}

// IsList reports BLOCK! and GROUP!.
func (h Heart) IsList() bool {
	return h == HeartBlock || h == HeartGroup
}

// IsBindable reports hearts whose cells carry a binding in extra.
func (h Heart) IsBindable() bool {
	return h.IsWord() || h.IsList()
}

// IsIsotopic reports hearts that have an antiform.
func (h Heart) IsIsotopic() bool {
	switch h {
	case HeartWord, HeartBlock, HeartGroup, HeartComma, HeartBlank, HeartFrame, HeartError:
		return true
	}
	return false
}

// IsString reports hearts whose payload is a string flex.
func (h Heart) IsString() bool {
	return h == HeartText || h == HeartTag
}

// Sigil decorates words, blocks and groups.
type Sigil uint8

const (
	SigilNone Sigil = iota
	SigilPin        // @
	SigilMeta       // ^
	SigilTie        // $
)

func (s Sigil) String() string {
	switch s {
	case SigilPin:
		return "@"
	case SigilMeta:
		return "^"
	case SigilTie:
		return "$"
	}
	return ""
}

// SigilFor maps a sigil character to its Sigil.
func SigilFor(b byte) (Sigil, bool) {
	switch b {
	case '@':
		return SigilPin, true
	case '^':
		return SigilMeta, true
	case '$':
		return SigilTie, true
	}
	return SigilNone, false
}
