package core

// Type is what TYPE-OF reports. Plain cells report their heart; quoted and
// quasi cells and each antiform get their own type.
type Type uint8

const (
	TypeQuoted Type = Type(heartMax) + iota
	TypeQuasiform
	TypeKeyword // antiform WORD!
	TypeSplice  // antiform GROUP!
	TypePack    // antiform BLOCK!
	TypeGhost   // antiform COMMA!
	TypeTrash   // antiform BLANK!
	TypeAction  // antiform FRAME!
	TypeRaised  // antiform ERROR!
	typeMax
)

var extraTypeNames = [...]string{
	"quoted", "quasiform", "keyword", "splice", "pack", "ghost", "trash", "action", "raised",
}

// Name returns the datatype spelling without the "!" suffix.
func (t Type) Name() string {
	if t < Type(heartMax) {
		return Heart(t).String()
	}
	if t < typeMax {
		return extraTypeNames[t-TypeQuoted]
	}
	return "type?"
}

func (t Type) String() string { return t.Name() + "!" }

// TypeByName resolves "integer!" style names.
func TypeByName(name string) (Type, bool) {
	if len(name) < 2 || name[len(name)-1] != '!' {
		return 0, false
	}
	base := name[:len(name)-1]
	for t := Type(HeartBlank); t < typeMax; t++ {
		if t.Name() == base {
			return t, true
		}
	}
	return 0, false
}

// AllTypes lists every reportable type in declaration order.
func AllTypes() []Type {
	out := make([]Type, 0, typeMax)
	for t := Type(HeartBlank); t < typeMax; t++ {
		out = append(out, t)
	}
	return out
}

func antiformType(h Heart) Type {
	switch h {
	case HeartWord:
		return TypeKeyword
	case HeartGroup:
		return TypeSplice
	case HeartBlock:
		return TypePack
	case HeartComma:
		return TypeGhost
	case HeartBlank:
		return TypeTrash
	case HeartFrame:
		return TypeAction
	case HeartError:
		return TypeRaised
	}
	return Type(h)
}
