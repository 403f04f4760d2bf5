package core

import (
	"encoding/hex"
	"strconv"
	"strings"
)

type molder struct {
	sb    strings.Builder
	seen  []*Stub
	form  bool
	limit int
}

// Mold renders a value as source text that scans back to an equal value.
// Antiforms render like their quasiforms.
func Mold(c *Cell) string {
	m := &molder{}
	m.value(c)
	return m.sb.String()
}

// MoldLimit is Mold truncated to about limit bytes, for error messages.
func MoldLimit(c *Cell, limit int) string {
	m := &molder{limit: limit}
	m.value(c)
	s := m.sb.String()
	if limit > 0 && len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}

// Form renders a value for display: text without quotes or escapes, and
// blocks without their brackets.
func Form(c *Cell) string {
	m := &molder{form: true}
	if !c.IsErased() && c.IsPlain() && c.Heart() == HeartBlock {
		m.items(c.ListAt(), " ")
		return m.sb.String()
	}
	m.value(c)
	return m.sb.String()
}

func (m *molder) full() bool { return m.limit > 0 && m.sb.Len() > m.limit }

func (m *molder) enter(s *Stub) bool {
	for _, x := range m.seen {
		if x == s {
			m.sb.WriteString("...")
			return false
		}
	}
	m.seen = append(m.seen, s)
	return true
}

func (m *molder) leave() { m.seen = m.seen[:len(m.seen)-1] }

func (m *molder) value(c *Cell) {
	if c.IsErased() {
		m.sb.WriteString("#[erased]")
		return
	}
	l := c.Lift()
	for range l.Depth() {
		m.sb.WriteByte('\'')
	}
	if l == LiftAntiform || l.Quasi() {
		if c.Heart() == HeartBlank {
			m.sb.WriteByte('~')
			return
		}
		m.sb.WriteByte('~')
		m.plain(c)
		m.sb.WriteByte('~')
		return
	}
	m.plain(c)
}

func (m *molder) plain(c *Cell) {
	if c.node != nil && c.node.Decayed() {
		m.sb.WriteString("#[decayed]")
		return
	}
	switch h := c.Heart(); h {
	case HeartBlank:
		m.sb.WriteByte('_')
	case HeartInteger:
		m.sb.WriteString(strconv.FormatInt(c.Int64(), 10))
	case HeartDecimal:
		m.sb.WriteString(FormatDecimal(c.Float64()))
	case HeartRune:
		if m.form {
			m.sb.WriteRune(c.Rune())
		} else {
			m.rune(c.Rune())
		}
	case HeartText:
		if m.form {
			m.sb.WriteString(c.Text())
		} else {
			m.text(c.Text())
		}
	case HeartTag:
		m.sb.WriteByte('<')
		m.sb.WriteString(c.Text())
		m.sb.WriteByte('>')
	case HeartBinary:
		m.sb.WriteString("#{")
		m.sb.WriteString(strings.ToUpper(hex.EncodeToString(c.node.Bytes())))
		m.sb.WriteByte('}')
	case HeartWord:
		m.sb.WriteString(c.Sigil().String())
		m.sb.WriteString(Spelling(c.node))
	case HeartSetWord:
		m.sb.WriteString(Spelling(c.node))
		m.sb.WriteByte(':')
	case HeartGetWord:
		m.sb.WriteByte(':')
		m.sb.WriteString(Spelling(c.node))
	case HeartBlock, HeartGroup:
		m.sb.WriteString(c.Sigil().String())
		open, closer := "[", "]"
		if h == HeartGroup {
			open, closer = "(", ")"
		}
		m.sb.WriteString(open)
		if m.enter(c.node) {
			m.items(c.ListAt(), " ")
			m.leave()
		}
		m.sb.WriteString(closer)
	case HeartComma:
		m.sb.WriteByte(',')
	case HeartFrame:
		if c.node.Flavor() == FlavorDetails {
			m.sb.WriteString("#[frame!")
			if name, ok := c.node.obj.(interface{ Label() string }); ok && name.Label() != "" {
				m.sb.WriteByte(' ')
				m.sb.WriteString(name.Label())
			}
			m.sb.WriteByte(']')
			return
		}
		m.sb.WriteString("#[frame! ")
		m.context(c.node)
		m.sb.WriteByte(']')
	case HeartObject:
		m.sb.WriteString("#[object! ")
		m.context(c.node)
		m.sb.WriteByte(']')
	case HeartError:
		e := c.ErrorOf()
		m.sb.WriteString("#[error! ")
		m.sb.WriteString(e.ID)
		if e.Message != "" {
			m.sb.WriteByte(' ')
			m.text(e.Message)
		}
		m.sb.WriteByte(']')
	case HeartHandle:
		m.sb.WriteString("#[handle!]")
	case HeartDatatype:
		m.sb.WriteString(c.Datatype().String())
	default:
		m.sb.WriteString("#[")
		m.sb.WriteString(h.String())
		m.sb.WriteByte(']')
	}
}

func (m *molder) items(cells []Cell, sep string) {
	for i := range cells {
		if m.full() {
			m.sb.WriteString("...")
			return
		}
		if i > 0 {
			if cells[i].Flags()&CellFlagNewlineBefore != 0 && !m.form {
				m.sb.WriteByte('\n')
			} else {
				m.sb.WriteString(sep)
			}
		}
		m.value(&cells[i])
	}
}

func (m *molder) context(ctx *Stub) {
	m.sb.WriteByte('[')
	if m.enter(ctx) {
		for i := 1; i <= ContextLen(ctx); i++ {
			v := ContextVar(ctx, i)
			if v.Flags()&CellFlagHidden != 0 {
				continue
			}
			if i > 1 {
				m.sb.WriteByte(' ')
			}
			m.sb.WriteString(Spelling(ContextKey(ctx, i)))
			m.sb.WriteString(": ")
			if v.IsPlain() && (v.Heart().IsWord() || v.Heart() == HeartGroup) {
				m.sb.WriteByte('\'')
			}
			m.value(v)
		}
		m.leave()
	}
	m.sb.WriteByte(']')
}

func (m *molder) text(s string) {
	m.sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			m.sb.WriteString(`^"`)
		case '^':
			m.sb.WriteString("^^")
		case '\n':
			m.sb.WriteString("^/")
		case '\t':
			m.sb.WriteString("^-")
		case 0:
			m.sb.WriteString("^@")
		default:
			m.sb.WriteRune(r)
		}
	}
	m.sb.WriteByte('"')
}

func (m *molder) rune(r rune) {
	switch {
	case r == ' ':
		m.sb.WriteString(`#" "`)
	case r == '"' || r == '^' || r < ' ':
		m.sb.WriteByte('#')
		m.text(string(r))
	default:
		m.sb.WriteByte('#')
		m.sb.WriteRune(r)
	}
}

// FormatDecimal renders a decimal so that it always scans back as one.
func FormatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnI") {
		s += ".0"
	}
	return s
}
