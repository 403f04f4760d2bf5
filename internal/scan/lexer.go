package scan

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"ren/internal/core"
)

const nearLimit = 40

// Lexer produces tokens from one piece of source. It never looks back, so
// a caller can take one element's tokens, do something else, and come
// back for the rest of the same text.
type Lexer struct {
	src     []byte
	file    string
	off     int
	line    int
	newline bool
}

// New creates a lexer over src. file and line only decorate errors and
// scanned arrays; line defaults to 1.
func New(src []byte, file string, line int) *Lexer {
	if line < 1 {
		line = 1
	}
	return &Lexer{src: src, file: file, line: line}
}

// File returns the name given to New.
func (lx *Lexer) File() string { return lx.file }

// Line returns the current line.
func (lx *Lexer) Line() int { return lx.line }

// Offset returns how many bytes have been consumed.
func (lx *Lexer) Offset() int { return lx.off }

// AtEnd skips whitespace and comments and reports whether anything is left.
func (lx *Lexer) AtEnd() bool {
	lx.skipTrivia()
	return lx.off >= len(lx.src)
}

// Next returns the next token; at the end of input it keeps returning a
// token of kind End.
func (lx *Lexer) Next() (Token, error) {
	lx.skipTrivia()
	tok := Token{Line: lx.line, Start: lx.off, Newline: lx.newline}
	lx.newline = false
	if lx.off >= len(lx.src) {
		tok.Kind = End
		tok.End = lx.off
		return tok, nil
	}

	for lx.peek() == '\'' {
		lx.off++
		tok.Quotes++
	}
	if tok.Quotes > 0 && lx.atDelimiter() {
		return tok, lx.errorf(core.ErrScanInvalid, tok.Start, "quote mark must decorate a value")
	}
	if tok.Quotes > core.MaxQuoteDepth {
		return tok, lx.errorf(core.ErrScanInvalid, tok.Start, "more than %d quote marks", core.MaxQuoteDepth)
	}

	err := lx.scanToken(&tok)
	tok.End = lx.off
	return tok, err
}

func (lx *Lexer) scanToken(tok *Token) error {
	b := lx.peek()
	switch {
	case b == '[':
		lx.off++
		tok.Kind = BlockBegin
		return nil
	case b == '(':
		lx.off++
		tok.Kind = GroupBegin
		return nil
	case b == ']' || b == ')':
		lx.off++
		tok.Kind = BlockEnd
		if b == ')' {
			tok.Kind = GroupEnd
		}
		if lx.peek() == '~' {
			lx.off++
			tok.Quasi = true
		}
		if tok.Quotes > 0 {
			return lx.errorf(core.ErrScanInvalid, tok.Start, "quote mark before %c", b)
		}
		return nil
	case b == ',':
		lx.off++
		tok.Kind = Comma
		return nil
	case b == '"':
		return lx.scanText(tok)
	case b == '~':
		return lx.scanQuasi(tok)
	case b == '#':
		return lx.scanHash(tok)
	case b == '_' && lx.delimiterAt(lx.off+1):
		lx.off++
		tok.Kind = Blank
		return nil
	case b == '<' && lx.isTagStart():
		return lx.scanTag(tok)
	case b == '{' || b == '}':
		return lx.errorf(core.ErrScanInvalid, lx.off, "braces are not supported")
	case isDigit(b) || ((b == '+' || b == '-') && isDigit(lx.at(lx.off+1))) || (b == '.' && isDigit(lx.at(lx.off+1))):
		return lx.scanNumber(tok)
	case b == '@' || b == '^' || b == '$':
		return lx.scanSigil(tok)
	}
	return lx.scanWord(tok)
}

// scanSigil handles @x ^x $x and the sigiled lists @[..] ^(..) and so on.
func (lx *Lexer) scanSigil(tok *Token) error {
	tok.Sigil = lx.peek()
	lx.off++
	switch next := lx.peek(); {
	case next == '[':
		lx.off++
		tok.Kind = BlockBegin
		return nil
	case next == '(':
		lx.off++
		tok.Kind = GroupBegin
		return nil
	case lx.atDelimiter() || next == ':' || next == '@' || next == '^' || next == '$' || isDigit(next):
		return lx.errorf(core.ErrScanInvalid, tok.Start, "sigil %c must decorate a word or list", tok.Sigil)
	}
	if err := lx.scanWord(tok); err != nil {
		return err
	}
	if tok.Kind != Word {
		return lx.errorf(core.ErrScanInvalid, tok.Start, "sigil %c cannot decorate a %s", tok.Sigil, tok.Kind)
	}
	return nil
}

// scanQuasi handles a lone ~, ~word~, ~[ and ~(.
func (lx *Lexer) scanQuasi(tok *Token) error {
	lx.off++
	tok.Quasi = true
	switch next := lx.peek(); {
	case lx.atDelimiter() && next != '[' && next != '(':
		tok.Kind = Blank
		return nil
	case next == '[':
		lx.off++
		tok.Kind = BlockBegin
		return nil
	case next == '(':
		lx.off++
		tok.Kind = GroupBegin
		return nil
	}
	start := lx.off
	for !lx.atDelimiter() && lx.peek() != '~' {
		lx.advanceRune()
	}
	if lx.peek() != '~' || start == lx.off {
		return lx.errorf(core.ErrScanInvalid, tok.Start, "unterminated quasiform")
	}
	word := string(lx.src[start:lx.off])
	lx.off++
	if !lx.atDelimiter() {
		return lx.errorf(core.ErrScanInvalid, tok.Start, "quasiform must be followed by a delimiter")
	}
	if !validWord(word) {
		return lx.errorf(core.ErrScanInvalid, tok.Start, "invalid quasi word %q", word)
	}
	tok.Kind = Word
	tok.Text = word
	return nil
}

// scanWord reads a word, a set-word (x:) or a get-word (:x).
func (lx *Lexer) scanWord(tok *Token) error {
	get := false
	if lx.peek() == ':' {
		get = true
		lx.off++
	}
	start := lx.off
	for !lx.atDelimiter() {
		r, size := utf8.DecodeRune(lx.src[lx.off:])
		if r == utf8.RuneError && size <= 1 {
			return lx.errorf(core.ErrScanInvalid, lx.off, "invalid UTF-8")
		}
		if r < 0x20 || r == 0x7f {
			return lx.errorf(core.ErrScanIllegal, lx.off, "illegal control character %U", r)
		}
		lx.off += size
	}
	word := string(lx.src[start:lx.off])
	set := strings.HasSuffix(word, ":")
	if set {
		word = word[:len(word)-1]
	}
	switch {
	case word == "":
		return lx.errorf(core.ErrScanInvalid, tok.Start, "empty word")
	case get && set:
		return lx.errorf(core.ErrScanInvalid, tok.Start, "word cannot be both get and set")
	case !validWord(word):
		return lx.errorf(core.ErrScanInvalid, tok.Start, "invalid word %q", word)
	case (get || set) && tok.Sigil != 0:
		return lx.errorf(core.ErrScanInvalid, tok.Start, "sigil %c on a get-word or set-word", tok.Sigil)
	}
	tok.Text = word
	switch {
	case get:
		tok.Kind = GetWord
	case set:
		tok.Kind = SetWord
	default:
		tok.Kind = Word
	}
	return nil
}

func validWord(w string) bool {
	if w == "" || isDigit(w[0]) {
		return false
	}
	for _, r := range w {
		switch r {
		case ':', '"', '\'', '#', '~', '@', '^', '$':
			return false
		}
	}
	return true
}

func (lx *Lexer) skipTrivia() {
	for lx.off < len(lx.src) {
		switch b := lx.src[lx.off]; b {
		case '\n':
			lx.line++
			lx.newline = true
			lx.off++
		case ' ', '\t', '\r':
			lx.off++
		case ';':
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.off++
			}
		default:
			return
		}
	}
}

func (lx *Lexer) peek() byte { return lx.at(lx.off) }

func (lx *Lexer) at(i int) byte {
	if i >= len(lx.src) {
		return 0
	}
	return lx.src[i]
}

func (lx *Lexer) advanceRune() {
	_, size := utf8.DecodeRune(lx.src[lx.off:])
	lx.off += size
}

func (lx *Lexer) atDelimiter() bool { return lx.delimiterAt(lx.off) }

func (lx *Lexer) delimiterAt(i int) bool {
	if i >= len(lx.src) {
		return true
	}
	switch lx.src[i] {
	case ' ', '\t', '\r', '\n', '[', ']', '(', ')', '"', ';', ',', '{', '}':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// errorf builds a scan error located at byte offset pos.
func (lx *Lexer) errorf(code core.ErrorCode, pos int, format string, args ...any) *core.Error {
	return core.NewError(code, format, args...).
		WithNear(lx.near(pos)).
		WithLocation(lx.file, lx.lineOf(pos))
}

// near returns the rest of the line starting at pos, shortened.
func (lx *Lexer) near(pos int) string {
	pos = min(pos, len(lx.src))
	end := pos
	for end < len(lx.src) && lx.src[end] != '\n' && end-pos < nearLimit {
		end++
	}
	return strings.TrimSpace(string(lx.src[pos:end]))
}

// lineOf returns the line of a position at or before the cursor.
func (lx *Lexer) lineOf(pos int) int {
	if pos >= lx.off {
		return lx.line
	}
	return lx.line - bytes.Count(lx.src[pos:lx.off], []byte{'\n'})
}
