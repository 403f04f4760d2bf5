package scan

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"ren/internal/core"
)

// scanText reads "..." with caret escapes:
//
//	^" quote   ^^ caret   ^/ newline   ^- tab   ^(HEX) codepoint
//
// A raw line break ends nothing, it is an unterminated string. Other
// control bytes besides tab are refused.
func (lx *Lexer) scanText(tok *Token) error {
	start := lx.off
	lx.off++
	var sb strings.Builder
	for {
		if lx.off >= len(lx.src) || lx.peek() == '\n' {
			return lx.errorf(core.ErrScanMissing, start, "unterminated string")
		}
		b := lx.peek()
		switch {
		case b == '"':
			lx.off++
			tok.Kind = Text
			tok.Text = sb.String()
			return nil
		case b == '^':
			r, err := lx.escape(start)
			if err != nil {
				return err
			}
			sb.WriteRune(r)
		case b < 0x20 && b != '\t', b == 0x7f:
			return lx.errorf(core.ErrScanIllegal, start, "illegal control byte 0x%02X in string", b)
		default:
			r, size := utf8.DecodeRune(lx.src[lx.off:])
			if r == utf8.RuneError && size <= 1 {
				return lx.errorf(core.ErrScanInvalid, start, "invalid UTF-8 in string")
			}
			sb.WriteRune(r)
			lx.off += size
		}
	}
}

func (lx *Lexer) escape(start int) (rune, error) {
	lx.off++ // ^
	b := lx.peek()
	lx.off++
	switch b {
	case '"', '^':
		return rune(b), nil
	case '/':
		return '\n', nil
	case '-':
		return '\t', nil
	case '(':
		end := lx.off
		for end < len(lx.src) && lx.src[end] != ')' && lx.src[end] != '\n' {
			end++
		}
		if end >= len(lx.src) || lx.src[end] != ')' {
			return 0, lx.errorf(core.ErrScanInvalid, start, "unterminated ^( escape")
		}
		name := string(lx.src[lx.off:end])
		lx.off = end + 1
		switch strings.ToLower(name) {
		case "line":
			return '\n', nil
		case "tab":
			return '\t', nil
		}
		n, err := strconv.ParseUint(name, 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) || n == 0 {
			return 0, lx.errorf(core.ErrScanInvalid, start, "bad escape ^(%s)", name)
		}
		return rune(n), nil
	}
	return 0, lx.errorf(core.ErrScanInvalid, start, "unknown escape ^%c", b)
}

// isTagStart is true for <a and </a; a bare < or <= stays a word.
func (lx *Lexer) isTagStart() bool {
	next := lx.at(lx.off + 1)
	if next == '/' {
		next = lx.at(lx.off + 2)
	}
	return (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z')
}

func (lx *Lexer) scanTag(tok *Token) error {
	start := lx.off
	lx.off++
	end := lx.off
	for end < len(lx.src) && lx.src[end] != '>' && lx.src[end] != '\n' {
		end++
	}
	if end >= len(lx.src) || lx.src[end] != '>' {
		return lx.errorf(core.ErrScanMissing, start, "unterminated tag")
	}
	tok.Kind = Tag
	tok.Text = string(lx.src[lx.off:end])
	lx.off = end + 1
	if !lx.atDelimiter() {
		return lx.errorf(core.ErrScanInvalid, start, "tag must be followed by a delimiter")
	}
	return nil
}

// scanHash reads # (space), #c (one codepoint) and #{hex} binaries.
func (lx *Lexer) scanHash(tok *Token) error {
	start := lx.off
	lx.off++
	if lx.peek() == '{' {
		return lx.scanBinary(tok, start)
	}
	tok.Kind = Rune
	if lx.atDelimiter() {
		tok.Rune = ' '
		return nil
	}
	r, size := utf8.DecodeRune(lx.src[lx.off:])
	if r == utf8.RuneError && size <= 1 {
		return lx.errorf(core.ErrScanInvalid, start, "invalid UTF-8 in rune")
	}
	lx.off += size
	if !lx.atDelimiter() {
		for !lx.atDelimiter() {
			lx.advanceRune()
		}
		return lx.errorf(core.ErrScanInvalid, start, "rune must be a single character")
	}
	tok.Rune = r
	return nil
}

func (lx *Lexer) scanBinary(tok *Token, start int) error {
	lx.off++ // {
	var digits []byte
	for {
		if lx.off >= len(lx.src) {
			return lx.errorf(core.ErrScanMissing, start, "unterminated binary")
		}
		b := lx.peek()
		lx.off++
		switch {
		case b == '}':
			if len(digits)%2 != 0 {
				return lx.errorf(core.ErrScanInvalid, start, "odd number of hex digits in binary")
			}
			out := make([]byte, len(digits)/2)
			if _, err := hex.Decode(out, digits); err != nil {
				return lx.errorf(core.ErrScanInvalid, start, "bad binary: %v", err)
			}
			tok.Kind = Binary
			tok.Bytes = out
			return nil
		case b == '\n':
			lx.line++
		case b == ' ' || b == '\t' || b == '\r':
		case isHex(b):
			digits = append(digits, b)
		default:
			return lx.errorf(core.ErrScanInvalid, start, "bad hex digit %q in binary", b)
		}
	}
}
