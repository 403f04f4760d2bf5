package scan

import (
	"errors"
	"testing"

	"ren/internal/core"
	"ren/internal/source"
)

func kinds(t *testing.T, src string) []Kind {
	t.Helper()
	toks, err := Tokenize([]byte(src), "test")
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		src  string
		want []Kind
	}{
		{"", nil},
		{"1 +", []Kind{Integer, Word}},
		{"[1 [2 3] 4]", []Kind{BlockBegin, Integer, BlockBegin, Integer, Integer, BlockEnd, Integer, BlockEnd}},
		{"(a), b", []Kind{GroupBegin, Word, GroupEnd, Comma, Word}},
		{"x: :y z", []Kind{SetWord, GetWord, Word}},
		{`"hi" <a> #x #{0A0b} _`, []Kind{Text, Tag, Rune, Binary, Blank}},
		{"1.5 .5 -2 +3 1e3", []Kind{Decimal, Decimal, Integer, Integer, Decimal}},
		{"< <= >= - + * /", []Kind{Word, Word, Word, Word, Word, Word, Word}},
		{"; comment\n1 ; more", []Kind{Integer}},
		{"~ ~null~ ~[1]~", []Kind{Blank, Word, BlockBegin, Integer, BlockEnd}},
	}
	for _, tt := range tests {
		got := kinds(t, tt.src)
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.src, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: token %d is %v, want %v", tt.src, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTokenPayloads(t *testing.T) {
	toks, err := Tokenize([]byte(`-42 2.5 "a^/b^"^(41)" <div> #é #{CAFE} ''foo @bar ^baz $q ~okay~ ]~`), "test")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Int != -42 {
		t.Errorf("integer: %d", toks[0].Int)
	}
	if toks[1].Float != 2.5 {
		t.Errorf("decimal: %v", toks[1].Float)
	}
	if toks[2].Text != "a\nb\"A" {
		t.Errorf("text: %q", toks[2].Text)
	}
	if toks[3].Text != "div" {
		t.Errorf("tag: %q", toks[3].Text)
	}
	if toks[4].Rune != 'é' {
		t.Errorf("rune: %q", toks[4].Rune)
	}
	if string(toks[5].Bytes) != "\xCA\xFE" {
		t.Errorf("binary: %x", toks[5].Bytes)
	}
	if toks[6].Quotes != 2 || toks[6].Text != "foo" {
		t.Errorf("quoted word: %+v", toks[6])
	}
	for i, sigil := range []byte{'@', '^', '$'} {
		if toks[7+i].Sigil != sigil || toks[7+i].Kind != Word {
			t.Errorf("sigil %c: %+v", sigil, toks[7+i])
		}
	}
	if !toks[10].Quasi || toks[10].Text != "okay" {
		t.Errorf("quasi word: %+v", toks[10])
	}
	if toks[11].Kind != BlockEnd || !toks[11].Quasi {
		t.Errorf("quasi close: %+v", toks[11])
	}
}

func TestLinesAndNewlines(t *testing.T) {
	toks, err := Tokenize([]byte("a\n\nb c\r\nd"), "test")
	if err != nil {
		t.Fatal(err)
	}
	wantLines := []int{1, 3, 3, 4}
	wantNL := []bool{false, true, false, true}
	for i, tok := range toks {
		if tok.Line != wantLines[i] || tok.Newline != wantNL[i] {
			t.Errorf("token %d: line %d newline %v", i, tok.Line, tok.Newline)
		}
	}

	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("v", []byte("a\n  bb")))
	toks, err = Tokenize(f.Content, "v")
	if err != nil {
		t.Fatal(err)
	}
	if pos := toks[1].Position(f); pos != (source.LineCol{Line: 2, Col: 3}) {
		t.Errorf("position: %+v", pos)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		src  string
		code core.ErrorCode
		line int
	}{
		{`"abc`, core.ErrScanMissing, 1},
		{"\"ab\ncd\"", core.ErrScanMissing, 1},
		{"\"a\x01b\"", core.ErrScanIllegal, 1},
		{"1\n12abc", core.ErrScanBadNumber, 2},
		{"99999999999999999999", core.ErrScanBadNumber, 1},
		{"1e", core.ErrScanBadNumber, 1},
		{"' x", core.ErrScanInvalid, 1},
		{"a:b:", core.ErrScanInvalid, 1},
		{"#ab", core.ErrScanInvalid, 1},
		{"#{ABC}", core.ErrScanInvalid, 1},
		{"#{AB", core.ErrScanMissing, 1},
		{"~foo", core.ErrScanInvalid, 1},
		{"@ x", core.ErrScanInvalid, 1},
		{"$x:", core.ErrScanInvalid, 1},
		{`"^q"`, core.ErrScanInvalid, 1},
		{"{a}", core.ErrScanInvalid, 1},
	}
	for _, tt := range tests {
		_, err := Tokenize([]byte(tt.src), "f.r")
		var e *core.Error
		if !errors.As(err, &e) {
			t.Errorf("%q: expected *core.Error, got %v", tt.src, err)
			continue
		}
		if e.Code != tt.code {
			t.Errorf("%q: code %v, want %v", tt.src, e.Code, tt.code)
		}
		if e.Line != tt.line || e.File != "f.r" {
			t.Errorf("%q: location %s:%d", tt.src, e.File, e.Line)
		}
		if e.Near == "" {
			t.Errorf("%q: missing near text", tt.src)
		}
	}
}

func TestLexerResumes(t *testing.T) {
	lx := New([]byte("1 2   "), "", 0)
	if lx.AtEnd() {
		t.Fatal("not at end yet")
	}
	tok, _ := lx.Next()
	if tok.Int != 1 || lx.Offset() != 1 {
		t.Fatalf("first token %+v at %d", tok, lx.Offset())
	}
	tok, _ = lx.Next()
	if tok.Int != 2 {
		t.Fatalf("second token %+v", tok)
	}
	if !lx.AtEnd() {
		t.Fatal("trailing space should be skipped")
	}
	tok, _ = lx.Next()
	if tok.Kind != End {
		t.Fatalf("expected end, got %v", tok.Kind)
	}
}
