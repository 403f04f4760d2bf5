package scan

import (
	"fmt"

	"fortio.org/safecast"

	"ren/internal/source"
)

// Tokenize returns every token of src up to, not including, End.
func Tokenize(src []byte, file string) ([]Token, error) {
	lx := New(src, file, 1)
	var out []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return out, err
		}
		if tok.Kind == End {
			return out, nil
		}
		out = append(out, tok)
	}
}

// Position returns the line and column of the token in f.
func (t Token) Position(f *source.File) source.LineCol {
	off, err := safecast.Conv[uint32](t.Start)
	if err != nil {
		panic(fmt.Errorf("token offset overflow: %w", err))
	}
	return f.Position(off)
}
