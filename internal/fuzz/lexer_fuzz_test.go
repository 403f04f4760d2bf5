package fuzztests

import (
	"testing"

	"ren/internal/core"
	"ren/internal/scan"
)

const maxFuzzInput = 1 << 16

func FuzzScanTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		toks, err := scan.Tokenize(input, "fuzz.r")
		if err != nil {
			if _, ok := err.(*core.Error); !ok {
				t.Fatalf("Tokenize error is %T: %v", err, err)
			}
			return
		}
		line := 1
		for _, tok := range toks {
			if tok.Line < line {
				t.Fatalf("line went backwards at %+v", tok)
			}
			if tok.Start > tok.End || tok.End > len(input) {
				t.Fatalf("bad token span %d..%d of %d", tok.Start, tok.End, len(input))
			}
			line = tok.Line
		}
	})
}
