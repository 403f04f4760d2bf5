package fuzztests

import (
	"errors"
	"io"
	"testing"

	"ren/internal/core"
	"ren/internal/vm"
)

func FuzzTranscode(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		in := vm.New(vm.Config{Stdout: io.Discard})
		v, err := in.Transcode(string(input), "fuzz.r")
		if err != nil {
			var e *core.Error
			if !errors.As(err, &e) {
				t.Fatalf("Transcode error is %T: %v", err, err)
			}
		} else {
			_ = in.Mold(v)
			in.Release(v)
		}
		if in.Depth() != 0 || in.DataStack().Index() != 0 || in.Throwing() {
			t.Fatalf("unbalanced after %q: depth %d stack %d", input, in.Depth(), in.DataStack().Index())
		}
		if err := in.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})
}
