package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var builtinSeeds = []string{
	"",
	"1 + 2",
	"x: [a 'b ~c~ @d ^e $f] :x",
	`print ["hi^/" #"a" #{DEADBEEF} <tag>]`,
	"~[1 2]~ ~(a)~ ~ _ , ; comment\n",
	"f: func [n <local> m] [either n = 0 [0] [n + f n - 1]]",
	"1.5e3 -7 +3 .5 '''x",
	"[(unclosed",
	"\"unterminated",
	"~[mismatch)",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".r" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
