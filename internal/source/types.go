package source

type (
	// FileID identifies a file within a FileSet.
	FileID uint32
	// FileFlags records how a file's bytes were obtained.
	FileFlags uint8
)

const (
	// FileVirtual marks text that did not come from disk (eval, repl, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one script's text plus what is needed to report lines in it.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
