package vm

import (
	"ren/internal/core"
	"ren/internal/scan"
)

// scanState is the per-level state of the scanner executor. A level scans
// one list: nested lists are scanned by sub-levels sharing the lexer.
type scanState struct {
	lexer *scan.Lexer
	// feed is set when scanning host fragments. Its lexer is the one in
	// use, and a list left open at the end of a fragment continues into
	// the parts that follow.
	feed *Feed
	file *core.Stub // file name symbol; nil for anonymous source
	open scan.Token // the opening delimiter; Kind End at the top
	// one stops after a single element instead of reading to the end.
	one bool
}

const (
	stateScanLoop  State = 1
	stateScanChild State = 2
)

func (st *scanState) lex() *scan.Lexer {
	if st.feed != nil {
		return st.feed.lexer
	}
	return st.lexer
}

func scannerExecutor(in *Interp, L *Level) Bounce {
	st := L.scan
	switch L.state {
	case StateInitial:
		L.mark = in.stack.Index()
		L.state = stateScanLoop
	case stateScanChild:
		L.state = stateScanLoop
		if st.one {
			L.out.Copy(&L.spare)
			return BounceOut
		}
		in.stack.Push().Copy(&L.spare)
		L.spare.Erase()
	}

	for {
		tok, err := st.lex().Next()
		if err != nil {
			panic(err)
		}
		switch {
		case tok.Kind == scan.End && st.open.Kind != scan.End && st.feed != nil:
			spliced, more := st.feed.continueList()
			if !more {
				core.Panic(core.ErrScanMissing, "missing %s to close %s opened on line %d",
					st.open.Kind.Closer(), st.open.Kind, st.open.Line)
			}
			if spliced {
				in.stack.Push().Copy(&st.feed.fetched)
			}
			continue

		case tok.Kind == scan.End:
			if st.open.Kind != scan.End {
				core.Panic(core.ErrScanMissing, "missing %s to close %s opened on line %d",
					st.open.Kind.Closer(), st.open.Kind, st.open.Line)
			}
			if st.one {
				core.Panic(core.ErrInternal, "scanned past the end of input")
			}
			arr := in.popArray(L, st, 1)
			core.InitBlock(L.out, arr)
			return BounceOut

		case tok.Kind.IsOpen():
			child := in.makeLevel(Scanner, nil, 0)
			child.scan = &scanState{lexer: st.lexer, feed: st.feed, file: st.file, open: tok}
			L.state = stateScanChild
			in.pushLevel(child, &L.spare)
			return BounceContinue

		case tok.Kind.IsClose():
			if st.open.Kind == scan.End || st.one {
				core.Panic(core.ErrScanExtra, "unexpected %s", tok.Kind)
			}
			if st.open.Kind.Closer() != tok.Kind {
				core.Panic(core.ErrScanMismatch, "%s opened on line %d closed by %s",
					st.open.Kind, st.open.Line, tok.Kind)
			}
			if st.open.Quasi != tok.Quasi {
				core.Panic(core.ErrScanInvalid, "quasi list must have ~ on both ends")
			}
			arr := in.popArray(L, st, st.open.Line)
			heart := core.HeartBlock
			if st.open.Kind == scan.GroupBegin {
				heart = core.HeartGroup
			}
			core.InitList(L.out, heart, arr, 0, nil)
			decorate(L.out, &st.open)
			return BounceOut
		}

		var c core.Cell
		in.scanAtom(&c, &tok)
		if st.one {
			L.out.Copy(&c)
			return BounceOut
		}
		in.stack.Push().Copy(&c)
	}
}

// popArray collects the scanned elements into an array stamped with the
// file and line it started on.
func (in *Interp) popArray(L *Level, st *scanState, line int) *core.Stub {
	arr, err := in.stack.PopStackValues(L.mark, core.FlavorArray, 0, st.file, line)
	if err != nil {
		panic(err)
	}
	return arr
}

// scanAtom builds the cell for a token that is not a delimiter.
func (in *Interp) scanAtom(c *core.Cell, tok *scan.Token) {
	switch tok.Kind {
	case scan.Integer:
		core.InitInteger(c, tok.Int)
	case scan.Decimal:
		core.InitDecimal(c, tok.Float)
	case scan.Word:
		core.InitWord(c, core.Intern(tok.Text))
	case scan.SetWord:
		core.InitSetWord(c, core.Intern(tok.Text))
	case scan.GetWord:
		core.InitGetWord(c, core.Intern(tok.Text))
	case scan.Text:
		core.InitText(c, in.heap.MakeString(tok.Text, core.FlexFlagManaged))
	case scan.Tag:
		core.InitTag(c, in.heap.MakeString(tok.Text, core.FlexFlagManaged))
	case scan.Rune:
		core.InitRune(c, tok.Rune)
	case scan.Binary:
		core.InitBinary(c, in.heap.MakeBinary(tok.Bytes, core.FlexFlagManaged))
	case scan.Blank:
		core.InitBlank(c)
	case scan.Comma:
		core.InitComma(c)
	default:
		core.Panic(core.ErrInternal, "no cell for token %s", tok.Kind)
	}
	decorate(c, tok)
}

// decorate applies the sigil, quasi mark, quotes and newline flag a token
// was written with.
func decorate(c *core.Cell, tok *scan.Token) {
	if tok.Sigil != 0 {
		s, _ := core.SigilFor(tok.Sigil)
		c.SetSigil(s)
	}
	if tok.Quasi {
		if err := core.TrapCoerceToQuasiform(c); err != nil {
			panic(err)
		}
	}
	if tok.Quotes > 0 {
		if err := core.Quote(c, tok.Quotes); err != nil {
			panic(err)
		}
	}
	if tok.Newline {
		c.SetFlag(core.CellFlagNewlineBefore)
	}
}

func fileSymbol(file string) *core.Stub {
	if file == "" {
		return nil
	}
	return core.Intern(file)
}

// scanOne reads the next element from the current fragment of a variadic
// feed. Lists are scanned by a nested trampoline run so the Go stack stays
// flat however deep they nest.
func (in *Interp) scanOne(f *Feed, out *core.Cell) {
	L := in.makeLevel(Scanner, nil, 0)
	L.scan = &scanState{feed: f, file: fileSymbol(f.file), one: true}
	if err := in.run(L, out); err != nil {
		panic(err)
	}
}

// scanAll reads all of src into a BLOCK! in out.
func (in *Interp) scanAll(src []byte, file string, out *core.Cell) *core.Error {
	L := in.makeLevel(Scanner, nil, 0)
	L.scan = &scanState{lexer: scan.New(src, file, 1), file: fileSymbol(file)}
	return in.run(L, out)
}

// Transcode scans text into a BLOCK! value. file names the source in
// errors and in the arrays made; it may be empty.
func (in *Interp) Transcode(text, file string) (*Value, error) {
	var result *Value
	err := in.protect(func() {
		var out core.Cell
		if err := in.scanAll([]byte(text), file, &out); err != nil {
			panic(err)
		}
		result = in.newValue(&out)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
