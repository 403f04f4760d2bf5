package core

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"ren/internal/source"
)

// ErrorCode identifies an error kind. Values are stable.
type ErrorCode int

const (
	// value model
	ErrUnreadable          ErrorCode = 1001 // RE1001: read of an erased cell
	ErrBadAntiform         ErrorCode = 1002 // RE1002: antiform where not allowed
	ErrNonIsotopic         ErrorCode = 1003 // RE1003: heart has no antiform
	ErrIllegalKeyword      ErrorCode = 1004 // RE1004: word antiform outside null/okay/nan
	ErrNoValue             ErrorCode = 1005 // RE1005: trash or ghost where a value is needed
	ErrUnstableConditional ErrorCode = 1006 // RE1006: pack/ghost/raised tested for truth
	ErrBadConditional      ErrorCode = 1007 // RE1007: keyword other than null/okay tested
	ErrUndecayable         ErrorCode = 1008 // RE1008: pack cannot decay without losing data
	ErrQuoteDepth          ErrorCode = 1009 // RE1009: quoting deeper than the lift byte allows
	ErrBadUnquote          ErrorCode = 1010 // RE1010: unquote/unlift of an unlifted value
	ErrBadType             ErrorCode = 1011 // RE1011: wrong type for an operation

	// memory
	ErrOutOfMemory      ErrorCode = 2001 // RE2001
	ErrSeriesFrozen     ErrorCode = 2002 // RE2002
	ErrSeriesHeld       ErrorCode = 2003 // RE2003
	ErrSeriesProtected  ErrorCode = 2004 // RE2004
	ErrFixedSize        ErrorCode = 2005 // RE2005
	ErrSeriesDecayed    ErrorCode = 2006 // RE2006
	ErrDoubleFree       ErrorCode = 2007 // RE2007
	ErrFreeManaged      ErrorCode = 2008 // RE2008
	ErrStackLeak        ErrorCode = 2009 // RE2009
	ErrStackOverflow    ErrorCode = 2010 // RE2010
	ErrManualLeak       ErrorCode = 2011 // RE2011
	ErrDoubleRelease    ErrorCode = 2012 // RE2012
	ErrBadMark          ErrorCode = 2013 // RE2013
	ErrGuardMismatch    ErrorCode = 2014 // RE2014
	ErrIndexOutOfBounds ErrorCode = 2015 // RE2015

	// scanner
	ErrScanInvalid   ErrorCode = 3001 // RE3001: malformed token
	ErrScanMissing   ErrorCode = 3002 // RE3002: missing closing delimiter
	ErrScanExtra     ErrorCode = 3003 // RE3003: unexpected closing delimiter
	ErrScanMismatch  ErrorCode = 3004 // RE3004: closing delimiter of the wrong kind
	ErrScanBadNumber ErrorCode = 3005 // RE3005
	ErrScanIllegal   ErrorCode = 3006 // RE3006: illegal control byte

	// evaluator
	ErrNoArg         ErrorCode = 4001 // RE4001
	ErrExpectArg     ErrorCode = 4002 // RE4002
	ErrNotBound      ErrorCode = 4003 // RE4003
	ErrNoLeft        ErrorCode = 4004 // RE4004
	ErrBadVariadic   ErrorCode = 4005 // RE4005
	ErrNoCatch       ErrorCode = 4006 // RE4006
	ErrUser          ErrorCode = 4007 // RE4007: raised by FAIL or PANIC
	ErrHalt          ErrorCode = 4008 // RE4008
	ErrThrowInFlight ErrorCode = 4009 // RE4009
	ErrNoThrow       ErrorCode = 4010 // RE4010
	ErrZeroDivide    ErrorCode = 4011 // RE4011
	ErrOverflow      ErrorCode = 4012 // RE4012
	ErrBadUnbox      ErrorCode = 4013 // RE4013
	ErrFrameExpired  ErrorCode = 4014 // RE4014
	ErrNotAction     ErrorCode = 4015 // RE4015
	ErrProtectedWord ErrorCode = 4016 // RE4016
	ErrBadFuncSpec   ErrorCode = 4017 // RE4017
	ErrDone          ErrorCode = 4018 // RE4018: generator exhausted
	ErrVeto          ErrorCode = 4019 // RE4019: early exit requested
	ErrInternal      ErrorCode = 4999 // RE4999: broken invariant
)

// String returns the code as "RE1001".
func (c ErrorCode) String() string {
	return fmt.Sprintf("RE%d", int(c))
}

// Severity decides who may intercept an error. Errors are turned into
// thrown ERROR! labels that RESCUE and TRY can catch; fatal ones skip every
// catcher and surface at the outermost trampoline run.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityFatal
)

func (s Severity) String() string {
	if s == SeverityFatal {
		return "fatal"
	}
	return "error"
}

type codeInfo struct {
	id       string
	severity Severity
}

var codeTable = map[ErrorCode]codeInfo{
	ErrUnreadable:          {"unreadable", SeverityError},
	ErrBadAntiform:         {"bad-antiform", SeverityError},
	ErrNonIsotopic:         {"non-isotopic", SeverityError},
	ErrIllegalKeyword:      {"illegal-keyword", SeverityError},
	ErrNoValue:             {"no-value", SeverityError},
	ErrUnstableConditional: {"unstable-conditional", SeverityError},
	ErrBadConditional:      {"bad-conditional", SeverityError},
	ErrUndecayable:         {"undecayable", SeverityError},
	ErrQuoteDepth:          {"quote-depth", SeverityError},
	ErrBadUnquote:          {"bad-unquote", SeverityError},
	ErrBadType:             {"bad-type", SeverityError},

	ErrOutOfMemory:      {"out-of-memory", SeverityFatal},
	ErrSeriesFrozen:     {"series-frozen", SeverityError},
	ErrSeriesHeld:       {"series-held", SeverityError},
	ErrSeriesProtected:  {"series-protected", SeverityError},
	ErrFixedSize:        {"fixed-size", SeverityError},
	ErrSeriesDecayed:    {"series-decayed", SeverityError},
	ErrDoubleFree:       {"double-free", SeverityFatal},
	ErrFreeManaged:      {"free-managed", SeverityFatal},
	ErrStackLeak:        {"stack-leak", SeverityFatal},
	ErrStackOverflow:    {"stack-overflow", SeverityFatal},
	ErrManualLeak:       {"manual-leak", SeverityFatal},
	ErrDoubleRelease:    {"double-release", SeverityFatal},
	ErrBadMark:          {"bad-mark", SeverityError},
	ErrGuardMismatch:    {"guard-mismatch", SeverityFatal},
	ErrIndexOutOfBounds: {"out-of-range", SeverityError},

	ErrScanInvalid:   {"scan-invalid", SeverityError},
	ErrScanMissing:   {"scan-missing", SeverityError},
	ErrScanExtra:     {"scan-extra", SeverityError},
	ErrScanMismatch:  {"scan-mismatch", SeverityError},
	ErrScanBadNumber: {"scan-bad-number", SeverityError},
	ErrScanIllegal:   {"scan-illegal", SeverityError},

	ErrNoArg:         {"no-arg", SeverityError},
	ErrExpectArg:     {"expect-arg", SeverityError},
	ErrNotBound:      {"not-bound", SeverityError},
	ErrNoLeft:        {"no-left", SeverityError},
	ErrBadVariadic:   {"bad-variadic", SeverityFatal},
	ErrNoCatch:       {"no-catch", SeverityError},
	ErrUser:          {"user", SeverityError},
	ErrHalt:          {"halt", SeverityFatal},
	ErrThrowInFlight: {"throw-in-flight", SeverityFatal},
	ErrNoThrow:       {"no-throw", SeverityFatal},
	ErrZeroDivide:    {"zero-divide", SeverityError},
	ErrOverflow:      {"overflow", SeverityError},
	ErrBadUnbox:      {"bad-unbox", SeverityError},
	ErrFrameExpired:  {"frame-expired", SeverityError},
	ErrNotAction:     {"not-action", SeverityError},
	ErrProtectedWord: {"protected-word", SeverityError},
	ErrBadFuncSpec:   {"bad-func-spec", SeverityError},
	ErrDone:          {"done", SeverityError},
	ErrVeto:          {"veto", SeverityError},
	ErrInternal:      {"internal", SeverityFatal},
}

// ID returns the symbolic name of the code, e.g. "bad-antiform".
func (c ErrorCode) ID() string {
	if info, ok := codeTable[c]; ok {
		return info.id
	}
	return "unknown"
}

// DefaultSeverity returns the severity errors of this code are created with.
func (c ErrorCode) DefaultSeverity() Severity {
	return codeTable[c].severity
}

// Error is the payload of every ERROR! value and of every abrupt failure.
type Error struct {
	Code      ErrorCode
	ID        string // symbolic id; "user" errors may carry their own
	Message   string
	Near      string // source text around the failure
	File      string
	Line      int
	Severity  Severity
	Backtrace []string // labels of the levels that were running, innermost first
}

// NewError creates an error with the code's default id and severity.
func NewError(code ErrorCode, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{
		Code:     code,
		ID:       code.ID(),
		Message:  msg,
		Severity: code.DefaultSeverity(),
	}
}

// Panic raises an abrupt failure. The trampoline recovers it.
func Panic(code ErrorCode, format string, args ...any) {
	panic(NewError(code, format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s (%s)", e.Severity, e.Code, e.ID)
	}
	return fmt.Sprintf("%s %s (%s): %s", e.Severity, e.Code, e.ID, e.Message)
}

// Fatal reports whether catchers must be skipped.
func (e *Error) Fatal() bool {
	return e != nil && e.Severity == SeverityFatal
}

// Is matches errors by code so errors.Is works against sentinel values
// created with NewError.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithNear attaches the source text the error was detected at.
func (e *Error) WithNear(near string) *Error {
	e.Near = near
	return e
}

// WithLocation attaches file and line.
func (e *Error) WithLocation(file string, line int) *Error {
	e.File = file
	e.Line = line
	return e
}

// FormatWithFiles renders the error with the offending source line when the
// file is known to the set.
func (e *Error) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s (%s): %s\n", e.Severity, e.Code, e.ID, e.Message)
	if e.File != "" || e.Line > 0 {
		sb.WriteString("at ")
		if e.File != "" {
			sb.WriteString(e.File)
		} else {
			sb.WriteString("<text>")
		}
		if e.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Line)
		}
		sb.WriteString("\n")
		if files != nil && e.File != "" && e.Line > 0 {
			f, ok := files.GetByPath(e.File)
			ln, err := safecast.Conv[uint32](e.Line)
			if ok && err == nil {
				if text := f.GetLine(ln); text != "" {
					fmt.Fprintf(&sb, "  | %s\n", text)
				}
			}
		}
	}
	if e.Near != "" {
		fmt.Fprintf(&sb, "near: %s\n", e.Near)
	}
	if len(e.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, label := range e.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s\n", i, label)
		}
	}
	return sb.String()
}

// AsError extracts an *Error from a recovered panic value. Anything else is
// not ours and is returned as ok=false.
func AsError(r any) (*Error, bool) {
	e, ok := r.(*Error)
	return e, ok
}
