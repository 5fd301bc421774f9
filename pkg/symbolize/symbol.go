package symbolize

import (
	"unicode/utf8"

	"github.com/ianlancetaylor/demangle"
)

type symbolKind uint8

const (
	// symbol-table hit: address and name
	syminfoSymbol symbolKind = iota
	// line-table hit: address, file, line and function
	pcinfoSymbol
)

// Symbol is one resolved debug record handed to a resolve callback.
//
// The byte views it exposes point into memory owned by the backend and are
// valid only until the callback returns. Copy anything that must outlive it,
// and never keep the *Symbol itself.
type Symbol struct {
	kind     symbolKind
	pc       uintptr
	name     []byte
	filename []byte
	lineno   int
}

// Name returns the symbol name, or the function name for a line-table hit.
func (s *Symbol) Name() (SymbolName, bool) {
	if s.name == nil {
		return SymbolName{}, false
	}
	return SymbolName{raw: s.name}, true
}

func (s *Symbol) Addr() (uintptr, bool) {
	if s.pc == 0 {
		return 0, false
	}
	return s.pc, true
}

// FilenameRaw returns the borrowed source file bytes of a line-table hit.
func (s *Symbol) FilenameRaw() ([]byte, bool) {
	if s.kind != pcinfoSymbol {
		return nil, false
	}
	return s.filename, true
}

// Filename returns an owned copy of the source file path.
func (s *Symbol) Filename() (string, bool) {
	raw, ok := s.FilenameRaw()
	if !ok {
		return "", false
	}
	return string(raw), true
}

func (s *Symbol) Lineno() (uint32, bool) {
	if s.kind != pcinfoSymbol {
		return 0, false
	}
	return uint32(s.lineno), true
}

// SymbolName is a possibly mangled symbol name borrowed from the backend.
type SymbolName struct {
	raw []byte
}

func (n SymbolName) Bytes() []byte { return n.raw }

// AsStr returns the name as a string when it is valid UTF-8.
func (n SymbolName) AsStr() (string, bool) {
	if !utf8.Valid(n.raw) {
		return "", false
	}
	return string(n.raw), true
}

// String returns the demangled name, or the raw name when it is not mangled.
func (n SymbolName) String() string { return n.Demangle() }

func (n SymbolName) Demangle(opts ...demangle.Option) string {
	return demangle.Filter(string(n.raw), opts...)
}
