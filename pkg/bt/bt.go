// Package bt declares the primitive operations of a libbacktrace-style
// debug-info backend. Callbacks follow the C shape of the native library:
// a fixed signature plus an opaque data pointer handed back unchanged.
//
// Byte slices given to callbacks are borrowed from the backend and are only
// valid until the callback returns. A nil slice stands for a NULL pointer.
package bt

import "unsafe"

// State is an opaque handle summarizing the debug information of the
// current image. A nil State means no debug information is available.
type State any

type ErrorCallback func(data unsafe.Pointer, msg []byte, errnum int)

// FullCallback receives the result of a line-table lookup. A non-zero return
// stops the lookup and is returned from PCInfo.
type FullCallback func(data unsafe.Pointer, pc uintptr, filename []byte, lineno int, function []byte) int

// SyminfoCallback receives the result of a symbol-table lookup.
type SyminfoCallback func(data unsafe.Pointer, pc uintptr, symname []byte, symval, symsize uintptr)

type Backend interface {
	// CreateState loads debug information for the executable at filename, or
	// lets the backend locate the current executable when filename is nil.
	// There is no way to release a State.
	CreateState(filename []byte, threaded bool, onError ErrorCallback, data unsafe.Pointer) State

	// PCInfo resolves pc against line tables. It returns 0 when the callback
	// handled the lookup, non-zero otherwise.
	PCInfo(state State, pc uintptr, cb FullCallback, onError ErrorCallback, data unsafe.Pointer) int

	// Syminfo resolves pc against the symbol table. The callback fires
	// synchronously, with a nil symname when nothing matched.
	Syminfo(state State, pc uintptr, cb SyminfoCallback, onError ErrorCallback, data unsafe.Pointer)
}
