// Package symbolize resolves an address of the running process to a symbol
// name and, when line tables are available, a source file and line.
//
// Resolution is delegated to a bt.Backend. Its state is created on first use
// and kept for the life of the process. Nothing in this package locks:
// callers serialize every resolution behind one process-wide lock (see
// package backtrace). Breaking that rule is undefined behavior and is
// detected and turned into a process abort rather than tolerated.
package symbolize

import (
	"sync/atomic"
	"unsafe"
)

// resolving is set for the extent of a resolution to catch callers that
// skip the resolution lock or resolve again from inside a callback.
var resolving atomic.Bool

// ResolveUnsynchronized looks up what and invokes cb at most once with the
// best record found: line-table information when available, otherwise the
// symbol-table entry. cb is not invoked when nothing matches or when no
// debug information could be loaded; backend errors are never reported.
//
// The caller must hold the process-wide resolution lock for the whole call.
// cb must return normally and must not resolve again: a panic escaping cb
// aborts the process.
func ResolveUnsynchronized(what ResolveWhat, cb func(*Symbol)) {
	if !resolving.CompareAndSwap(false, true) {
		abort("concurrent or reentrant resolve of " + what.String())
		return
	}
	defer resolving.Store(false)

	symaddr := what.AddressOrIP()

	state := initState()
	if state == nil {
		return
	}

	frame := callbackFrame{cb: cb}
	data := unsafe.Pointer(&frame)
	ret := backend.PCInfo(state, symaddr, pcinfoCallback, errorCallback, data)
	if ret != 0 && !frame.fired {
		backend.Syminfo(state, symaddr, syminfoCallback, errorCallback, data)
	}
}
