package symbolize

import (
	"unsafe"

	"github.com/golang/glog"
)

// callbackFrame travels through the backend as the opaque data pointer of a
// lookup. It lives on the resolving goroutine for the duration of one
// ResolveUnsynchronized call.
type callbackFrame struct {
	cb    func(*Symbol)
	fired bool
}

// abort terminates the process. Replaced in tests.
var abort = func(reason string) {
	glog.Fatalf("symbolize: %s", reason)
}

// bomb aborts the process when it goes off while still armed, that is when
// the closure it guards unwinds instead of returning.
type bomb struct {
	armed bool
}

func (b *bomb) explode() {
	if b.armed {
		abort("resolve callback did not return normally")
	}
}

func errorCallback(_ unsafe.Pointer, msg []byte, errnum int) {
	// Backend errors read as "no symbol" to callers.
	glog.V(5).Infof("Debug info backend error %d: %s", errnum, msg)
}

func syminfoCallback(data unsafe.Pointer, pc uintptr, symname []byte, _, _ uintptr) {
	if symname == nil {
		return
	}
	call(data, &Symbol{
		kind: syminfoSymbol,
		pc:   pc,
		name: symname,
	})
}

func pcinfoCallback(data unsafe.Pointer, pc uintptr, filename []byte, lineno int, function []byte) int {
	if filename == nil || function == nil {
		return -1
	}
	if (*callbackFrame)(data).fired {
		// inlined callers of a frame already reported
		return 1
	}
	call(data, &Symbol{
		kind:     pcinfoSymbol,
		pc:       pc,
		name:     function,
		filename: filename,
		lineno:   lineno,
	})
	return 0
}

func call(data unsafe.Pointer, sym *Symbol) {
	frame := (*callbackFrame)(data)
	if frame.fired {
		return
	}
	frame.fired = true

	b := bomb{armed: true}
	defer b.explode()
	frame.cb(sym)
	b.armed = false
}
