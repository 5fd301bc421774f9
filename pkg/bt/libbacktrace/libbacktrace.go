//go:build cgo && libbacktrace

// Package libbacktrace binds the native libbacktrace library as a
// bt.Backend. Build with -tags libbacktrace and libbacktrace installed.
package libbacktrace

/*
#cgo LDFLAGS: -lbacktrace
#include <stdint.h>
#include <string.h>
#include <backtrace.h>

extern void goErrorCallback(void *data, char *msg, int errnum);
extern int goFullCallback(void *data, uintptr_t pc, char *filename, int lineno, char *function);
extern void goSyminfoCallback(void *data, uintptr_t pc, char *symname, uintptr_t symval, uintptr_t symsize);

static struct backtrace_state *bt_create_state(const char *filename, int threaded, uintptr_t data) {
	return backtrace_create_state(filename, threaded,
		(backtrace_error_callback)goErrorCallback, (void *)data);
}

static int bt_pcinfo(struct backtrace_state *state, uintptr_t pc, uintptr_t data) {
	return backtrace_pcinfo(state, pc,
		(backtrace_full_callback)goFullCallback,
		(backtrace_error_callback)goErrorCallback, (void *)data);
}

static int bt_syminfo(struct backtrace_state *state, uintptr_t pc, uintptr_t data) {
	return backtrace_syminfo(state, pc,
		(backtrace_syminfo_callback)goSyminfoCallback,
		(backtrace_error_callback)goErrorCallback, (void *)data);
}
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/vietanhduong/symbolize/pkg/bt"
)

type Backend struct{}

var _ bt.Backend = Backend{}

func New() Backend { return Backend{} }

// call carries the Go side of one backend call through the C data
// pointer as a cgo.Handle, since Go pointers cannot be stored in C.
type call struct {
	full    bt.FullCallback
	syminfo bt.SyminfoCallback
	onError bt.ErrorCallback
	data    unsafe.Pointer
}

func (c *call) handle() (cgo.Handle, C.uintptr_t) {
	h := cgo.NewHandle(c)
	return h, C.uintptr_t(uintptr(h))
}

func (Backend) CreateState(filename []byte, threaded bool, onError bt.ErrorCallback, data unsafe.Pointer) bt.State {
	var cfilename *C.char
	if filename != nil {
		// the state keeps the filename for its whole life: never freed
		cfilename = (*C.char)(C.CBytes(append(filename[:len(filename):len(filename)], 0)))
	}
	var cthreaded C.int
	if threaded {
		cthreaded = 1
	}

	h, ch := (&call{onError: onError, data: data}).handle()
	defer h.Delete()

	state := C.bt_create_state(cfilename, cthreaded, ch)
	if state == nil {
		return nil
	}
	return state
}

func (Backend) PCInfo(st bt.State, pc uintptr, cb bt.FullCallback, onError bt.ErrorCallback, data unsafe.Pointer) int {
	state, ok := st.(*C.struct_backtrace_state)
	if !ok || state == nil {
		return -1
	}
	h, ch := (&call{full: cb, onError: onError, data: data}).handle()
	defer h.Delete()
	return int(C.bt_pcinfo(state, C.uintptr_t(pc), ch))
}

func (Backend) Syminfo(st bt.State, pc uintptr, cb bt.SyminfoCallback, onError bt.ErrorCallback, data unsafe.Pointer) {
	state, ok := st.(*C.struct_backtrace_state)
	if !ok || state == nil {
		return
	}
	h, ch := (&call{syminfo: cb, onError: onError, data: data}).handle()
	defer h.Delete()
	C.bt_syminfo(state, C.uintptr_t(pc), ch)
}

// borrow views a C string without copying. nil for NULL.
func borrow(s *C.char) []byte {
	if s == nil {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(s)), C.strlen(s))
}
