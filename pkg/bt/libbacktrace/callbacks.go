//go:build cgo && libbacktrace

package libbacktrace

/*
#include <stdint.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

func fromData(data unsafe.Pointer) *call {
	return cgo.Handle(uintptr(data)).Value().(*call)
}

//export goErrorCallback
func goErrorCallback(data unsafe.Pointer, msg *C.char, errnum C.int) {
	c := fromData(data)
	if c.onError != nil {
		c.onError(c.data, borrow(msg), int(errnum))
	}
}

//export goFullCallback
func goFullCallback(data unsafe.Pointer, pc C.uintptr_t, filename *C.char, lineno C.int, function *C.char) C.int {
	c := fromData(data)
	return C.int(c.full(c.data, uintptr(pc), borrow(filename), int(lineno), borrow(function)))
}

//export goSyminfoCallback
func goSyminfoCallback(data unsafe.Pointer, pc C.uintptr_t, symname *C.char, symval, symsize C.uintptr_t) {
	c := fromData(data)
	c.syminfo(c.data, uintptr(pc), borrow(symname), uintptr(symval), uintptr(symsize))
}
