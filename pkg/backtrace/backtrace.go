// Package backtrace owns the process-wide lock that serializes symbol
// resolution and turns resolved symbols into owned frames.
package backtrace

import (
	"sync"

	"github.com/vietanhduong/symbolize/pkg/bt"
	"github.com/vietanhduong/symbolize/pkg/symbolize"
)

// lock serializes every resolution in the process. It is not reentrant:
// callbacks must not call back into this package.
var lock sync.Mutex

// Resolve looks up addr as is and calls cb at most once with the result.
// The *Symbol and the bytes it exposes are only valid inside cb.
func Resolve(addr uintptr, cb func(*symbolize.Symbol)) {
	resolve(symbolize.Address(addr), cb)
}

// ResolveFrame looks up a return address captured from a stack, such as
// the values filled in by runtime.Callers.
func ResolveFrame(ip uintptr, cb func(*symbolize.Symbol)) {
	resolve(symbolize.IP(ip), cb)
}

// SetBackend switches the debug-info backend. Symbols resolved so far are
// unaffected; the new backend loads its state on the next resolution.
func SetBackend(b bt.Backend) {
	lock.Lock()
	defer lock.Unlock()
	symbolize.SetBackend(b)
}

func resolve(what symbolize.ResolveWhat, cb func(*symbolize.Symbol)) {
	lock.Lock()
	defer lock.Unlock()
	symbolize.ResolveUnsynchronized(what, cb)
}
