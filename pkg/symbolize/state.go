package symbolize

import (
	"github.com/golang/glog"
	"github.com/vietanhduong/symbolize/pkg/bt"
)

// stateCell holds the one backend state of the process. It is written once
// and read by every later resolution. There is no locking: all access
// happens under the resolution lock held by callers of
// ResolveUnsynchronized, and the backend offers no way to free a state.
type stateCell struct {
	initialized bool
	state       bt.State
}

var (
	backend bt.Backend = defaultBackend()
	cell    stateCell
)

// SetBackend replaces the backend used for resolution and forgets any state
// created by the previous one. Same precondition as ResolveUnsynchronized:
// the caller holds the resolution lock and no resolve is in progress.
func SetBackend(b bt.Backend) {
	backend = b
	cell = stateCell{}
}

// DefaultBackend returns a new instance of the backend this build resolves
// with when none was set.
func DefaultBackend() bt.Backend { return defaultBackend() }

// initState returns the cached state, creating it on first use. A failed
// creation is cached too, so the backend is asked at most once.
func initState() bt.State {
	if cell.initialized {
		return cell.state
	}
	cell.initialized = true

	var filename []byte
	if path, ok := executablePath(); ok {
		filename = []byte(path)
	}
	// threaded=false: every call already runs under the resolution lock
	cell.state = backend.CreateState(filename, false, errorCallback, nil)
	if cell.state == nil {
		glog.V(2).Infof("No debug info available for the current executable")
	}
	return cell.state
}
