// Package syms is a debug-info backend written in Go. It reads the ELF
// image of the running process: its symbol table, the Go line table when
// present, and DWARF from the image or a separate debug file.
package syms

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/vietanhduong/symbolize/pkg/bt"
	"github.com/vietanhduong/symbolize/pkg/proc"
)

var errInvalidState = errors.New("invalid backend state")

type Backend struct {
	opts *Options
}

var _ bt.Backend = (*Backend)(nil)

func New(opts *Options) *Backend {
	if opts == nil {
		opts = defaultOptions
	}
	return &Backend{opts: opts}
}

// state is the bt.State of this backend. Strings handed to callbacks are
// copied into the scratch buffers, so they are overwritten by the next
// lookup on the same state.
type state struct {
	mu  *sync.Mutex
	img *image

	fileBuf []byte
	funcBuf []byte
}

func (s *state) lock() {
	if s.mu != nil {
		s.mu.Lock()
	}
}

func (s *state) unlock() {
	if s.mu != nil {
		s.mu.Unlock()
	}
}

func (b *Backend) Options() Options { return *b.opts }

func (b *Backend) CreateState(filename []byte, threaded bool, onError bt.ErrorCallback, data unsafe.Pointer) bt.State {
	path := proc.SelfExe()
	if filename != nil {
		path = string(filename)
	}
	img, err := loadImage(path, b.opts, reporter(onError, data))
	if err != nil {
		reportError(onError, data, err, -1)
		return nil
	}
	s := &state{img: img}
	if threaded {
		s.mu = &sync.Mutex{}
	}
	return s
}

func (b *Backend) PCInfo(st bt.State, pc uintptr, cb bt.FullCallback, onError bt.ErrorCallback, data unsafe.Pointer) int {
	s, ok := st.(*state)
	if !ok || s == nil {
		reportError(onError, data, errInvalidState, -1)
		return -1
	}
	s.lock()
	defer s.unlock()

	addr := uint64(pc) - s.img.bias
	file, line, fn, ok := s.img.lineInfo(addr, reporter(onError, data))
	if !ok {
		return cb(data, pc, nil, 0, nil)
	}
	s.fileBuf = append(s.fileBuf[:0], file...)
	var function []byte
	if fn != "" {
		s.funcBuf = append(s.funcBuf[:0], fn...)
		function = s.funcBuf
	}
	return cb(data, pc, s.fileBuf, line, function)
}

func (b *Backend) Syminfo(st bt.State, pc uintptr, cb bt.SyminfoCallback, onError bt.ErrorCallback, data unsafe.Pointer) {
	s, ok := st.(*state)
	if !ok || s == nil {
		reportError(onError, data, errInvalidState, -1)
		return
	}
	s.lock()
	defer s.unlock()

	sym, ok := s.img.symbol(uint64(pc) - s.img.bias)
	if !ok {
		cb(data, pc, nil, 0, 0)
		return
	}
	s.funcBuf = append(s.funcBuf[:0], sym.Name...)
	cb(data, pc, s.funcBuf, uintptr(sym.Start+s.img.bias), uintptr(sym.Size))
}

func reportError(onError bt.ErrorCallback, data unsafe.Pointer, err error, errnum int) {
	if onError != nil {
		onError(data, []byte(err.Error()), errnum)
	}
}

func reporter(onError bt.ErrorCallback, data unsafe.Pointer) func(error) {
	return func(err error) { reportError(onError, data, err, 0) }
}
