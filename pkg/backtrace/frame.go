package backtrace

import (
	"fmt"

	"github.com/vietanhduong/symbolize/pkg/symbolize"
)

// Frame is an owned copy of what was resolved for one program counter.
type Frame struct {
	PC   uintptr
	Func string
	File string
	Line int
	// Resolved is false when no debug information matched PC.
	Resolved bool
}

func (f Frame) String() string {
	if !f.Resolved {
		return fmt.Sprintf("0x%x <unknown>", f.PC)
	}
	if f.File == "" {
		return fmt.Sprintf("0x%x %s", f.PC, f.Func)
	}
	return fmt.Sprintf("0x%x %s\n\t%s:%d", f.PC, f.Func, f.File, f.Line)
}

// Symbolize resolves return addresses, as captured by runtime.Callers,
// into frames. The result has one frame per pc, in order.
func Symbolize(pcs ...uintptr) []Frame {
	frames := make([]Frame, len(pcs))
	lock.Lock()
	defer lock.Unlock()
	for i, pc := range pcs {
		frames[i] = Frame{PC: pc}
		symbolize.ResolveUnsynchronized(symbolize.IP(pc), func(s *symbolize.Symbol) {
			frames[i] = newFrame(pc, s)
		})
	}
	return frames
}

func newFrame(pc uintptr, s *symbolize.Symbol) Frame {
	f := Frame{PC: pc, Resolved: true}
	if name, ok := s.Name(); ok {
		f.Func = name.String()
	}
	if file, ok := s.Filename(); ok {
		f.File = file
	}
	if line, ok := s.Lineno(); ok {
		f.Line = int(line)
	}
	return f
}
