package symbolize

import "fmt"

// ResolveWhat is the input of a resolution: either an address looked up as
// is, or an instruction pointer captured while unwinding.
type ResolveWhat struct {
	addr uintptr
	ip   bool
}

func Address(addr uintptr) ResolveWhat { return ResolveWhat{addr: addr} }

// IP describes a return address taken from a stack frame.
func IP(ip uintptr) ResolveWhat { return ResolveWhat{addr: ip, ip: true} }

// AddressOrIP returns the address to look up. Instruction pointers are
// moved back by one so the lookup lands inside the call instruction rather
// than on whatever follows it.
func (w ResolveWhat) AddressOrIP() uintptr {
	if w.ip {
		return adjustIP(w.addr)
	}
	return w.addr
}

func (w ResolveWhat) String() string {
	if w.ip {
		return fmt.Sprintf("ip 0x%x", w.addr)
	}
	return fmt.Sprintf("address 0x%x", w.addr)
}

func adjustIP(ip uintptr) uintptr {
	if ip == 0 {
		return 0
	}
	return ip - 1
}
