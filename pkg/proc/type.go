package proc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type ProcMap struct {
	Name       string
	StartAddr  uint64
	EndAddr    uint64
	FileOffset uint64
	DevMajor   uint32
	DevMinor   uint32
	Inode      uint64
	Perm       string
}

func (pm *ProcMap) String() string {
	if pm == nil {
		return ""
	}

	return fmt.Sprintf("%s 0x%016x-0x%016x %s 0x%016x %x:%x %d",
		pm.Name,
		pm.StartAddr,
		pm.EndAddr,
		pm.Perm,
		pm.FileOffset,
		pm.DevMajor,
		pm.DevMinor,
		pm.Inode)
}

func (pm *ProcMap) Executable() bool { return len(pm.Perm) == 4 && pm.Perm[2] == 'x' }

func (pm *ProcMap) Dev() uint64 { return unix.Mkdev(pm.DevMajor, pm.DevMinor) }

func (pm *ProcMap) Contains(addr uint64) bool { return addr >= pm.StartAddr && addr < pm.EndAddr }
