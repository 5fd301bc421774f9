package symbolize

import (
	"bytes"

	"golang.org/x/sys/unix"
)

func executablePath() (string, bool) {
	// kern.proc.pathname of pid -1 is the calling process
	raw, err := unix.SysctlRaw("kern.proc.pathname", -1)
	if err != nil {
		return "", false
	}
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	path := string(raw)
	if !fitsProbeBuffer(path) {
		return "", false
	}
	return path, true
}
