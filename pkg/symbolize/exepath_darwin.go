package symbolize

import "os"

// executablePath reports the path the kernel recorded when the image was
// executed. The backend has no /proc/self/exe to fall back on here.
func executablePath() (string, bool) {
	path, err := os.Executable()
	if err != nil || !fitsProbeBuffer(path) {
		return "", false
	}
	return path, true
}
