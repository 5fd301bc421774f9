package symbolize

// maxExecutablePath is the size of the buffer the probe reserves for the
// executable path. Longer paths are not passed to the backend at all.
const maxExecutablePath = 256

func fitsProbeBuffer(path string) bool {
	// room for the terminating NUL the backend expects
	return path != "" && len(path)+1 <= maxExecutablePath
}
