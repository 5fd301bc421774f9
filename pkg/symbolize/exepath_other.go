//go:build !darwin && !freebsd

package symbolize

// executablePath never hands a path to the backend. A conventional self
// path can be pre-created by another user on some systems, so the backend
// is left to locate the image itself (/proc/self/exe and friends).
func executablePath() (string, bool) { return "", false }
