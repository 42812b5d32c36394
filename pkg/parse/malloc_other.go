//go:build !linux || !cgo

package parse

// MallocTrim is a no-op outside linux.
func MallocTrim() {}
