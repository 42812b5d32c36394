//go:build linux && cgo

package parse

// #include <malloc.h>
import "C"

// MallocTrim returns freed C heap memory to the operating system. Long runs
// that parse many files on many goroutines otherwise leave glibc arenas
// fragmented.
func MallocTrim() {
	C.malloc_trim(0)
}
