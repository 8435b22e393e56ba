//go:build unix

package mmap

import (
	"golang.org/x/sys/unix"
)

// MapAnon reserves size bytes of private, zero-filled memory outside the Go heap.
func MapAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// Unmap releases memory reserved with MapAnon.
func Unmap(data []byte) error {
	return unix.Munmap(data)
}
