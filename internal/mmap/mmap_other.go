//go:build !unix

package mmap

import "errors"

var ErrNotSupported = errors.New("anonymous mappings not supported on this platform")

func MapAnon(size int) ([]byte, error) {
	return nil, ErrNotSupported
}

func Unmap(data []byte) error {
	return nil
}
