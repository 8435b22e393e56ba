package cellheap

import (
	cerrors "github.com/cockroachdb/errors"
)

func CheckNonNegative[T ~int](number T, name string) error {
	if number < 0 {
		return cerrors.Wrapf(NegativeSizeError, "%s is %d", name, number)
	}
	return nil
}
