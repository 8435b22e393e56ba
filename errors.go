package cellheap

import "github.com/pkg/errors"

// NegativeSizeError is the error returned from CheckNonNegative or other methods if the number being
// tested is less than zero
var NegativeSizeError error = errors.New("size must be zero or greater")
