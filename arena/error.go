package arena

import "github.com/pkg/errors"

// OutOfCellsError is the error returned from Allocate when the arena has no contiguous
// run of free cells large enough to satisfy the request
var OutOfCellsError error = errors.New("no contiguous run of free cells is large enough")
