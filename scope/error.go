package scope

import "github.com/pkg/errors"

// NotDefinedError is the error returned from Get when no binding with the requested
// name exists
var NotDefinedError error = errors.New("variable not defined")
