package show

import "errors"

var ErrNotFound = errors.New("show not found")
