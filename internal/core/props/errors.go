package props

import "errors"

var ErrNotFound = errors.New("props: property not found")
