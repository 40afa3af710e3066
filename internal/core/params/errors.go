package params

import "errors"

var (
	ErrTypeMismatch = errors.New("params: type mismatch")
	ErrNotOrdered   = errors.New("params: kind has no ordering")
	ErrUnknownKind  = errors.New("params: unknown kind")
	ErrBadValue     = errors.New("params: malformed value")
)
