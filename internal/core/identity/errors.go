package identity

import "errors"

var (
	ErrUnknownDomain = errors.New("identity: unknown domain")
	ErrUnknownID     = errors.New("identity: id was never issued")
	ErrDoubleRelease = errors.New("identity: id already released")
)
