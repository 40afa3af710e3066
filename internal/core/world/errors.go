package world

import "errors"

var (
	ErrObjectNotFound = errors.New("world: object not found")
	ErrQueueFull      = errors.New("world: command queue full")
	ErrInvalidConfig  = errors.New("world: invalid config")
	ErrBadBlueprint   = errors.New("world: bad blueprint")
)
