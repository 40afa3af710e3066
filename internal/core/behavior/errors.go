package behavior

import (
	"errors"
	"fmt"

	"github.com/zeusync/substrate/internal/core/identity"
)

var (
	ErrBehaviorFault    = errors.New("behavior: fault")
	ErrUnitNotFound     = errors.New("behavior: unit not found")
	ErrNoCapabilities   = errors.New("behavior: unit implements no pass")
	ErrUnknownBehavior  = errors.New("behavior: unknown behavior")
	ErrInvalidParameter = errors.New("behavior: invalid parameter")
)

// Fault is a unit failure contained by the pipeline.
type Fault struct {
	Owner identity.ID
	Unit  identity.ID
	Name  string
	Pass  Pass
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("behavior %q (unit %d) on owner %d failed in %s pass: %v", f.Name, f.Unit, f.Owner, f.Pass, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

func (f *Fault) Is(target error) bool { return target == ErrBehaviorFault }

// Faults flattens an error returned by Run into its faults.
func Faults(err error) []*Fault {
	var out []*Fault
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *Fault:
			out = append(out, e)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
