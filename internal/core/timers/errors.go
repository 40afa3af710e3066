package timers

import "errors"

var ErrInvalidSchedule = errors.New("timers: invalid schedule")
