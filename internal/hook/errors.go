package hook

import "errors"

// ErrClosed is returned when invoking a hook on a closed runner.
var ErrClosed = errors.New("hook runner is closed")
