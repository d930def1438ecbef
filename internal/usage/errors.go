package usage

import "errors"

// ErrLimitReached indicates the identity exhausted its quota for the window.
var ErrLimitReached = errors.New("limit reached")
