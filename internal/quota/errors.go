package quota

import "errors"

// ErrLimitReached indicates the user exhausted their weekly request quota.
var ErrLimitReached = errors.New("limit reached")
