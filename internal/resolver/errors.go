package resolver

import "errors"

// ErrUnknownPolicy is returned when a policy name does not match any known policy.
var ErrUnknownPolicy = errors.New("unknown base path policy")
