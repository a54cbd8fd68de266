package scoring

import "errors"

// ErrInvalidThresholds is returned when label thresholds are out of range
// or out of order.
var ErrInvalidThresholds = errors.New("invalid label thresholds")
