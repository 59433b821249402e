package output

import "time"

// JobRunner runs fn every interval, first firing one interval after the call,
// until the returned stop function is called.
type JobRunner interface {
	Every(interval time.Duration, fn func()) (stop func())
}
