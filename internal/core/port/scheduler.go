package port

import "time"

type Scheduler interface {
	// AfterFunc runs fn once after d on the thread that delivers input events. The returned
	// function cancels the call if it has not run yet and may be called more than once.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}
