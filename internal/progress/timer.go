// Package progress reports pipeline-stage progress via the teacher's own
// mmio.Timer, the same per-call-site timer construction used all over the
// teacher (model/run-default.go's tt := mmio.NewTimer(), eval.gw.go's
// deferred tt.Print(...)).
package progress

import "github.com/maseology/mmio"

// Timer reports elapsed wall-clock time for a pipeline stage.
type Timer struct {
	t *mmio.Timer
}

// New starts a timer.
func New() *Timer {
	return &Timer{t: mmio.NewTimer()}
}

// Lap prints msg with the elapsed time since New (or the last Lap) and
// resets the lap clock.
func (t *Timer) Lap(msg string) {
	t.t.Lap(msg)
}

// Print prints msg with the cumulative elapsed time, without resetting.
func (t *Timer) Print(msg string) {
	t.t.Print(msg)
}
