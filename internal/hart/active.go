package hart

import "sync/atomic"

// active holds the most recently constructed Hart so a SIGINT handler
// running on its own goroutine can dump register state without the
// driver loop threading a pointer through main. The same shape as the
// package-level "var memory mem" singleton the teacher's memory package
// uses for its own out-of-band access.
var active atomic.Pointer[Hart]

func setActive(h *Hart) { active.Store(h) }

// Active returns the most recently constructed Hart, or nil if none has
// been created yet.
func Active() *Hart { return active.Load() }
