// Package goroutine starts background work that must not take the process down.
package goroutine

import (
	"runtime/debug"

	"github.com/kesher-io/kesher/internal/shared/logger"
)

// SafeGo runs fn on its own goroutine. A panic is logged under name with the
// stack and swallowed; deferred calls inside fn still run first.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer recoverAndLog(log, name)
		fn()
	}()
}

func recoverAndLog(log logger.Interface, name string) {
	r := recover()
	if r == nil {
		return
	}
	log.Errorw("background task panicked",
		"task", name,
		"panic", r,
		"stack", string(debug.Stack()),
	)
}
