// Package shutdown runs registered cleanup hooks in priority order when the
// process receives an interrupt. The serve command registers the HTTP
// listener at ingress priority so new render requests stop arriving before
// in-flight engine instances are drained.
package shutdown

import (
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

const (
	// PriorityIngress hooks run first: stop accepting new work.
	PriorityIngress = 0
	// PriorityDefault is for ordinary cleanup.
	PriorityDefault = 100
	// PriorityEngines hooks run last: dispose remaining browser instances.
	PriorityEngines = 200
)

type hook struct {
	label    string
	priority int
	fn       func()
}

var (
	hooksMu sync.Mutex
	hooks   []hook
	once    sync.Once
)

// AddHook registers a cleanup hook with default priority.
func AddHook(label string, fn func()) {
	AddHookWithPriority(label, PriorityDefault, fn)
}

// AddHookWithPriority registers a cleanup hook. Lower priorities run first.
func AddHookWithPriority(label string, priority int, fn func()) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = append(hooks, hook{label: label, priority: priority, fn: fn})
}

// Shutdown executes all registered hooks in priority order. Panicking hooks
// are logged and skipped so later hooks still run.
func Shutdown() {
	hooksMu.Lock()
	pending := hooks
	hooks = nil
	hooksMu.Unlock()

	if len(pending) == 0 {
		return
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].priority < pending[j].priority
	})

	logger.Infof("executing %d shutdown hooks", len(pending))
	for _, h := range pending {
		logger.Debugf("shutdown hook %s (priority=%d)", h.label, h.priority)
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("panic in shutdown hook %s: %v", h.label, r)
				}
			}()
			h.fn()
		}()
	}
}

// WaitForSignal blocks until SIGINT/SIGTERM, runs the hooks, and exits. A
// second signal forces immediate exit.
func WaitForSignal() {
	once.Do(func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		sig := <-sigChan
		logger.Infof("received %s, shutting down", sig)

		go func() {
			<-sigChan
			logger.Warnf("second signal, forcing exit")
			os.Exit(1)
		}()

		Shutdown()
		os.Exit(0)
	})
}
