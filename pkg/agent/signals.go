package agent

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler implements the two-stage SIGINT contract (spec §4.6,
// §5 Cancellation): the first Ctrl-C does not cancel the current
// iteration — it captures a free-form operator suggestion to carry into
// the next prompt. The second Ctrl-C is fatal: it runs the supplied
// shutdown routine and exits.
type InterruptHandler struct {
	sigCh chan os.Signal

	mu         sync.Mutex
	interrupts int
	suggestion string
}

// NewInterruptHandler returns a handler that is not yet listening; call
// Start to register the signal handler.
func NewInterruptHandler() *InterruptHandler {
	return &InterruptHandler{sigCh: make(chan os.Signal, 2)}
}

// Start registers the SIGINT handler. captureSuggestion is called
// (synchronously, in the signal-handling goroutine) on the first SIGINT to
// collect free-form operator text; shutdown is called on the second SIGINT
// before the process exits with status 1 (spec §6 exit codes).
func (h *InterruptHandler) Start(captureSuggestion func() string, shutdown func()) {
	signal.Notify(h.sigCh, syscall.SIGINT)
	go func() {
		for range h.sigCh {
			h.mu.Lock()
			h.interrupts++
			first := h.interrupts == 1
			h.mu.Unlock()

			if first {
				text := captureSuggestion()
				h.mu.Lock()
				h.suggestion = text
				h.mu.Unlock()
				continue
			}

			shutdown()
			os.Exit(1)
		}
	}()
}

// TakeSuggestion returns and clears the buffered operator suggestion, if
// any, for inclusion in the next prompt.
func (h *InterruptHandler) TakeSuggestion() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.suggestion
	h.suggestion = ""
	return s
}

// Stop unregisters the signal handler.
func (h *InterruptHandler) Stop() {
	signal.Stop(h.sigCh)
	close(h.sigCh)
}
