package console

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultFrames is the progress animation shown while reports are generated.
var DefaultFrames = []string{
	"|▷▷▷▷▷▷▷▷|", "/▶▷▷▷▷▷▷▷|", "-▶▶▷▷▷▷▷▷|", "\\▶▶▶▷▷▷▷▷|", "|▶▶▶▶▷▷▷▷|", "/▶▶▶▶▶▷▷▷|", "-▶▶▶▶▶▶▷▷|", "\\▶▶▶▶▶▶▶▷|",
	"|▶▶▶▶▶▶▶▶|", "|▶▶▶▶▶▶▶▷\\", "|▶▶▶▶▶▶▷▷-", "|▶▶▶▶▶▷▷▷/", "|▶▶▶▶▷▷▷▷|", "|▶▶▶▷▷▷▷▷\\", "|▶▶▷▷▷▷▷▷-", "|▶▷▷▷▷▷▷▷/",
}

// Spinner redraws a message and an animation frame on one line until stopped.
type Spinner struct {
	out      io.Writer
	message  string
	frames   []string
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{out: out, message: message, frames: DefaultFrames, interval: 250 * time.Millisecond}
}

// Start runs the animation in its own goroutine until ctx is done or Stop is called.
func (s *Spinner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i = (i + 1) % len(s.frames) {
			s.mu.Lock()
			fmt.Fprintf(s.out, "%s%s\r", s.message, s.frames[i])
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}(s.done)
}

// Println prints a line above the animation.
func (s *Spinner) Println(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r")
	fmt.Fprintln(s.out, a...)
}

// Stop ends the animation and waits for the goroutine to exit.
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	fmt.Fprint(s.out, "\r")
}
