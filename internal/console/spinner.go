package console

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner represents a terminal spinner
type Spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSpinner creates a new spinner with a message
func (c *Console) NewSpinner(message string) *Spinner {
	return &Spinner{
		out:     lockedWriter{c},
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r  %s %s ", spinnerFrames[i%len(spinnerFrames)], s.message)

			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and shows the result. It must follow Start.
func (s *Spinner) Stop(success bool) {
	s.once.Do(func() {
		close(s.stop)
	})
	<-s.done

	if success {
		fmt.Fprintf(s.out, "\r  ✓ %s\n", s.message)
	} else {
		fmt.Fprintf(s.out, "\r  ✗ %s\n", s.message)
	}
}

// lockedWriter serializes spinner frames with the console's other output
type lockedWriter struct {
	c *Console
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	return w.c.out.Write(p)
}
