package device

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// DefaultWordDelay paces console read-out at roughly normal speaking speed.
const DefaultWordDelay = 250 * time.Millisecond

// ConsoleEngine reads text out to a writer word by word. It is the speech
// engine for hosts without audio output.
type ConsoleEngine struct {
	out       io.Writer
	wordDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsoleEngine builds a ConsoleEngine writing to out.
func NewConsoleEngine(out io.Writer, wordDelay time.Duration) *ConsoleEngine {
	if wordDelay <= 0 {
		wordDelay = DefaultWordDelay
	}
	return &ConsoleEngine{out: out, wordDelay: wordDelay}
}

// Speak implements SpeechEngine.
func (e *ConsoleEngine) Speak(text string, opts SpeakOptions, cb Callbacks) error {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ErrNothingToSay
	}
	e.Stop()

	delay := e.wordDelay
	if opts.Rate > 0 {
		delay = time.Duration(float64(delay) / opts.Rate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		ticker := time.NewTicker(delay)
		defer ticker.Stop()

		for i, word := range words {
			select {
			case <-ctx.Done():
				fmt.Fprintln(e.out)
				cb.stopped()
				return
			case <-ticker.C:
			}
			if i > 0 {
				fmt.Fprint(e.out, " ")
			}
			fmt.Fprint(e.out, word)
		}
		fmt.Fprintln(e.out)
		cb.done()
	}()
	return nil
}

// Stop implements SpeechEngine. It waits for the interrupted read-out to
// finish writing.
func (e *ConsoleEngine) Stop() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
	e.wg.Wait()
}
