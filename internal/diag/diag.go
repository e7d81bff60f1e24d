// Package diag is the optional diagnostic channel of the detector.
//
// A *log.Logger satisfies Logger, so callers usually pass
// log.New(os.Stderr, ...) or log.Default(). Nop discards everything and is
// what the pipeline uses when nothing is attached.
package diag

import (
	"log"
	"os"
	"strings"
)

// Logger receives free-text progress and diagnostic messages.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Nop is a Logger that discards all messages.
type Nop struct{}

func (Nop) Printf(string, ...interface{}) {}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}

// FromLevel returns a stderr logger when level is "debug" and Nop otherwise.
func FromLevel(level string) Logger {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return log.New(os.Stderr, "setcards: ", log.Ldate|log.Ltime|log.Lshortfile)
	}
	return Nop{}
}
