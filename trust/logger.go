package trust

import (
	"fmt"
	"log"
	"sync"
	"testing"
)

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

// DefaultLogger writes to the standard logger.
func DefaultLogger() Logger { return log.Default() }

type testLogger struct {
	t testing.TB
}

func (l testLogger) Printf(message string, args ...interface{}) {
	l.t.Helper()
	l.t.Logf(message, args...)
}

// TestLogger writes to the test log, so output is only shown for failed tests or with -v.
func TestLogger(t testing.TB) Logger {
	return testLogger{t}
}

// CapturingLogger keeps all messages, e.g. for asserting on them.
type CapturingLogger struct {
	output []string
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, fmt.Sprintf(message, args...))
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() []string {
	l.lock.Lock()
	ret := append([]string(nil), l.output...)
	l.lock.Unlock()
	return ret
}
