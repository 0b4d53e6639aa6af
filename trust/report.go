package trust

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/wansing/nexo/util"
)

// maxValueLen limits the length of logged values, e.g. response bodies.
const maxValueLen = 200

type Mismatch struct {
	Field    string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %q, was %q", m.Field, util.Trunc(m.Expected, maxValueLen), util.Trunc(m.Actual, maxValueLen))
}

// Report lists mismatches in the order in which they were found. An empty Report means success.
type Report []Mismatch

func (r Report) OK() bool {
	return len(r) == 0
}

// Err returns a *ValidationError, or nil if the report is empty.
func (r Report) Err() error {
	if len(r) == 0 {
		return nil
	}
	return &ValidationError{Report: r}
}

var (
	failColor = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
)

// Log writes one line per mismatch, or one line if everything matched.
func (r Report) Log(logger Logger, subject string) {
	if len(r) == 0 {
		logger.Printf("%s %s", okColor.Sprint("ok"), subject)
		return
	}
	logger.Printf("%s %s: %d incorrect", failColor.Sprint("FAIL"), subject, len(r))
	for _, m := range r {
		logger.Printf("  %s", m)
	}
}
