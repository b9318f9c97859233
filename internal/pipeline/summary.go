package pipeline

import (
	"fmt"
	"strings"
	"time"

	"tournament-stats/internal/apierr"
)

// CodeResult is the outcome for one tournament code.
type CodeResult struct {
	Code           string
	State          State
	MatchIDs       int
	MatchesWritten int
	MatchesSkipped int
	Duplicates     int
	RowsWritten    int
	// Exhausted is set when a call for this code ran out of retries.
	Exhausted bool
	Err       error
}

// Summary aggregates a run.
type Summary struct {
	Codes []CodeResult

	CodesDone      int
	CodesSkipped   int
	CodesFailed    int
	MatchesWritten int
	MatchesSkipped int
	RowsWritten    int

	// Fatal is the error that halted the run, if any.
	Fatal   error
	Elapsed time.Duration
}

func (s *Summary) add(r CodeResult) {
	s.Codes = append(s.Codes, r)
	switch r.State {
	case StateDone:
		s.CodesDone++
	case StateSkipped:
		s.CodesSkipped++
	case StateFailed:
		s.CodesFailed++
	}
	s.MatchesWritten += r.MatchesWritten
	s.MatchesSkipped += r.MatchesSkipped
	s.RowsWritten += r.RowsWritten
}

// Failed reports whether the run was halted.
func (s Summary) Failed() bool {
	return s.Fatal != nil
}

// CodesPending counts codes never started because the run halted.
func (s Summary) CodesPending() int {
	n := 0
	for _, c := range s.Codes {
		if c.State == StatePending {
			n++
		}
	}
	return n
}

// ExitCode is 1 when the run failed, or when nothing was written and at
// least one code gave up after exhausting its retries. Otherwise 0.
func (s Summary) ExitCode() int {
	if s.Failed() {
		return 1
	}
	if s.CodesDone == 0 {
		for _, c := range s.Codes {
			if c.Exhausted {
				return 1
			}
		}
	}
	return 0
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Codes: %d done, %d skipped, %d failed", s.CodesDone, s.CodesSkipped, s.CodesFailed)
	if p := s.CodesPending(); p > 0 {
		fmt.Fprintf(&b, ", %d not started", p)
	}
	fmt.Fprintf(&b, "\nMatches: %d written, %d skipped\nRows written: %d\nElapsed: %v",
		s.MatchesWritten, s.MatchesSkipped, s.RowsWritten, s.Elapsed.Round(time.Second))
	if s.Fatal != nil {
		fmt.Fprintf(&b, "\nFailed (%s): %v", apierr.Kind(s.Fatal), s.Fatal)
	}
	return b.String()
}
