// Package inject rewrites text in the focused application, choosing how
// per application and element, and verifying direct writes.
package inject

import (
	"fmt"
	"strings"
	"time"
)

// Strategy is one of the fixed injection techniques.
type Strategy uint8

const (
	// Instant types backspaces and text with no delays.
	Instant Strategy = iota
	// Fast types with short delays.
	Fast
	// Slow types with millisecond delays for heavy render pipelines.
	Slow
	// Selection extends the selection left instead of deleting, then types.
	Selection
	// Autocomplete clears inline suggestions with a forward delete first.
	Autocomplete
	// AXDirect writes the element's value through the accessibility API.
	AXDirect
)

var strategyNames = [...]string{
	Instant:      "instant",
	Fast:         "fast",
	Slow:         "slow",
	Selection:    "selection",
	Autocomplete: "autocomplete",
	AXDirect:     "ax_direct",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// ParseStrategy accepts the names returned by String.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	if name == "axdirect" {
		return AXDirect, nil
	}
	return 0, fmt.Errorf("inject: unknown strategy %q", name)
}

// Delays is a timing profile.
type Delays struct {
	// InterKey separates synthesized deletes.
	InterKey time.Duration
	// Settle follows the deletes, before typing.
	Settle time.Duration
	// PostType separates text chunks.
	PostType time.Duration
}

func us(n int) time.Duration { return time.Duration(n) * time.Microsecond }

// Default timing profiles.
var (
	NoDelays       = Delays{}
	FastDelays     = Delays{InterKey: us(1000), Settle: us(3000), PostType: us(1500)}
	TerminalDelays = Delays{InterKey: us(3000), Settle: us(6000), PostType: us(3000)}
	ElectronDelays = Delays{InterKey: us(2000), Settle: us(4000), PostType: us(2000)}
)

// ProfileFor returns the default delays of s.
func ProfileFor(s Strategy) Delays {
	switch s {
	case Fast:
		return FastDelays
	case Slow:
		return TerminalDelays
	default:
		return NoDelays
	}
}

// Decision is what the selector chose for the focused context.
type Decision struct {
	Strategy Strategy
	Delays   Delays
	AppID    string
	Role     string
	// Rule names the table rule that matched.
	Rule string
}

// Outcome is how an injection ended.
type Outcome uint8

const (
	// OutcomeSuccess means the requested strategy completed.
	OutcomeSuccess Outcome = iota
	// OutcomeForeignOverride means the application appended to a direct
	// write and the text was re-typed with Autocomplete.
	OutcomeForeignOverride
	// OutcomeTransientFailure means accessibility calls kept failing and
	// the text was typed with Autocomplete instead.
	OutcomeTransientFailure
	// OutcomeFailed means synthesized events could not be posted.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeForeignOverride:
		return "foreign_override"
	case OutcomeTransientFailure:
		return "transient_failure"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Report tells the caller what an injection actually did.
type Report struct {
	Requested Strategy
	Applied   Strategy
	Outcome   Outcome
	// Attempts counts AXDirect attempts; it is 1 for keyed strategies.
	Attempts int
	Err      error
}

// Fallback reports whether a strategy other than the requested one ran.
func (r Report) Fallback() bool {
	return r.Requested != r.Applied
}
