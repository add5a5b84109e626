package tracker

import (
	"fmt"
	"time"
)

type Status string

const (
	Todo  Status = "Todo"
	Doing Status = "Doing"
	Done  Status = "Done"
)

// ParseStatus accepts the exact texts Todo, Doing and Done.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Todo, Doing, Done:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q (want Done/Todo/Doing)", s)
}

type Label uint8

const (
	Green Label = iota
	Blue
	Red
	Yellow
)

var labelNames = [...]string{"Green", "Blue", "Red", "Yellow"}

// Labels lists every label in display order.
var Labels = []Label{Green, Blue, Red, Yellow}

func (l Label) String() string {
	if int(l) < len(labelNames) {
		return labelNames[l]
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// ParseLabel accepts the exact texts Green, Blue, Red and Yellow.
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if name == s {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("invalid label %q (want Green/Blue/Red/Yellow)", s)
}

// LabelSet is a set of labels. The zero value is the empty set.
type LabelSet uint8

func (s LabelSet) Has(l Label) bool {
	return s&(1<<l) != 0
}

func (s LabelSet) With(l Label) LabelSet {
	return s | 1<<l
}

func (s LabelSet) Without(l Label) LabelSet {
	return s &^ (1 << l)
}

func (s LabelSet) Len() int {
	n := 0
	for _, l := range Labels {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Slice returns the members in display order.
func (s LabelSet) Slice() []Label {
	out := make([]Label, 0, s.Len())
	for _, l := range Labels {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Task is a single tracked item. StartTime and FinishTime are zero when unset.
type Task struct {
	ID         int
	UUID       string
	Subject    string
	Deadline   time.Time
	Status     Status
	Labels     LabelSet
	StartTime  time.Time
	FinishTime time.Time
}

// Started reports whether the task has a start timestamp.
func (t Task) Started() bool {
	return !t.StartTime.IsZero()
}

// Finished reports whether the task has a finish timestamp.
func (t Task) Finished() bool {
	return !t.FinishTime.IsZero()
}

// Elapsed is a span of working time broken down into calendar units.
type Elapsed struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
)

// ElapsedFrom breaks d into days, hours, minutes and seconds. Sub-second
// precision is dropped by flooring, so a negative span keeps non-negative
// hours, minutes and seconds and carries its sign in Days.
func ElapsedFrom(d time.Duration) Elapsed {
	total := floorDiv(d.Milliseconds(), 1000)

	days := floorDiv(total, secondsPerDay)
	total -= days * secondsPerDay

	hours := total / secondsPerHour
	total %= secondsPerHour

	minutes := total / secondsPerMinute
	seconds := total % secondsPerMinute

	return Elapsed{Days: days, Hours: hours, Minutes: minutes, Seconds: seconds}
}

// Duration converts e back into a time.Duration.
func (e Elapsed) Duration() time.Duration {
	secs := e.Days*secondsPerDay + e.Hours*secondsPerHour + e.Minutes*secondsPerMinute + e.Seconds
	return time.Duration(secs) * time.Second
}

func (e Elapsed) String() string {
	return fmt.Sprintf("%dd %dh %dm %ds", e.Days, e.Hours, e.Minutes, e.Seconds)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
