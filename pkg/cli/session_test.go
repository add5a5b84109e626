package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/tasktrack/pkg/tracker"
)

func runScript(t *testing.T, store *tracker.Store, script string, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	s := New(store, strings.NewReader(script), &out, opts...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestAddTask(t *testing.T) {
	store := tracker.NewStore()
	out := runScript(t, store, lines("1", "monthly report", "2024-03-10", "17:30", "8"))

	if !strings.Contains(out, "Task added successfully:") {
		t.Errorf("Expected success message, got:\n%s", out)
	}
	if !strings.Contains(out, "#1 [Todo] monthly report  due 2024-03-10 17:30") {
		t.Errorf("Expected rendered task, got:\n%s", out)
	}
	if !strings.Contains(out, "Exiting Task Management CLI. Goodbye!") {
		t.Errorf("Expected goodbye, got:\n%s", out)
	}

	tasks := store.List()
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	want := time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC)
	if !tasks[0].Deadline.Equal(want) {
		t.Errorf("Expected deadline %v, got %v", want, tasks[0].Deadline)
	}
}

func TestAddTaskRejectsBadDeadline(t *testing.T) {
	tests := []struct {
		name, date, clock string
	}{
		{"bad date", "2024-13-01", "10:00"},
		{"date text", "tomorrow", "10:00"},
		{"bad time", "2024-03-10", "25:00"},
		{"no colon", "2024-03-10", "1000"},
		{"minutes", "2024-03-10", "10:xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tracker.NewStore()
			out := runScript(t, store, lines("1", "x", tt.date, tt.clock, "8"))
			if !strings.Contains(out, "Invalid date or time format. Task not added.") {
				t.Errorf("Expected rejection, got:\n%s", out)
			}
			if store.Len() != 0 {
				t.Errorf("Expected no task added, got %d", store.Len())
			}
		})
	}
}

func TestRemoveTask(t *testing.T) {
	store := tracker.NewStore()
	store.Add("a", time.Now())
	out := runScript(t, store, lines("2", "1", "2", "1", "2", "abc", "8"))

	for _, want := range []string{
		"Task removed successfully.",
		"Task not found.",
		"Invalid task id. Task not removed.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}
}

func TestLabels(t *testing.T) {
	store := tracker.NewStore()
	store.Add("write report", time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC))

	out := runScript(t, store, lines(
		"3", "1", "Red",
		"3", "1", "Blue",
		"3", "1", "Purple",
		"3", "x", "Red",
		"3", "9", "Red",
		"4", "1", "Red",
		"4", "1", "Yellow",
		"8",
	))

	for _, want := range []string{
		"Label added successfully:",
		"labels: Blue, Red",
		"Invalid label. Please enter a valid label (Green/Blue/Red/Yellow).",
		"Invalid task id. Label not added.",
		"task 9 not found",
		"Label removed successfully:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}

	task, _ := store.Get(1)
	if task.Labels.Has(tracker.Red) || !task.Labels.Has(tracker.Blue) {
		t.Errorf("Expected only Blue, got %v", task.Labels.Slice())
	}
}

func TestChangeStatusAndLength(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := tracker.NewStore(tracker.WithClock(func() time.Time {
		now := clock
		clock = clock.Add(3661 * time.Second)
		return now
	}))
	store.Add("write report", time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC))

	out := runScript(t, store, lines(
		"7", "1",
		"5", "1", "Doing",
		"5", "1", "Finished",
		"5", "1", "Done",
		"7", "1",
		"7", "2",
		"8",
	))

	for _, want := range []string{
		"task 1: task is not done",
		"Task status changed successfully:",
		"#1 [Doing] write report",
		"started  2024-03-01 09:00",
		"Invalid status. Please enter a valid status (Done/Todo/Doing).",
		"finished 2024-03-01 10:01",
		"Task length retrieved successfully:",
		"0 days, 1 hours, 1 minutes, 1 seconds",
		"task 2 not found",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}
}

func TestTaskLengthCorrupted(t *testing.T) {
	store := tracker.NewStore()
	store.Add("skipped", time.Now())
	out := runScript(t, store, lines("5", "1", "Done", "7", "1", "8"))
	if !strings.Contains(out, "task 1: task data corrupted") {
		t.Errorf("Expected corrupted message, got:\n%s", out)
	}
}

func TestSearch(t *testing.T) {
	store := tracker.NewStore()
	d := time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC)
	store.Add("monthly report", d)
	store.Add("groceries", d)
	store.AddLabel(2, tracker.Red)

	out := runScript(t, store, lines(
		"6", "subject", "Report",
		"6", "label", "Red",
		"6", "label", "Pink",
		"6", "status", "Doing",
		"6", "deadline", "x",
		"8",
	))

	for _, want := range []string{
		"#1 [Todo] monthly report",
		"#2 [Todo] groceries",
		"Invalid label. Please enter a valid label (Green/Blue/Red/Yellow).",
		"No tasks found.",
		"Invalid search mode.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}
}

func TestInvalidOptionAndEOF(t *testing.T) {
	store := tracker.NewStore()
	out := runScript(t, store, lines("42", "hello"))
	if strings.Count(out, "Invalid option. Please choose again.") != 2 {
		t.Errorf("Expected two invalid option messages, got:\n%s", out)
	}
	if strings.Contains(out, "Goodbye") {
		t.Error("Expected end of input to exit without goodbye")
	}

	// End of input in the middle of a command is not an error either.
	runScript(t, store, lines("1", "half a task"))
	if store.Len() != 0 {
		t.Errorf("Expected no task from a truncated command, got %d", store.Len())
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := New(tracker.NewStore(), strings.NewReader("8\n"), &out).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSync(t *testing.T) {
	store := tracker.NewStore()
	d := time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC)
	store.Add("keep", d)
	store.Add("gone", d)

	var calls int
	var gotTasks []tracker.Task
	var gotRemoved []string
	sync := func(ctx context.Context, tasks []tracker.Task, removed []string) (string, error) {
		calls++
		gotTasks, gotRemoved = tasks, removed
		return "1 created", nil
	}

	out := runScript(t, store, lines("2", "2", "9", "9", "8"), WithSync(sync))
	if !strings.Contains(out, "Synced to calendar: 1 created") {
		t.Errorf("Expected sync summary, got:\n%s", out)
	}
	if calls != 2 {
		t.Fatalf("Expected 2 sync calls, got %d", calls)
	}
	if len(gotTasks) != 1 || gotTasks[0].Subject != "keep" {
		t.Errorf("Expected only the kept task, got %+v", gotTasks)
	}
	// The removal was reported by the first push and cleared afterwards.
	if len(gotRemoved) != 0 {
		t.Errorf("Expected removed list cleared after a push, got %v", gotRemoved)
	}
}

func TestSyncReportsRemoved(t *testing.T) {
	store := tracker.NewStore()
	gone := store.Add("gone", time.Now())

	var gotRemoved []string
	sync := func(ctx context.Context, tasks []tracker.Task, removed []string) (string, error) {
		gotRemoved = append([]string(nil), removed...)
		return "partial", errors.New("boom")
	}

	out := runScript(t, store, lines("2", "1", "9", "8"), WithSync(sync))
	if len(gotRemoved) != 1 || gotRemoved[0] != gone.UUID {
		t.Errorf("Expected removed UUID %s, got %v", gone.UUID, gotRemoved)
	}
	if !strings.Contains(out, "Sync finished with errors (partial): boom") {
		t.Errorf("Expected sync error, got:\n%s", out)
	}
}

func TestSyncNotConfigured(t *testing.T) {
	out := runScript(t, tracker.NewStore(), lines("9", "8"))
	if !strings.Contains(out, "Calendar sync is not configured.") {
		t.Errorf("Expected not configured message, got:\n%s", out)
	}
}

func TestParseDeadline(t *testing.T) {
	got, err := parseDeadline(" 2024-02-29 ", "9:05", time.UTC)
	if err != nil {
		t.Fatalf("parseDeadline failed: %v", err)
	}
	want := time.Date(2024, 2, 29, 9, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
