package gcal

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/tasktrack/pkg/tracker"
	"google.golang.org/api/calendar/v3"
)

// TaskProperty is the private extended property that ties an event to a task.
const TaskProperty = "tracker_uuid"

const defaultSlot = 30 * time.Minute

// Google Calendar event colour ids.
var labelColors = map[tracker.Label]string{
	tracker.Green:  "10", // Basil
	tracker.Blue:   "9",  // Blueberry
	tracker.Red:    "11", // Tomato
	tracker.Yellow: "5",  // Banana
}

const defaultColor = "1" // Lavender

// ColorID returns the event colour for the task's first label.
func ColorID(labels tracker.LabelSet) string {
	if ls := labels.Slice(); len(ls) > 0 {
		return labelColors[ls[0]]
	}
	return defaultColor
}

// EventFromTask converts a task into the calendar event that represents it.
func EventFromTask(task tracker.Task, now time.Time) (*calendar.Event, error) {
	if task.UUID == "" {
		return nil, fmt.Errorf("task %d has no UUID", task.ID)
	}

	// 1. Summary
	prefix := ""
	switch {
	case task.Status == tracker.Done:
		prefix = "✓"
	case task.Status == tracker.Doing:
		prefix = "‣"
	case !task.Deadline.IsZero() && task.Deadline.Before(now):
		prefix = "!"
	}
	summary := task.Subject
	if prefix != "" {
		summary = prefix + " " + task.Subject
	}

	// 2. Slot
	var start, end time.Time
	switch {
	case task.Status == tracker.Done && task.Started() && task.Finished():
		start, end = task.StartTime, task.FinishTime
		if !end.After(start) {
			end = start.Add(time.Minute)
		}
	case task.Status == tracker.Doing && task.Started():
		start = task.StartTime
		end = start.Add(defaultSlot)
	case !task.Deadline.IsZero():
		start = task.Deadline
		end = start.Add(defaultSlot)
	default:
		return nil, fmt.Errorf("task %d has no deadline or start time", task.ID)
	}

	// 3. Description
	var desc strings.Builder
	if task.Labels.Len() > 0 {
		for _, l := range task.Labels.Slice() {
			fmt.Fprintf(&desc, "#%s ", l)
		}
		desc.WriteString("\n\n")
	}
	fmt.Fprintf(&desc, "Status: %s\n", task.Status)
	fmt.Fprintf(&desc, "Task: %d\n", task.ID)
	fmt.Fprintf(&desc, "UUID: %s\n", task.UUID)
	if !task.Deadline.IsZero() {
		fmt.Fprintf(&desc, "Deadline: %s\n", task.Deadline.Format(time.RFC3339))
	}

	desc.WriteString("\nAccounting:\n")
	if task.Started() {
		fmt.Fprintf(&desc, "• started: %s\n", task.StartTime.Format(time.RFC3339))
	}
	if task.Status == tracker.Done && task.Started() && task.Finished() {
		spent := tracker.ElapsedFrom(task.FinishTime.Sub(task.StartTime))
		fmt.Fprintf(&desc, "• spent: %s\n", spent)
		if !task.Deadline.IsZero() && task.FinishTime.After(task.Deadline) {
			fmt.Fprintf(&desc, "• finished late by: %s\n", task.FinishTime.Sub(task.Deadline).Round(time.Minute))
		}
	}

	return &calendar.Event{
		Summary:     summary,
		Description: desc.String(),
		ColorId:     ColorID(task.Labels),
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				TaskProperty: task.UUID,
			},
		},
	}, nil
}

// PatchFor returns the fields of target that differ from existing, or nil
// when the event is already up to date.
func PatchFor(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	same, err := sameSlot(existing, target)
	if err != nil {
		return nil, err
	}
	if !same {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func sameSlot(a, b *calendar.Event) (bool, error) {
	if a.Start == nil || a.End == nil || a.Start.DateTime == "" || a.End.DateTime == "" {
		return false, nil
	}
	pairs := [][2]string{
		{a.Start.DateTime, b.Start.DateTime},
		{a.End.DateTime, b.End.DateTime},
	}
	for _, p := range pairs {
		x, err := time.Parse(time.RFC3339, p[0])
		if err != nil {
			return false, fmt.Errorf("existing event time: %w", err)
		}
		y, err := time.Parse(time.RFC3339, p[1])
		if err != nil {
			return false, fmt.Errorf("target event time: %w", err)
		}
		if !x.Equal(y) {
			return false, nil
		}
	}
	return true, nil
}
