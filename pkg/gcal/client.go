// Package gcal pushes tracker tasks to a Google Calendar as events. Each
// event carries the task UUID in a private extended property so later
// pushes patch the same event instead of creating a new one.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/tasktrack/pkg/tracker"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client is a Google Calendar API client bound to one calendar.
type Client struct {
	srv        *calendar.Service
	calendarID string
	index      *eventIndex
	now        func() time.Time
}

// Report counts what a Sync call did.
type Report struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
}

func (r Report) String() string {
	return fmt.Sprintf("%d created, %d updated, %d unchanged, %d deleted", r.Created, r.Updated, r.Unchanged, r.Deleted)
}

// NewClient resolves calendarName among the user's calendars and returns a
// client for it. Extra options are passed to the calendar service.
func NewClient(ctx context.Context, httpClient *http.Client, calendarName string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			calendarID = item.Id
			break
		}
	}
	if calendarID == "" {
		return nil, fmt.Errorf("calendar '%s' not found", calendarName)
	}

	return NewCalendarClient(srv, calendarID), nil
}

func NewCalendarClient(srv *calendar.Service, calendarID string) *Client {
	return &Client{srv: srv, calendarID: calendarID, index: newEventIndex(), now: time.Now}
}

// Sync upserts an event for every task and deletes the events of removed
// task UUIDs. It keeps going after a failure and returns all errors joined.
func (c *Client) Sync(ctx context.Context, tasks []tracker.Task, removed []string) (Report, error) {
	var report Report
	var errs []error

	for _, task := range tasks {
		outcome, err := c.SyncTask(ctx, task)
		if err != nil {
			errs = append(errs, fmt.Errorf("task %d: %w", task.ID, err))
			continue
		}
		switch outcome {
		case Created:
			report.Created++
		case Updated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	for _, id := range removed {
		deleted, err := c.DeleteTask(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("removed task %s: %w", id, err))
			continue
		}
		if deleted {
			report.Deleted++
		}
	}

	return report, errors.Join(errs...)
}

// Outcome is what SyncTask did to a task's event.
type Outcome int

const (
	Unchanged Outcome = iota
	Created
	Updated
)

// SyncTask creates the task's event or patches it when it has drifted.
func (c *Client) SyncTask(ctx context.Context, task tracker.Task) (Outcome, error) {
	target, err := EventFromTask(task, c.now())
	if err != nil {
		return Unchanged, err
	}

	existing, err := c.lookup(ctx, task.UUID)
	if err != nil {
		return Unchanged, fmt.Errorf("error searching for event: %w", err)
	}

	if existing == nil {
		inserted, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do()
		if err != nil {
			return Unchanged, fmt.Errorf("insert event: %w", err)
		}
		c.index.Set(task.UUID, inserted.Id)
		return Created, nil
	}

	patch, err := PatchFor(existing, target)
	if err != nil {
		log.Printf("could not compare task %d with its calendar event: %v", task.ID, err)
		return Unchanged, err
	}
	if patch == nil {
		return Unchanged, nil
	}
	if _, err := c.srv.Events.Patch(c.calendarID, existing.Id, patch).Context(ctx).Do(); err != nil {
		return Unchanged, fmt.Errorf("patch event %s: %w", existing.Id, err)
	}
	return Updated, nil
}

// DeleteTask deletes the event for a task UUID, reporting whether one existed.
func (c *Client) DeleteTask(ctx context.Context, taskUUID string) (bool, error) {
	event, err := c.lookup(ctx, taskUUID)
	if err != nil {
		return false, err
	}
	if event == nil {
		return false, nil
	}
	if err := c.srv.Events.Delete(c.calendarID, event.Id).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("delete event %s: %w", event.Id, err)
	}
	c.index.Remove(taskUUID)
	return true, nil
}

// lookup tries the index first and falls back to a property search.
func (c *Client) lookup(ctx context.Context, taskUUID string) (*calendar.Event, error) {
	if eventID := c.index.Get(taskUUID); eventID != "" {
		event, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		if err == nil && event.Status != "cancelled" {
			return event, nil
		}
		c.index.Remove(taskUUID)
	}

	event, err := c.FindEvent(ctx, taskUUID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		c.index.Set(taskUUID, event.Id)
	}
	return event, nil
}

// FindEvent returns the event tagged with taskUUID, or nil if there is none.
func (c *Client) FindEvent(ctx context.Context, taskUUID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskProperty, taskUUID)).
		ShowDeleted(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
