// Package cli is the interactive prompt loop. It reads one answer per
// line, rejects malformed ids, dates and enum texts, and hands strongly
// typed values to a tracker.Store. The store never prints; everything the
// user sees is rendered here.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/tasktrack/pkg/tracker"
)

var menuItems = []string{
	"Add Task",
	"Remove Task",
	"Add Label to Task",
	"Remove Label from Task",
	"Change Task Status",
	"Search Tasks",
	"Task Length",
	"Exit",
	"Sync to Calendar",
}

// SyncFunc pushes the current tasks, and the UUIDs of tasks removed since
// the last successful push, to an external calendar. It returns a summary.
type SyncFunc func(ctx context.Context, tasks []tracker.Task, removed []string) (string, error)

type Session struct {
	store *tracker.Store
	in    *bufio.Scanner
	out   io.Writer
	view  *view
	sync  SyncFunc
	loc   *time.Location
	color bool

	removed []string
}

type Option func(*Session)

func WithSync(fn SyncFunc) Option {
	return func(s *Session) { s.sync = fn }
}

// WithLocation sets the time zone deadlines are entered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

func WithColor(color bool) Option {
	return func(s *Session) { s.color = color }
}

func New(store *tracker.Store, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.view = newView(out, s.color)
	return s
}

var errExit = errors.New("exit")

// Run shows the menu and serves commands until Exit, end of input, or ctx
// is done.
func (s *Session) Run(ctx context.Context) error {
	s.print(s.view.menu())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.readLine()
		if err != nil {
			return endOfInput(err)
		}

		err = s.dispatch(ctx, strings.TrimSpace(line))
		switch {
		case errors.Is(err, errExit):
			return nil
		case err != nil:
			return endOfInput(err)
		}
		s.print(s.view.menu())
	}
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Session) dispatch(ctx context.Context, input string) error {
	option, err := strconv.Atoi(input)
	if err != nil {
		option = 0
	}
	switch option {
	case 1:
		return s.handleAddTask()
	case 2:
		return s.handleRemoveTask()
	case 3:
		return s.handleAddLabel()
	case 4:
		return s.handleRemoveLabel()
	case 5:
		return s.handleChangeStatus()
	case 6:
		return s.handleSearch()
	case 7:
		return s.handleTaskLength()
	case 8:
		s.println("Exiting Task Management CLI. Goodbye!")
		return errExit
	case 9:
		return s.handleSync(ctx)
	default:
		s.println("Invalid option. Please choose again.")
		return nil
	}
}

func (s *Session) handleAddTask() error {
	subject, err := s.ask("Enter task subject: ")
	if err != nil {
		return err
	}
	dateStr, err := s.ask("Enter deadline date (yyyy-mm-dd): ")
	if err != nil {
		return err
	}
	timeStr, err := s.ask("Enter deadline time (hh:mm): ")
	if err != nil {
		return err
	}

	deadline, err := parseDeadline(dateStr, timeStr, s.loc)
	if err != nil {
		s.fail("Invalid date or time format. Task not added.")
		return nil
	}
	task := s.store.Add(subject, deadline)
	s.ok("Task added successfully:")
	s.println(s.view.task(task))
	return nil
}

func (s *Session) handleRemoveTask() error {
	idStr, err := s.ask("Enter task id to remove: ")
	if err != nil {
		return err
	}
	id, err := parseID(idStr)
	if err != nil {
		s.fail("Invalid task id. Task not removed.")
		return nil
	}

	task, lookupErr := s.store.Get(id)
	if !s.store.Remove(id) {
		s.fail("Task not found.")
		return nil
	}
	if lookupErr == nil {
		s.removed = append(s.removed, task.UUID)
	}
	s.ok("Task removed successfully.")
	return nil
}

func (s *Session) handleAddLabel() error {
	idStr, label, err := s.askIDAndLabel()
	if err != nil {
		return err
	}
	id, err := parseID(idStr)
	if err != nil {
		s.fail("Invalid task id. Label not added.")
		return nil
	}
	l, err := tracker.ParseLabel(label)
	if err != nil {
		s.fail("Invalid label. Please enter a valid label (Green/Blue/Red/Yellow).")
		return nil
	}

	task, err := s.store.AddLabel(id, l)
	if err != nil {
		s.fail(err.Error())
		return nil
	}
	s.ok("Label added successfully:")
	s.println(s.view.task(task))
	return nil
}

func (s *Session) handleRemoveLabel() error {
	idStr, label, err := s.askIDAndLabel()
	if err != nil {
		return err
	}
	id, err := parseID(idStr)
	if err != nil {
		s.fail("Invalid task id. Label not removed.")
		return nil
	}
	l, err := tracker.ParseLabel(label)
	if err != nil {
		s.fail("Invalid label. Please enter a valid label (Green/Blue/Red/Yellow).")
		return nil
	}

	task, err := s.store.RemoveLabel(id, l)
	if err != nil {
		s.fail(err.Error())
		return nil
	}
	s.ok("Label removed successfully:")
	s.println(s.view.task(task))
	return nil
}

func (s *Session) handleChangeStatus() error {
	idStr, err := s.ask("Enter task id: ")
	if err != nil {
		return err
	}
	statusStr, err := s.ask("Enter status (Done/Todo/Doing): ")
	if err != nil {
		return err
	}
	id, err := parseID(idStr)
	if err != nil {
		s.fail("Invalid task id. Task status not changed.")
		return nil
	}
	status, err := tracker.ParseStatus(strings.TrimSpace(statusStr))
	if err != nil {
		s.fail("Invalid status. Please enter a valid status (Done/Todo/Doing).")
		return nil
	}

	task, err := s.store.ChangeStatus(id, status)
	if err != nil {
		s.fail(err.Error())
		return nil
	}
	s.ok("Task status changed successfully:")
	s.println(s.view.task(task))
	return nil
}

func (s *Session) handleSearch() error {
	modeStr, err := s.ask("Enter search mode (status/subject/label): ")
	if err != nil {
		return err
	}
	query, err := s.ask("Enter search query: ")
	if err != nil {
		return err
	}

	mode, err := tracker.ParseSearchMode(strings.TrimSpace(modeStr))
	if err != nil {
		s.fail("Invalid search mode. Please enter a valid mode (status/subject/label).")
		return nil
	}
	if mode == tracker.ByLabel {
		query = strings.TrimSpace(query)
		if _, err := tracker.ParseLabel(query); err != nil {
			s.fail("Invalid label. Please enter a valid label (Green/Blue/Red/Yellow).")
			return nil
		}
	}

	result, err := s.store.Search(mode, query)
	if err != nil {
		s.fail(err.Error())
		return nil
	}
	s.println("Search result:")
	s.println(s.view.tasks(result))
	return nil
}

func (s *Session) handleTaskLength() error {
	idStr, err := s.ask("Enter task id: ")
	if err != nil {
		return err
	}
	id, err := parseID(idStr)
	if err != nil {
		s.fail("Invalid task id.")
		return nil
	}

	length, err := s.store.Duration(id)
	if err != nil {
		s.fail(err.Error())
		return nil
	}
	s.ok("Task length retrieved successfully:")
	s.println(s.view.elapsed(length))
	return nil
}

func (s *Session) handleSync(ctx context.Context) error {
	if s.sync == nil {
		s.fail("Calendar sync is not configured. Start tasktrack with --sync or --calendar.")
		return nil
	}
	summary, err := s.sync(ctx, s.store.List(), s.removed)
	if err != nil {
		s.fail(fmt.Sprintf("Sync finished with errors (%s): %v", summary, err))
		return nil
	}
	s.removed = nil
	s.ok("Synced to calendar: " + summary)
	return nil
}

func (s *Session) askIDAndLabel() (string, string, error) {
	idStr, err := s.ask("Enter task id: ")
	if err != nil {
		return "", "", err
	}
	label, err := s.ask("Enter label (Green/Blue/Red/Yellow): ")
	if err != nil {
		return "", "", err
	}
	return idStr, strings.TrimSpace(label), nil
}

func (s *Session) ask(prompt string) (string, error) {
	s.print(prompt)
	return s.readLine()
}

func (s *Session) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

func (s *Session) print(text string) {
	fmt.Fprint(s.out, text)
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Session) ok(text string) {
	s.println(s.view.ok.Render(text))
}

func (s *Session) fail(text string) {
	s.println(s.view.fail.Render(text))
}

func parseID(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// parseDeadline combines a yyyy-mm-dd date and an hh:mm time in loc.
func parseDeadline(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(dateStr), loc)
	if err != nil {
		return time.Time{}, err
	}

	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time %q", timeStr)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return time.Time{}, fmt.Errorf("invalid hour %q", parts[0])
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return time.Time{}, fmt.Errorf("invalid minute %q", parts[1])
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, 0, 0, loc), nil
}
