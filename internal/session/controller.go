package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/store"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultEventHistory is how many recent event IDs a session remembers for
// replay when Deps.EventHistory is unset.
const DefaultEventHistory = 1024

// Dispatch errors.
var (
	ErrMissingEventID = errors.New("event has no id")
	ErrUnknownEvent   = errors.New("unknown event kind")
	ErrEventConflict  = errors.New("event id already used for a different kind")
)

// EventKind names a state change.
type EventKind string

// Event kinds.
const (
	KindAddAppointment  EventKind = "add_appointment"
	KindAddTask         EventKind = "add_task"
	KindSetTaskComplete EventKind = "set_task_complete"
)

// Event is one user action that changes state. ID identifies the action that
// fired it; dispatching the same ID again does not repeat the change.
type Event struct {
	ID          string
	Kind        EventKind
	Appointment model.Appointment
	Task        model.Task
	Index       int
	Complete    bool
}

// AddAppointment builds an event appending a.
func AddAppointment(id string, a model.Appointment) Event {
	return Event{ID: id, Kind: KindAddAppointment, Appointment: a}
}

// AddTask builds an event appending t.
func AddTask(id string, t model.Task) Event {
	return Event{ID: id, Kind: KindAddTask, Task: t}
}

// SetTaskComplete builds an event setting the completion flag of task i.
func SetTaskComplete(id string, i int, complete bool) Event {
	return Event{ID: id, Kind: KindSetTaskComplete, Index: i, Complete: complete}
}

// Outcome describes the effect of a dispatched event.
type Outcome struct {
	EventID string
	Kind    EventKind
	// Index is the task index for task events and -1 otherwise.
	Index int
	// Replayed is set when the event had already been applied.
	Replayed bool
}

type applied struct {
	outcome Outcome
	err     error
}

// Request selects what Render computes.
type Request struct {
	Dataset  string
	Question string
}

// View is everything a frame needs.
type View struct {
	Dataset      *model.Dataset
	Summary      model.SummaryMetrics
	Answer       string
	Appointments []model.Appointment
	Tasks        []model.Task
}

// Controller runs the render pipeline and applies events for one session.
// It is not safe for concurrent use.
type Controller struct {
	loader   DatasetLoader
	store    *store.Store
	engine   *aggregate.Engine
	narrator *narrator.Narrator
	applied  *lru.Cache[string, applied]
	logger   *slog.Logger
}

// Render loads the requested dataset, summarizes it and, when a question is
// asked, narrates it. Render never changes state, so calling it on every
// frame is safe. An empty dataset name renders the schedule only.
func (c *Controller) Render(ctx context.Context, req Request) (View, error) {
	view := View{
		Appointments: c.store.Appointments(),
		Tasks:        c.store.Tasks(),
	}

	if req.Dataset != "" {
		ds, err := c.loader.Load(ctx, req.Dataset)
		if err != nil {
			return view, err
		}
		view.Dataset = ds
	}

	view.Summary = c.engine.Summary(view.Dataset)
	if req.Question != "" {
		view.Answer = c.narrator.Summarize(req.Question, view.Dataset)
	}
	return view, nil
}

func newEventHistory(size int) *lru.Cache[string, applied] {
	if size <= 0 {
		size = DefaultEventHistory
	}
	history, err := lru.New[string, applied](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return history
}

// Dispatch applies ev unless an event with the same ID was already applied,
// in which case the recorded outcome and error are returned with Replayed set.
// Only the most recent event IDs are remembered. Reusing an ID for another
// kind of event fails with ErrEventConflict.
func (c *Controller) Dispatch(ev Event) (Outcome, error) {
	if ev.ID == "" {
		return Outcome{}, ErrMissingEventID
	}
	if prev, ok := c.applied.Get(ev.ID); ok {
		if prev.outcome.Kind != ev.Kind {
			return Outcome{}, fmt.Errorf("%w: %q was %s, not %s", ErrEventConflict, ev.ID, prev.outcome.Kind, ev.Kind)
		}
		out := prev.outcome
		out.Replayed = true
		c.logger.Debug("event replayed", "event", ev.ID, "kind", ev.Kind)
		return out, prev.err
	}

	out := Outcome{EventID: ev.ID, Kind: ev.Kind, Index: -1}
	var err error
	switch ev.Kind {
	case KindAddAppointment:
		c.store.AddAppointment(ev.Appointment)
	case KindAddTask:
		out.Index = c.store.AddTask(ev.Task)
	case KindSetTaskComplete:
		out.Index = ev.Index
		err = c.store.SetTaskComplete(ev.Index, ev.Complete)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	c.applied.Add(ev.ID, applied{outcome: out, err: err})
	c.logger.Debug("event applied", "event", ev.ID, "kind", ev.Kind, "index", out.Index, "error", err)
	return out, err
}

// Speak synthesizes text in the background.
func (c *Controller) Speak(ctx context.Context, text string) <-chan narrator.SpeechResult {
	return c.narrator.Speak(ctx, text)
}
