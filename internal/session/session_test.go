package session

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/dataset"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (c *counter) ObserveCache(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func testDeps(t *testing.T, files map[string]string) Deps {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name+".csv"] = &fstest.MapFile{Data: []byte(body)}
	}
	logger := common.DiscardLogger()
	return Deps{
		Loader:    dataset.NewLoader(dataset.NewFSSource(fsys), dataset.WithLogger(logger)),
		CacheSize: 8,
		Logger:    logger,
	}
}

func scenarioFiles() map[string]string {
	return map[string]string{
		"spa":   testutil.CSV(testutil.ScenarioRows()...),
		"empty": testutil.CSV(),
	}
}

func mustAppointment(t *testing.T) model.Appointment {
	t.Helper()
	a, err := model.NewAppointment("2024-05-01", "10:00", "Consultation", "Alice")
	require.NoError(t, err)
	return a
}

func mustTask(t *testing.T, name string) model.Task {
	t.Helper()
	task, err := model.NewTask(model.TaskInput{Name: name, EstimatedStart: "2024-05-01", EstimatedFinish: "2024-05-02"})
	require.NoError(t, err)
	return task
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario", func(t *testing.T) {
		s := New(testDeps(t, scenarioFiles()))
		view, err := s.Render(ctx, Request{Dataset: "spa", Question: "how are we doing?"})
		require.NoError(t, err)

		assert.Equal(t, 3, view.Dataset.Len())
		assert.Equal(t, "600", view.Summary.TotalRevenue.String())
		assert.Equal(t, "60", view.Summary.TotalExpenses.String())
		assert.Equal(t, int64(9), view.Summary.TotalBookings)
		assert.Equal(t, int64(4), view.Summary.TotalClients)
		assert.Contains(t, view.Answer, "3.0 bookings per period")
	})

	t.Run("rerender is idempotent and cached", func(t *testing.T) {
		deps := testDeps(t, scenarioFiles())
		obs := &counter{}
		deps.CacheObserver = obs
		s := New(deps)

		first, err := s.Render(ctx, Request{Dataset: "spa"})
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := s.Render(ctx, Request{Dataset: "spa"})
			require.NoError(t, err)
			assert.Equal(t, first.Summary, again.Summary)
		}

		assert.Equal(t, 3, obs.hits)
		assert.Equal(t, 1, obs.misses)
		assert.Equal(t, 3, s.CacheStats().Hits)
		assert.Empty(t, first.Answer)
	})

	t.Run("header-only dataset fails to load", func(t *testing.T) {
		s := New(testDeps(t, scenarioFiles()))
		_, err := s.Render(ctx, Request{Dataset: "empty", Question: "anything"})
		require.ErrorIs(t, err, dataset.ErrEmptyDataset)
	})

	t.Run("no dataset renders schedule only", func(t *testing.T) {
		s := New(testDeps(t, scenarioFiles()))
		_, err := s.Dispatch(AddAppointment("e1", mustAppointment(t)))
		require.NoError(t, err)

		view, err := s.Render(ctx, Request{Question: "anything"})
		require.NoError(t, err)
		assert.Nil(t, view.Dataset)
		assert.True(t, view.Summary.TotalRevenue.IsZero())
		assert.Equal(t, narrator.NoData, view.Answer)
		assert.Len(t, view.Appointments, 1)
	})

	t.Run("missing dataset", func(t *testing.T) {
		s := New(testDeps(t, scenarioFiles()))
		_, err := s.Render(ctx, Request{Dataset: "gym"})
		require.ErrorIs(t, err, dataset.ErrNotFound)
	})
}

func TestDispatch(t *testing.T) {
	t.Run("single appointment", func(t *testing.T) {
		s := New(testDeps(t, nil))
		out, err := s.Dispatch(AddAppointment("submit-1", mustAppointment(t)))
		require.NoError(t, err)
		assert.False(t, out.Replayed)
		assert.Equal(t, -1, out.Index)

		view, err := s.Render(context.Background(), Request{})
		require.NoError(t, err)
		require.Len(t, view.Appointments, 1)
		a := view.Appointments[0]
		assert.Equal(t, "2024-05-01", a.Date.Format(model.DateLayout))
		assert.Equal(t, "10:00", a.Time.String())
		assert.Equal(t, "Consultation", a.Description)
		assert.Equal(t, "Alice", a.Assignee)
	})

	t.Run("replayed event applies once", func(t *testing.T) {
		s := New(testDeps(t, nil))
		ev := AddTask("submit-1", mustTask(t, "paint"))

		first, err := s.Dispatch(ev)
		require.NoError(t, err)
		second, err := s.Dispatch(ev)
		require.NoError(t, err)

		assert.False(t, first.Replayed)
		assert.True(t, second.Replayed)
		assert.Equal(t, first.Index, second.Index)

		view, err := s.Render(context.Background(), Request{})
		require.NoError(t, err)
		assert.Len(t, view.Tasks, 1)
	})

	t.Run("reusing an id for another kind conflicts", func(t *testing.T) {
		s := New(testDeps(t, nil))
		_, err := s.Dispatch(AddTask("e1", mustTask(t, "paint")))
		require.NoError(t, err)

		_, err = s.Dispatch(SetTaskComplete("e1", 0, true))
		require.ErrorIs(t, err, ErrEventConflict)

		view, err := s.Render(context.Background(), Request{})
		require.NoError(t, err)
		assert.False(t, view.Tasks[0].Complete)
	})

	t.Run("event history is bounded", func(t *testing.T) {
		deps := testDeps(t, nil)
		deps.EventHistory = 2
		s := New(deps)
		for _, id := range []string{"e1", "e2", "e3"} {
			_, err := s.Dispatch(AddTask(id, mustTask(t, id)))
			require.NoError(t, err)
		}

		recent, err := s.Dispatch(AddTask("e3", mustTask(t, "e3")))
		require.NoError(t, err)
		assert.True(t, recent.Replayed)

		evicted, err := s.Dispatch(AddTask("e1", mustTask(t, "e1")))
		require.NoError(t, err)
		assert.False(t, evicted.Replayed)
		assert.Equal(t, 3, evicted.Index)
	})

	t.Run("distinct events each apply", func(t *testing.T) {
		s := New(testDeps(t, nil))
		a, err := s.Dispatch(AddTask("e1", mustTask(t, "paint")))
		require.NoError(t, err)
		b, err := s.Dispatch(AddTask("e2", mustTask(t, "paint")))
		require.NoError(t, err)
		assert.Equal(t, 0, a.Index)
		assert.Equal(t, 1, b.Index)
	})

	t.Run("toggle", func(t *testing.T) {
		s := New(testDeps(t, nil))
		_, err := s.Dispatch(AddTask("e1", mustTask(t, "paint")))
		require.NoError(t, err)

		_, err = s.Dispatch(SetTaskComplete("e2", 0, true))
		require.NoError(t, err)
		view, err := s.Render(context.Background(), Request{})
		require.NoError(t, err)
		assert.True(t, view.Tasks[0].Complete)

		_, err = s.Dispatch(SetTaskComplete("e3", 0, false))
		require.NoError(t, err)
		view, err = s.Render(context.Background(), Request{})
		require.NoError(t, err)
		assert.False(t, view.Tasks[0].Complete)
	})

	t.Run("completed task keeps its index after another add", func(t *testing.T) {
		s := New(testDeps(t, nil))
		_, err := s.Dispatch(AddTask("e1", mustTask(t, "paint")))
		require.NoError(t, err)
		_, err = s.Dispatch(SetTaskComplete("e2", 0, true))
		require.NoError(t, err)
		out, err := s.Dispatch(AddTask("e3", mustTask(t, "plaster")))
		require.NoError(t, err)
		assert.Equal(t, 1, out.Index)

		view, err := s.Render(context.Background(), Request{})
		require.NoError(t, err)
		require.Len(t, view.Tasks, 2)
		assert.Equal(t, "paint", view.Tasks[0].Name)
		assert.True(t, view.Tasks[0].Complete)
		assert.Equal(t, "plaster", view.Tasks[1].Name)
		assert.False(t, view.Tasks[1].Complete)
	})

	t.Run("invalid index is recorded and replayed", func(t *testing.T) {
		s := New(testDeps(t, nil))
		_, err := s.Dispatch(SetTaskComplete("e1", 99, true))
		require.Error(t, err)
		out, err := s.Dispatch(SetTaskComplete("e1", 99, true))
		require.Error(t, err)
		assert.True(t, out.Replayed)
		assert.Contains(t, err.Error(), "index 99")
	})

	t.Run("missing id", func(t *testing.T) {
		s := New(testDeps(t, nil))
		_, err := s.Dispatch(AddTask("", mustTask(t, "paint")))
		assert.ErrorIs(t, err, ErrMissingEventID)
	})

	t.Run("unknown kind", func(t *testing.T) {
		s := New(testDeps(t, nil))
		_, err := s.Dispatch(Event{ID: "x", Kind: "delete_task"})
		assert.ErrorIs(t, err, ErrUnknownEvent)
	})
}

func TestSpeakWithoutSynthesizer(t *testing.T) {
	s := New(testDeps(t, nil))
	assert.False(t, s.CanSpeak())

	res := <-s.Speak(context.Background(), "hello")
	require.NotNil(t, res.Warning)
	assert.ErrorIs(t, res.Warning, narrator.ErrSpeechUnavailable)
}

func TestClose(t *testing.T) {
	s := New(testDeps(t, scenarioFiles()))
	_, err := s.Render(context.Background(), Request{Dataset: "spa"})
	require.NoError(t, err)

	s.Close()
	s.Close()

	_, err = s.Render(context.Background(), Request{Dataset: "spa"})
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Dispatch(AddTask("e1", mustTask(t, "paint")))
	assert.ErrorIs(t, err, ErrSessionClosed)

	res := <-s.Speak(context.Background(), "hello")
	require.NotNil(t, res.Warning)
	assert.ErrorIs(t, res.Warning, ErrSessionClosed)
}
