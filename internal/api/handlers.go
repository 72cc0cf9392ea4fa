package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// eventID returns the request's idempotency key, or a fresh ID when absent.
func eventID(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)); key != "" {
		return key
	}
	return uuid.NewString()
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	names, err := s.datasets.Names(r.Context(), s.defaults)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"datasets": names})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionJSON{ID: sess.ID, CreatedAt: sess.CreatedAt})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(sessionFrom(r).ID); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	view, err := sessionFrom(r).Render(r.Context(), session.Request{Dataset: chi.URLParam(r, "name")})
	if err != nil {
		s.writeErr(w, err)
		return
	}

	out := datasetJSON{
		Name:        view.Dataset.Name(),
		Rows:        view.Dataset.Len(),
		Fingerprint: view.Dataset.Fingerprint(),
		Summary:     toSummaryJSON(view.Summary),
		Series:      make(map[aggregate.Metric][]pointJSON, len(aggregate.Metrics)),
		Data:        toRowsJSON(view.Dataset.Points()),
	}
	for _, metric := range aggregate.Metrics {
		points, err := aggregate.Series(view.Dataset, metric)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		out.Series[metric] = toPointsJSON(points)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	view, err := sessionFrom(r).Render(r.Context(), session.Request{})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]appointmentJSON{"appointments": toAppointmentsJSON(view.Appointments)})
}

func (s *Server) handleAddAppointment(w http.ResponseWriter, r *http.Request) {
	var in appointmentJSON
	if err := decode(r, &in); err != nil {
		s.writeErr(w, err)
		return
	}
	appt, err := model.NewAppointment(in.Date, in.Time, in.Description, in.Assignee)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.dispatch(w, r, session.AddAppointment(eventID(r), appt))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	view, err := sessionFrom(r).Render(r.Context(), session.Request{})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]taskJSON{"tasks": toTasksJSON(view.Tasks)})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var in taskInputJSON
	if err := decode(r, &in); err != nil {
		s.writeErr(w, err)
		return
	}
	task, err := model.NewTask(model.TaskInput(in))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.dispatch(w, r, session.AddTask(eventID(r), task))
}

func (s *Server) handleSetTaskComplete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeErr(w, fmt.Errorf("%w: task index %q", errBadRequest, chi.URLParam(r, "index")))
		return
	}
	var in struct {
		Complete bool `json:"complete"`
	}
	if err := decode(r, &in); err != nil {
		s.writeErr(w, err)
		return
	}
	s.dispatch(w, r, session.SetTaskComplete(eventID(r), index, in.Complete))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev session.Event) {
	out, err := sessionFrom(r).Dispatch(ev)
	if out.Replayed {
		w.Header().Set(ReplayedHeader, "true")
	}
	if err != nil {
		s.writeErr(w, err)
		return
	}

	status := http.StatusCreated
	if out.Replayed || ev.Kind == session.KindSetTaskComplete {
		status = http.StatusOK
	}
	writeJSON(w, status, outcomeJSON{
		EventID:  out.EventID,
		Kind:     string(out.Kind),
		Index:    out.Index,
		Replayed: out.Replayed,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Dataset  string `json:"dataset"`
		Question string `json:"question"`
	}
	if err := decode(r, &in); err != nil {
		s.writeErr(w, err)
		return
	}
	if strings.TrimSpace(in.Dataset) == "" {
		s.writeErr(w, fmt.Errorf("%w: dataset is required", errBadRequest))
		return
	}
	if strings.TrimSpace(in.Question) == "" {
		in.Question = "summary"
	}

	view, err := sessionFrom(r).Render(r.Context(), session.Request{Dataset: in.Dataset, Question: in.Question})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": view.Answer})
}

// retryAfterSeconds is advertised when speech failed for a transient reason.
const retryAfterSeconds = "5"

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := decode(r, &in); err != nil {
		s.writeErr(w, err)
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		s.writeErr(w, fmt.Errorf("%w: text is required", errBadRequest))
		return
	}

	select {
	case res := <-sessionFrom(r).Speak(r.Context(), in.Text):
		if res.Warning != nil {
			if res.Warning.Temporary() {
				w.Header().Set("Retry-After", retryAfterSeconds)
			}
			writeError(w, http.StatusServiceUnavailable, "speech", res.Warning.Error())
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Audio)
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "speech", r.Context().Err().Error())
	}
}
