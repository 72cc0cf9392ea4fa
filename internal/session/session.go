// Package session ties the loader, aggregation engine, store and narrator
// together for one user. A UI re-renders through Render as often as it likes
// and applies changes through Dispatch, which applies each event once.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/speech"
	"github.com/avero-hq/avero/internal/store"
	"github.com/google/uuid"
)

// Session errors.
var (
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")
)

// DatasetLoader loads a dataset by name.
type DatasetLoader interface {
	Load(ctx context.Context, name string) (*model.Dataset, error)
}

// Deps are the collaborators shared by every session. Each session still
// gets its own store, cache and narrator.
type Deps struct {
	Loader         DatasetLoader
	CacheSize      int
	EventHistory   int
	Synthesizer    speech.Synthesizer
	SpeechTimeout  time.Duration
	Logger         *slog.Logger
	CacheObserver  aggregate.CacheObserver
	SpeechObserver narrator.SpeechObserver
}

// Session is one user's state. Its methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	ctrl   *Controller
	closed bool
}

// New creates a session with a fresh store, cache and narrator.
func New(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With("session", id)

	engineOpts := []aggregate.Option{aggregate.WithLogger(logger)}
	if deps.CacheObserver != nil {
		engineOpts = append(engineOpts, aggregate.WithObserver(deps.CacheObserver))
	}
	narratorOpts := []narrator.Option{
		narrator.WithLogger(logger),
		narrator.WithSynthesizer(deps.Synthesizer),
		narrator.WithSpeechTimeout(deps.SpeechTimeout),
	}
	if deps.SpeechObserver != nil {
		narratorOpts = append(narratorOpts, narrator.WithObserver(deps.SpeechObserver))
	}

	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		ctrl: &Controller{
			loader:   deps.Loader,
			store:    store.New(),
			engine:   aggregate.NewEngine(deps.CacheSize, engineOpts...),
			narrator: narrator.New(narratorOpts...),
			applied:  newEventHistory(deps.EventHistory),
			logger:   logger,
		},
	}
}

// Render runs the read pipeline. See Controller.Render.
func (s *Session) Render(ctx context.Context, req Request) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return View{}, ErrSessionClosed
	}
	return s.ctrl.Render(ctx, req)
}

// Dispatch applies ev. See Controller.Dispatch.
func (s *Session) Dispatch(ev Event) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Outcome{}, ErrSessionClosed
	}
	return s.ctrl.Dispatch(ev)
}

// Speak synthesizes text without blocking. The result arrives on the channel.
func (s *Session) Speak(ctx context.Context, text string) <-chan narrator.SpeechResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		out := make(chan narrator.SpeechResult, 1)
		out <- narrator.SpeechResult{Warning: &narrator.SpeechError{Err: ErrSessionClosed}}
		close(out)
		return out
	}
	return s.ctrl.Speak(ctx, text)
}

// CanSpeak reports whether speech is configured for the session.
func (s *Session) CanSpeak() bool {
	return s.ctrl.narrator.CanSpeak()
}

// CacheStats returns the session's summary cache counters.
func (s *Session) CacheStats() aggregate.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.engine.Stats()
}

// Close drops the cache, abandons in-flight speech and rejects further use.
// Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ctrl.engine.Purge()
	s.ctrl.narrator.Close()
	s.ctrl.logger.Debug("session closed")
}

// Age returns how long the session has been open.
func (s *Session) Age() time.Duration {
	return time.Since(s.CreatedAt).Round(time.Second)
}
