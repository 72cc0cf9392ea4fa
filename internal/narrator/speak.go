package narrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/avero-hq/avero/internal/common"
)

// ErrSpeechUnavailable reports that no synthesizer is configured.
var ErrSpeechUnavailable = errors.New("speech synthesis unavailable")

// Speech outcomes reported to observers.
const (
	SpeechOK          = "ok"
	SpeechUnavailable = "unavailable"
	SpeechTimeout     = "timeout"
	SpeechFailed      = "error"
)

// SpeechObserver is notified once per speech request.
type SpeechObserver interface {
	ObserveSpeech(result string)
}

// SpeechError is a non-fatal speech failure. Callers show it as a warning.
type SpeechError struct {
	Err error
}

func (e *SpeechError) Error() string {
	return "speech: " + e.Err.Error()
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the same request may succeed later, as after a
// timeout or upstream throttling.
func (e *SpeechError) Temporary() bool {
	return common.IsRetryable(e.Err)
}

// SpeechResult carries synthesized audio or the warning that replaced it.
type SpeechResult struct {
	Audio   []byte
	Warning *SpeechError
}

// CanSpeak reports whether a synthesizer is configured.
func (n *Narrator) CanSpeak() bool {
	return n.synth != nil
}

// Speak synthesizes text in the background. The returned channel receives
// exactly one result and is then closed. Failures, timeouts and panics in the
// synthesizer arrive as warnings. The result arrives once the timeout expires
// even if the synthesizer ignores its context; late audio is dropped.
func (n *Narrator) Speak(ctx context.Context, text string) <-chan SpeechResult {
	out := make(chan SpeechResult, 1)

	if !n.CanSpeak() {
		n.observe(SpeechUnavailable)
		out <- SpeechResult{Warning: &SpeechError{Err: ErrSpeechUnavailable}}
		close(out)
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	stop := context.AfterFunc(n.ctx, cancel)

	go func() {
		defer close(out)
		defer cancel()
		defer stop()

		done := make(chan synthesis, 1)
		go func() { done <- n.synthesize(ctx, text) }()

		select {
		case s := <-done:
			out <- n.result(ctx, s)
		case <-ctx.Done():
			out <- n.result(ctx, synthesis{err: ctx.Err()})
		}
	}()
	return out
}

type synthesis struct {
	audio []byte
	err   error
}

func (n *Narrator) synthesize(ctx context.Context, text string) (s synthesis) {
	defer func() {
		if r := recover(); r != nil {
			s = synthesis{err: fmt.Errorf("synthesizer panic: %v", r)}
		}
	}()

	audio, err := n.synth.Synthesize(ctx, text)
	return synthesis{audio: audio, err: err}
}

func (n *Narrator) result(ctx context.Context, s synthesis) SpeechResult {
	if s.err == nil {
		n.observe(SpeechOK)
		return SpeechResult{Audio: s.audio}
	}
	if errors.Is(s.err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return n.warn(ctx, SpeechTimeout, fmt.Errorf("timed out after %s: %w", n.timeout, s.err))
	}
	return n.warn(ctx, SpeechFailed, s.err)
}

func (n *Narrator) warn(ctx context.Context, result string, err error) SpeechResult {
	n.observe(result)
	n.logger.WarnContext(ctx, "speech synthesis failed", "result", result, "error", err)
	return SpeechResult{Warning: &SpeechError{Err: err}}
}

func (n *Narrator) observe(result string) {
	if n.observer != nil {
		n.observer.ObserveSpeech(result)
	}
}
