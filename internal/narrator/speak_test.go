package narrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/avero-hq/avero/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type synthFunc func(ctx context.Context, text string) ([]byte, error)

func (f synthFunc) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f(ctx, text)
}

type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (r *recordingObserver) ObserveSpeech(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recordingObserver) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.results...)
}

func receive(t *testing.T, ch <-chan SpeechResult) SpeechResult {
	t.Helper()
	select {
	case res, ok := <-ch:
		require.True(t, ok, "channel closed without a result")
		_, open := <-ch
		assert.False(t, open, "channel should close after one result")
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no speech result")
		return SpeechResult{}
	}
}

func TestSpeak(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		obs := &recordingObserver{}
		n := newTestNarrator(WithObserver(obs))
		assert.False(t, n.CanSpeak())

		res := receive(t, n.Speak(context.Background(), "hello"))
		require.NotNil(t, res.Warning)
		assert.ErrorIs(t, res.Warning, ErrSpeechUnavailable)
		assert.Nil(t, res.Audio)
		assert.Equal(t, []string{SpeechUnavailable}, obs.all())
	})

	t.Run("audio", func(t *testing.T) {
		obs := &recordingObserver{}
		n := newTestNarrator(WithObserver(obs), WithSynthesizer(synthFunc(func(_ context.Context, text string) ([]byte, error) {
			return []byte("mp3:" + text), nil
		})))
		assert.True(t, n.CanSpeak())

		res := receive(t, n.Speak(context.Background(), "hello"))
		assert.Nil(t, res.Warning)
		assert.Equal(t, []byte("mp3:hello"), res.Audio)
		assert.Equal(t, []string{SpeechOK}, obs.all())
	})

	t.Run("provider error becomes warning", func(t *testing.T) {
		boom := errors.New("boom")
		n := newTestNarrator(WithSynthesizer(synthFunc(func(context.Context, string) ([]byte, error) {
			return nil, boom
		})))

		res := receive(t, n.Speak(context.Background(), "hello"))
		require.NotNil(t, res.Warning)
		assert.ErrorIs(t, res.Warning, boom)
		assert.False(t, res.Warning.Temporary())
	})

	t.Run("throttling is temporary", func(t *testing.T) {
		n := newTestNarrator(WithSynthesizer(synthFunc(func(context.Context, string) ([]byte, error) {
			return nil, fmt.Errorf("%w: slow down", common.ErrRateLimit)
		})))

		res := receive(t, n.Speak(context.Background(), "hello"))
		require.NotNil(t, res.Warning)
		assert.True(t, res.Warning.Temporary())
	})

	t.Run("timeout", func(t *testing.T) {
		obs := &recordingObserver{}
		n := newTestNarrator(
			WithObserver(obs),
			WithSpeechTimeout(10*time.Millisecond),
			WithSynthesizer(synthFunc(func(ctx context.Context, _ string) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})))

		res := receive(t, n.Speak(context.Background(), "hello"))
		require.NotNil(t, res.Warning)
		assert.ErrorIs(t, res.Warning, context.DeadlineExceeded)
		assert.Equal(t, []string{SpeechTimeout}, obs.all())
	})

	t.Run("timeout holds when the synthesizer ignores its context", func(t *testing.T) {
		obs := &recordingObserver{}
		release := make(chan struct{})
		defer close(release)
		n := newTestNarrator(
			WithObserver(obs),
			WithSpeechTimeout(20*time.Millisecond),
			WithSynthesizer(synthFunc(func(context.Context, string) ([]byte, error) {
				<-release
				return []byte("late"), nil
			})))

		start := time.Now()
		res := receive(t, n.Speak(context.Background(), "hello"))
		assert.Less(t, time.Since(start), time.Second)
		require.NotNil(t, res.Warning)
		assert.ErrorIs(t, res.Warning, context.DeadlineExceeded)
		assert.Nil(t, res.Audio)
		assert.Equal(t, []string{SpeechTimeout}, obs.all())
	})

	t.Run("panic becomes warning", func(t *testing.T) {
		n := newTestNarrator(WithSynthesizer(synthFunc(func(context.Context, string) ([]byte, error) {
			panic("driver exploded")
		})))

		res := receive(t, n.Speak(context.Background(), "hello"))
		require.NotNil(t, res.Warning)
		assert.Contains(t, res.Warning.Error(), "driver exploded")
	})

	t.Run("close abandons in-flight speech", func(t *testing.T) {
		started := make(chan struct{})
		n := newTestNarrator(WithSynthesizer(synthFunc(func(ctx context.Context, _ string) ([]byte, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})))

		ch := n.Speak(context.Background(), "hello")
		<-started
		n.Close()

		res := receive(t, ch)
		require.NotNil(t, res.Warning)
		assert.ErrorIs(t, res.Warning, context.Canceled)
	})

	t.Run("summarize does not wait for speech", func(t *testing.T) {
		release := make(chan struct{})
		n := newTestNarrator(WithSynthesizer(synthFunc(func(context.Context, string) ([]byte, error) {
			<-release
			return []byte("late"), nil
		})))

		ch := n.Speak(context.Background(), "hello")
		assert.Equal(t, NoData, n.Summarize("q", nil))
		close(release)
		assert.Equal(t, []byte("late"), receive(t, ch).Audio)
	})
}
