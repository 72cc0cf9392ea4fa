// Package narrator turns a dataset into a short plain-language digest and,
// when a synthesizer is configured, speaks it.
package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/speech"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NoData is returned by Summarize for a dataset without rows.
const NoData = "No data available to analyse."

const digestTemplate = "Your data spans %s through %s. Total revenue was $%s across %s clients. " +
	"On average there were %s bookings per period."

// DefaultSpeechTimeout bounds a single synthesis call when none is configured.
const DefaultSpeechTimeout = 15 * time.Second

// Narrator produces deterministic digests. The zero value is not usable; use New.
type Narrator struct {
	synth    speech.Synthesizer
	timeout  time.Duration
	logger   *slog.Logger
	observer SpeechObserver

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithSynthesizer enables speech. A nil synthesizer leaves speech disabled.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(n *Narrator) {
		n.synth = s
	}
}

// WithSpeechTimeout bounds each synthesis call.
func WithSpeechTimeout(d time.Duration) Option {
	return func(n *Narrator) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithLogger sets the narrator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Narrator) {
		n.logger = logger
	}
}

// WithObserver registers a speech observer.
func WithObserver(o SpeechObserver) Option {
	return func(n *Narrator) {
		n.observer = o
	}
}

// New creates a narrator.
func New(opts ...Option) *Narrator {
	n := &Narrator{
		timeout: DefaultSpeechTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.ctx, n.cancel = context.WithCancel(context.Background())
	return n
}

// Summarize describes ds. The question does not influence the answer.
func (n *Narrator) Summarize(question string, ds *model.Dataset) string {
	n.logger.Debug("summarize", "dataset", ds.Name(), "question", question)

	if ds.Len() == 0 {
		return NoData
	}

	first := ds.At(0)
	start, end := first.Date, first.Date
	revenue := decimal.Zero
	var bookings, clients int64
	for _, p := range ds.Points() {
		if p.Date.Before(start) {
			start = p.Date
		}
		if p.Date.After(end) {
			end = p.Date
		}
		revenue = revenue.Add(p.Revenue)
		bookings += p.Bookings
		clients += p.Clients
	}

	return fmt.Sprintf(digestTemplate,
		start.Format(model.DateLayout),
		end.Format(model.DateLayout),
		FormatAmount(revenue, 0),
		humanize.Comma(clients),
		formatMean(bookings, ds.Len()))
}

// FormatAmount rounds d half to even at places decimals and inserts thousands
// separators.
func FormatAmount(d decimal.Decimal, places int32) string {
	r := d.RoundBank(places)
	out := group(r.Abs().StringFixed(places))
	if r.IsNegative() {
		out = "-" + out
	}
	return out
}

// formatMean renders the average with one decimal, rounding the nearest
// float64 the way printf-style formatting does, so 49 over 20 gives "2.5".
func formatMean(sum int64, n int) string {
	return group(strconv.FormatFloat(float64(sum)/float64(n), 'f', 1, 64))
}

// group inserts thousands separators into a non-negative fixed-point string.
func group(fixed string) string {
	whole, frac, _ := strings.Cut(fixed, ".")
	out := whole
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		out = humanize.Comma(n)
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}

// Close abandons any speech still in flight.
func (n *Narrator) Close() {
	n.cancel()
}
