package tui

import "github.com/avero-hq/avero/internal/narrator"

// speechDoneMsg carries the result of a background speech request.
type speechDoneMsg struct {
	result narrator.SpeechResult
}
