package app

import (
	"errors"
	"strings"
	"sync"
)

// ErrAlreadyListening is returned when Start is called on a listening session.
var ErrAlreadyListening = errors.New("transcript session is already listening")

// TranscriptSession receives finalized speech transcripts and keeps the
// latest one. Transcripts published while not listening are dropped.
type TranscriptSession struct {
	mu           sync.RWMutex
	listening    bool
	latest       string
	onTranscript func(string)
}

// NewTranscriptSession creates a session that is not listening yet.
func NewTranscriptSession() *TranscriptSession {
	return &TranscriptSession{}
}

// Start begins listening. onTranscript, if set, is called with every accepted transcript.
func (s *TranscriptSession) Start(onTranscript func(string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listening {
		return ErrAlreadyListening
	}
	s.listening = true
	s.latest = ""
	s.onTranscript = onTranscript
	return nil
}

// Stop ends listening. The latest transcript is kept.
func (s *TranscriptSession) Stop() {
	s.mu.Lock()
	s.listening = false
	s.onTranscript = nil
	s.mu.Unlock()
}

// Listening reports whether transcripts are being accepted.
func (s *TranscriptSession) Listening() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listening
}

// Publish accepts a finalized transcript, lowercased. It reports whether
// the transcript was accepted.
func (s *TranscriptSession) Publish(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))

	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return false
	}
	s.latest = text
	cb := s.onTranscript
	s.mu.Unlock()

	if cb != nil {
		cb(text)
	}
	return true
}

// Latest returns the most recent accepted transcript.
func (s *TranscriptSession) Latest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
