// Package notification collects the short human-readable notices the
// core emits for the UI (the demo's toasts). Notices are logged and kept
// in a small ring buffer the UI can poll.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Notice severities.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
)

// Notice is one user-visible message.
type Notice struct {
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the contract the engine uses to surface messages.
type Notifier interface {
	Notify(ctx context.Context, t Type, message string)
}

const ringSize = 50

// Service is the default Notifier.
type Service struct {
	mu      sync.Mutex
	recent  []Notice
	nowFunc func() time.Time
}

// NewService creates a new notification service.
func NewService() *Service {
	return &Service{nowFunc: time.Now}
}

func (s *Service) Notify(_ context.Context, t Type, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, Notice{Type: t, Message: message, CreatedAt: s.nowFunc()})
	if len(s.recent) > ringSize {
		s.recent = s.recent[len(s.recent)-ringSize:]
	}

	switch t {
	case TypeError:
		log.Warn().Str("notice", message).Msg("user notification")
	default:
		log.Info().Str("notice", message).Msg("user notification")
	}
}

// Recent returns the buffered notices, oldest first.
func (s *Service) Recent() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notice, len(s.recent))
	copy(out, s.recent)
	return out
}
