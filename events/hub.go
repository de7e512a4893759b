package events

import (
	"context"
	"slices"
	"sync"

	"github.com/biosecret/todo-list/models"
	"github.com/rs/zerolog/log"
)

// Session là một client đang nghe thay đổi (SSE)
type Session struct {
	// UserID rỗng nghĩa là nhận thay đổi của mọi user
	UserID string
	C      chan models.Change
}

// Hub phát thay đổi tới các session đang kết nối
type Hub struct {
	mu       sync.Mutex
	sessions []*Session
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(userID string) *Session {
	s := &Session{UserID: userID, C: make(chan models.Change, 16)}
	h.mu.Lock()
	h.sessions = append(h.sessions, s)
	h.mu.Unlock()
	return s
}

func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	idx := slices.Index(h.sessions, s)
	if idx != -1 {
		h.sessions[idx] = nil
		h.sessions = slices.Delete(h.sessions, idx, idx+1)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Broadcast không block: session đầy buffer sẽ bị bỏ qua event này
func (h *Hub) Broadcast(change models.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.sessions {
		if s.UserID != "" && s.UserID != change.UserID {
			continue
		}
		select {
		case s.C <- change:
		default:
			log.Warn().Str("user_id", s.UserID).Msg("dropping change for slow session")
		}
	}
}

// Notify cho phép Hub làm notifier trực tiếp của store khi không có MQTT
func (h *Hub) Notify(_ context.Context, change models.Change) {
	h.Broadcast(change)
}
