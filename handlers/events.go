package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const keepAliveInterval = 15 * time.Second

func formatSSEMessage(eventType string, data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	m := map[string]any{
		"data": data,
	}

	if err := enc.Encode(m); err != nil {
		return "", err
	}
	sb := strings.Builder{}

	sb.WriteString(fmt.Sprintf("event: %s\n", eventType))
	sb.WriteString(fmt.Sprintf("retry: %d\n", 15000))
	sb.WriteString(fmt.Sprintf("data: %v\n\n", strings.TrimSuffix(buf.String(), "\n")))

	return sb.String(), nil
}

// HandleSSE godoc
// @Summary Stream thay đổi todo (Server-Sent Events)
// @Tags events
// @Security BearerAuth
// @Param userId query string false "Chỉ nhận thay đổi của user này"
// @Router /api/sse [get]
func (h *Handler) HandleSSE(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	session := h.hub.Subscribe(c.Query("userId"))
	log.Debug().Str("user_id", session.UserID).Msg("new SSE session")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		keepAliveTicker := time.NewTicker(keepAliveInterval)
		defer func() {
			keepAliveTicker.Stop()
			h.hub.Unsubscribe(session)
			log.Debug().Str("user_id", session.UserID).Msg("SSE session closed")
		}()

		for {
			select {
			case change := <-session.C:
				msg, err := formatSSEMessage("todo-change", change)
				if err != nil {
					log.Error().Err(err).Msg("Error formatting sse message")
					continue
				}
				if _, err := w.WriteString(msg); err != nil {
					return
				}
			case <-keepAliveTicker.C:
				if _, err := w.WriteString(":keepalive\n"); err != nil {
					return
				}
			}

			// Flush lỗi nghĩa là client đã ngắt kết nối
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
