package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/domain"
	"github.com/heartmarshall/medchan-backend/internal/service/message"
)

type messageService interface {
	List(ctx context.Context, input message.ListInput) ([]domain.StoredMessage, error)
}

// MessageHandler serves the stored channel messages.
type MessageHandler struct {
	svc messageService
	log *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(svc messageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, log: logger.With("handler", "message")}
}

type messageResponse struct {
	ID              int64      `json:"id"`
	ChannelTitle    string     `json:"channel_title"`
	ChannelUsername string     `json:"channel_username"`
	MessageID       int64      `json:"message_id"`
	Message         string     `json:"message"`
	MessageDate     *time.Time `json:"message_date"`
	EmojiUsed       string     `json:"emoji_used"`
	YouTubeLinks    string     `json:"youtube_links"`
	CreatedAt       time.Time  `json:"created_at"`
}

// List handles GET /messages/?channel=&skip=&limit=.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagingParams(r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	messages, err := h.svc.List(r.Context(), message.ListInput{
		Channel: r.URL.Query().Get("channel"),
		Skip:    skip,
		Limit:   limit,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toMessageResponse(m domain.StoredMessage) messageResponse {
	resp := messageResponse{
		ID:              m.ID,
		ChannelTitle:    m.ChannelTitle,
		ChannelUsername: m.ChannelUsername,
		MessageID:       m.ItemID,
		Message:         m.Text,
		EmojiUsed:       m.Emoji,
		YouTubeLinks:    m.YouTubeLinks,
		CreatedAt:       m.CreatedAt,
	}
	if !m.ObservedAt.IsZero() {
		date := m.ObservedAt
		resp.MessageDate = &date
	}
	return resp
}
