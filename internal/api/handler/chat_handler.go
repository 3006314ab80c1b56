package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/api/metrics"
	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// ChatHandler forwards a conversation history to the completion orchestrator.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Complete handles POST /v1/chat. When conversation_id is set the reply is
// stored as an assistant message; a storage failure still returns the reply
// with persisted=false.
//
// @Summary      Request an assistant reply
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      chatRequest  true  "History, oldest first"
// @Success      200   {object}  chatResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      504   {object}  errorResponse
// @Router       /v1/chat [post]
func (h *ChatHandler) Complete(c echo.Context) error {
	start := time.Now()

	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req chatRequest
	if err := bindAndValidate(c, &req); err != nil {
		observeCompletion("rejected", start)
		return err
	}
	conversationID := req.ConversationID
	if conversationID != "" {
		if conversationID, err = parseID("conversation_id", conversationID); err != nil {
			observeCompletion("rejected", start)
			return err
		}
	}

	turns := make([]domain.Turn, len(req.Messages))
	for i, m := range req.Messages {
		turns[i] = domain.Turn{Role: domain.MessageRole(m.Role), Text: m.Content, Images: m.Images}
	}

	res, err := h.service.Complete(c.Request().Context(), caller, ports.ChatInput{
		ConversationID: conversationID,
		Turns:          turns,
	})
	if err != nil {
		observeCompletion(completionResult(err), start)
		return err
	}

	result := "ok"
	if res.PersistErr != nil {
		result = "ok_unpersisted"
	}
	observeCompletion(result, start)

	return c.JSON(http.StatusOK, chatResponse{
		Message:   res.Message,
		MessageID: res.MessageID,
		Persisted: res.Persisted,
	})
}

func completionResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrCompletionTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}

func observeCompletion(result string, start time.Time) {
	metrics.CompletionRequestsTotal.WithLabelValues(result).Inc()
	metrics.CompletionDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
