package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

// ConversationHandler serves the caller's own conversations. Another user's
// conversation is indistinguishable from a missing one.
type ConversationHandler struct {
	service ports.ConversationService
}

func NewConversationHandler(service ports.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// List handles GET /v1/conversations, most recently updated first.
//
// @Summary      List own conversations
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  conversationListResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/conversations [get]
func (h *ConversationHandler) List(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	convs, err := h.service.ListConversations(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	if convs == nil {
		convs = []domain.ConversationSummary{}
	}
	return c.JSON(http.StatusOK, conversationListResponse{Conversations: convs})
}

// Create handles POST /v1/conversations.
//
// @Summary      Start a conversation
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      conversationTitleRequest  false  "Optional title"
// @Success      201   {object}  domain.Conversation
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/conversations [post]
func (h *ConversationHandler) Create(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req conversationTitleRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}

	conv, err := h.service.CreateConversation(c.Request().Context(), caller, req.Title)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/conversations/"+conv.ID)
	return c.JSON(http.StatusCreated, conv)
}

// Get handles GET /v1/conversations/:id.
//
// @Summary      Get a conversation with its messages
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation id (UUID)"
// @Success      200  {object}  domain.ConversationDetail
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.GetConversation(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	if detail.Messages == nil {
		detail.Messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, detail)
}

// Rename handles PUT /v1/conversations/:id.
//
// @Summary      Rename a conversation
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Conversation id (UUID)"
// @Param        body  body      conversationTitleRequest  true  "New title"
// @Success      200   {object}  domain.Conversation
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/conversations/{id} [put]
func (h *ConversationHandler) Rename(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req conversationTitleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	conv, err := h.service.RenameConversation(c.Request().Context(), caller, id, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conv)
}

// Delete handles DELETE /v1/conversations/:id.
//
// @Summary      Delete a conversation
// @Tags         conversations
// @Security     BearerAuth
// @Param        id   path  string  true  "Conversation id (UUID)"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteConversation(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AppendMessage handles POST /v1/conversations/:id/messages and stores a
// user turn.
//
// @Summary      Append a user message
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Conversation id (UUID)"
// @Param        body  body      appendMessageRequest  true  "Text and image references"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/conversations/{id}/messages [post]
func (h *ConversationHandler) AppendMessage(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req appendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	msg, err := h.service.AppendUserMessage(c.Request().Context(), caller, id, req.Content, req.Images)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}
