package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type chatRequest struct {
	Message string `json:"message" validate:"required" example:"How should I price a 10-seat deal?"`
}

type chatResponse struct {
	Status   string           `json:"status" example:"ok"`
	Response domain.ChatReply `json:"response"`
}

// Reply forwards the message to the configured chat provider. Provider
// failures still return 200 with an error-toned reply.
//
// @Summary      Chatbot reply
// @Tags         chatbot
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      chatRequest  true  "User message"
// @Success      200   {object}  chatResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /api/chatbot [post]
func (h *ChatHandler) Reply(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reply, err := h.service.Reply(c.Request().Context(), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chatResponse{Status: "ok", Response: reply})
}
