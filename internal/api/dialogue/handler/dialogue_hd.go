package dialogueHandler

import (
	"SupportDesk/internal/api/dialogue"
	contextPkg "SupportDesk/pkg/context"
	"SupportDesk/pkg/handlerUtil"
	"SupportDesk/pkg/log"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

func (h *DialogueHandler) HandleMessage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing dialogue message")

	var req dialogue.TurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.dialogueService.HandleTurn(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_turn")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *DialogueHandler) GetHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	conversationID := ctx.Params("id")
	if conversationID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("conversation ID is required"), ctx.Path())
	}

	history, err := h.dialogueService.GetHistory(c, conversationID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_history")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, history)
	}
}

func (h *DialogueHandler) GetSimilarTickets(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	text := ctx.Query("text")
	if text == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("text query parameter is required"), ctx.Path())
	}

	k, _ := strconv.Atoi(ctx.Query("k"))

	res, err := h.dialogueService.SimilarTickets(c, text, k)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "similar_tickets")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

// ChatSocket serves the same turn pipeline over a websocket. One JSON turn
// request in, one turn response out, errors delivered in-band.
func (h *DialogueHandler) ChatSocket(conn *websocket.Conn) {
	for {
		var req dialogue.TurnRequest
		if err := conn.ReadJSON(&req); err != nil {
			h.log.WithFields(log.Fields{
				"error": err.Error(),
			}).Debug("Websocket closed")
			return
		}

		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		res, err := h.dialogueService.HandleTurn(c, req)
		cancel()
		if err != nil {
			if writeErr := conn.WriteJSON(fiber.Map{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}
