package controller

import (
	"encoding/json"
	"errors"

	"bookchat-be/internal/dto"
	"bookchat-be/internal/pkg/logger"
	"bookchat-be/internal/pkg/serverutils"
	"bookchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Check(ctx *fiber.Ctx) error
	Prepare(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService      service.IChatService
	publisherService service.IPublisherService
	sysLogger        logger.ILogger
}

func NewChatController(chatService service.IChatService, publisherService service.IPublisherService, sysLogger logger.ILogger) IChatController {
	return &chatController{
		chatService:      chatService,
		publisherService: publisherService,
		sysLogger:        sysLogger,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("query", c.Query)
	h.Get("check", c.Check)
	h.Post("prepare", c.Prepare)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Answer(ctx.UserContext(), &req)
	if err != nil {
		return c.queryError(ctx, &req, err)
	}

	return ctx.JSON(res)
}

// queryError renders expected failure modes as the chat envelope with the
// caller's history echoed back unchanged. Unexpected errors fall through to
// the error-handler middleware.
func (c *chatController) queryError(ctx *fiber.Ctx, req *dto.ChatQueryRequest, err error) error {
	status := 0
	switch {
	case errors.Is(err, service.ErrMetadataUnavailable):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrChatUnavailable):
		status = fiber.StatusServiceUnavailable
	default:
		return err
	}

	c.sysLogger.Warn("chat", "query failed", map[string]interface{}{
		"book_id": req.BookId,
		"error":   err.Error(),
	})

	return ctx.Status(status).JSON(dto.ChatQueryResponse{
		Status:  "error",
		History: req.History,
		Message: err.Error(),
	})
}

func (c *chatController) Check(ctx *fiber.Ctx) error {
	bookId := ctx.Query("book_id")
	if bookId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "book_id is required")
	}

	exists, err := c.chatService.Check(ctx.UserContext(), bookId)
	if err != nil {
		return err
	}

	res := dto.CheckBookResponse{Exists: exists}
	if exists {
		res.Status = "ready"
		res.Message = "Book corpus is prepared"
	} else {
		res.Status = "not_ready"
		res.Message = "Book corpus has not been prepared yet"
	}
	return ctx.JSON(res)
}

func (c *chatController) Prepare(ctx *fiber.Ctx) error {
	var req dto.PrepareBookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	payload, err := json.Marshal(dto.PublishPrepareBookMessage{
		BookId: req.BookId,
		Title:  req.Title,
		Author: req.Author,
	})
	if err != nil {
		return err
	}

	if err := c.publisherService.Publish(ctx.UserContext(), payload); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse(
		"Book preparation queued",
		dto.PrepareBookResponse{BookId: req.BookId, Queued: true},
	))
}
