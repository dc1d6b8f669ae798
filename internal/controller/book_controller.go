package controller

import (
	"bookchat-be/internal/pkg/serverutils"
	"bookchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBookController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Metadata(ctx *fiber.Ctx) error
}

type bookController struct {
	bookService service.IBookService
}

func NewBookController(bookService service.IBookService) IBookController {
	return &bookController{
		bookService: bookService,
	}
}

func (c *bookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/books/v1")
	h.Get("search", c.Search)
	h.Get(":id/metadata", c.Metadata)
}

func (c *bookController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q is required")
	}

	results, err := c.bookService.Search(ctx.UserContext(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search books", results))
}

func (c *bookController) Metadata(ctx *fiber.Ctx) error {
	bookId := ctx.Params("id")

	meta, err := c.bookService.GetMetadata(ctx.UserContext(), bookId)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "book metadata not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get book metadata", meta))
}
