package controller

import (
	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/pkg/serverutils"
	"neuroviz-server/internal/service"
)

type IResultController interface {
	RegisterRoutes(r fiber.Router, secret fiber.Handler)
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type resultController struct {
	resultService service.IResultService
}

func NewResultController(resultService service.IResultService) IResultController {
	return &resultController{
		resultService: resultService,
	}
}

func (c *resultController) RegisterRoutes(r fiber.Router, secret fiber.Handler) {
	h := r.Group("/results")
	h.Use(secret)
	h.Get("", c.List)
	h.Delete(":experiment_key/:key", c.Delete)
}

func (c *resultController) List(ctx *fiber.Ctx) error {
	res, err := c.resultService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list results", res))
}

func (c *resultController) Delete(ctx *fiber.Ctx) error {
	err := c.resultService.Delete(ctx.Context(), ctx.Params("experiment_key"), ctx.Params("key"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete result", nil))
}
