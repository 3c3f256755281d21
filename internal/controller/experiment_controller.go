package controller

import (
	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/pkg/serverutils"
	"neuroviz-server/internal/service"
)

type IExperimentController interface {
	RegisterRoutes(r fiber.Router, secret fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type experimentController struct {
	experimentService service.IExperimentService
}

func NewExperimentController(experimentService service.IExperimentService) IExperimentController {
	return &experimentController{
		experimentService: experimentService,
	}
}

func (c *experimentController) RegisterRoutes(r fiber.Router, secret fiber.Handler) {
	h := r.Group("/experiments")
	h.Use(secret)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Delete(":key", c.Delete)
}

func (c *experimentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateExperimentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.experimentService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create experiment", res))
}

func (c *experimentController) List(ctx *fiber.Ctx) error {
	res, err := c.experimentService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list experiments", res))
}

func (c *experimentController) Delete(ctx *fiber.Ctx) error {
	if err := c.experimentService.Delete(ctx.Context(), ctx.Params("key")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete experiment", nil))
}
