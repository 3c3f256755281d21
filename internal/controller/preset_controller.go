package controller

import (
	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/pkg/serverutils"
	"neuroviz-server/internal/service"
)

type IPresetController interface {
	RegisterRoutes(r fiber.Router, secret fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type presetController struct {
	presetService service.IPresetService
}

func NewPresetController(presetService service.IPresetService) IPresetController {
	return &presetController{
		presetService: presetService,
	}
}

func (c *presetController) RegisterRoutes(r fiber.Router, secret fiber.Handler) {
	h := r.Group("/presets")
	h.Use(secret)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Delete(":key", c.Delete)
}

func (c *presetController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePresetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.presetService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create preset", res))
}

func (c *presetController) List(ctx *fiber.Ctx) error {
	res, err := c.presetService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list presets", res))
}

func (c *presetController) Delete(ctx *fiber.Ctx) error {
	if err := c.presetService.Delete(ctx.Context(), ctx.Params("key")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete preset", nil))
}
