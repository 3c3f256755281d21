package controller

import (
	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/pkg/serverutils"
)

type IParameterController interface {
	RegisterRoutes(r fiber.Router)
	Catalog(ctx *fiber.Ctx) error
	Defaults(ctx *fiber.Ctx) error
}

// parameterController serves the static parameter catalog so clients can
// build sliders without hardcoding bounds.
type parameterController struct{}

func NewParameterController() IParameterController {
	return &parameterController{}
}

func (c *parameterController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/parameters")
	h.Get("", c.Catalog)
	h.Get("/defaults", c.Defaults)
}

func (c *parameterController) Catalog(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get parameters", dto.ParameterCatalogResponse{
		Parameters: entity.Parameters(),
		Defaults:   entity.DefaultParameterValues(),
	}))
}

func (c *parameterController) Defaults(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get parameter defaults", entity.DefaultParameterValues()))
}
