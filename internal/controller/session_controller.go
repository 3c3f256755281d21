package controller

import (
	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/dto"
	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/pkg/serverutils"
	"neuroviz-server/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, secret fiber.Handler)
	SetIdleMode(ctx *fiber.Ctx) error
	SetLiveMode(ctx *fiber.Ctx) error
	SetLiveParameters(ctx *fiber.Ctx) error
	StartExperiment(ctx *fiber.Ctx) error
	AnswerExperiment(ctx *fiber.Ctx) error
	SwapPreset(ctx *fiber.Ctx) error
	ExitExperiment(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, secret fiber.Handler) {
	h := r.Group("/session")
	h.Use(secret)
	h.Post("/idle", c.SetIdleMode)
	h.Post("/live", c.SetLiveMode)
	h.Put("/live/parameters", c.SetLiveParameters)
	h.Post("/experiment/start", c.StartExperiment)
	h.Post("/experiment/answer", c.AnswerExperiment)
	h.Post("/experiment/swap", c.SwapPreset)
	h.Post("/experiment/exit", c.ExitExperiment)
}

func (c *sessionController) SetIdleMode(ctx *fiber.Ctx) error {
	c.sessionService.SetIdleMode()
	return ctx.JSON(serverutils.SuccessResponse("Success set idle mode", nil))
}

func (c *sessionController) SetLiveMode(ctx *fiber.Ctx) error {
	var req dto.SetLiveModeRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := c.sessionService.SetLiveMode(&req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set live mode", c.sessionService.Current()))
}

func (c *sessionController) SetLiveParameters(ctx *fiber.Ctx) error {
	var req dto.SetLiveParametersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessionService.SetLiveParameters(&req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set live parameters", c.sessionService.Current()))
}

func (c *sessionController) StartExperiment(ctx *fiber.Ctx) error {
	var req dto.StartExperimentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	state, err := c.sessionService.StartExperiment(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success start experiment", state))
}

func (c *sessionController) AnswerExperiment(ctx *fiber.Ctx) error {
	var answer entity.ExperimentAnswer
	if err := ctx.BodyParser(&answer); err != nil {
		return err
	}

	res, err := c.sessionService.AnswerExperiment(ctx.Context(), answer)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer experiment", res))
}

func (c *sessionController) SwapPreset(ctx *fiber.Ctx) error {
	if err := c.sessionService.SwapPreset(); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success swap preset", nil))
}

func (c *sessionController) ExitExperiment(ctx *fiber.Ctx) error {
	if err := c.sessionService.ExitExperiment(); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success exit experiment", nil))
}
