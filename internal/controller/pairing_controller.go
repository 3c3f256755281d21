package controller

import (
	"github.com/gofiber/fiber/v2"

	"neuroviz-server/internal/pkg/serverutils"
	"neuroviz-server/pkg/pairing"
)

type IPairingController interface {
	RegisterRoutes(r fiber.Router)
	Payload(ctx *fiber.Ctx) error
	IP(ctx *fiber.Ctx) error
	Secret(ctx *fiber.Ctx) error
}

// pairingController exposes the connection payload the operator console
// renders as a QR code. These routes are deliberately unguarded: they are
// how a client obtains the secret in the first place, and the server only
// listens on the lab network.
type pairingController struct {
	payload pairing.Payload
}

func NewPairingController(payload pairing.Payload) IPairingController {
	return &pairingController{
		payload: payload,
	}
}

func (c *pairingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pairing")
	h.Get("", c.Payload)
	h.Get("/ip", c.IP)
	h.Get("/secret", c.Secret)
}

func (c *pairingController) Payload(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get pairing payload", c.payload))
}

func (c *pairingController) IP(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get ip address", fiber.Map{"ip": c.payload.IP}))
}

func (c *pairingController) Secret(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get secret", fiber.Map{"secret": c.payload.Secret}))
}
