package controller

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/internal/pkg/serverutils"
	"neuroviz-server/internal/service"
	"neuroviz-server/internal/stream"
)

type IStateController interface {
	RegisterRoutes(r fiber.Router, secret fiber.Handler)
	Subscribe(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
}

type stateController struct {
	sessionService service.ISessionService
	broker         *stream.Broker
	logger         logger.ILogger
}

func NewStateController(sessionService service.ISessionService, broker *stream.Broker, log logger.ILogger) IStateController {
	return &stateController{
		sessionService: sessionService,
		broker:         broker,
		logger:         log,
	}
}

func (c *stateController) RegisterRoutes(r fiber.Router, secret fiber.Handler) {
	h := r.Group("/state")
	h.Get("/subscribe", secret, c.Subscribe)
	h.Get("/current", secret, c.Current)
}

// Subscribe opens the text/event-stream push connection. The subscriber
// immediately receives the current state, then one message per
// transition. Missed transitions are not replayed.
func (c *stateController) Subscribe(ctx *fiber.Ctx) error {
	// Register with the broker before reading the snapshot: a transition
	// landing in between is then buffered on the channel instead of lost,
	// and the subscriber sees snapshot followed by the newer state.
	ch, cancel := c.broker.Subscribe()

	current, err := json.Marshal(c.sessionService.Current())
	if err != nil {
		cancel()
		return err
	}

	log := c.logger

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeEvent(w, current); err != nil {
			return
		}

		// Keep-alive comments double as liveness probes: a dead peer
		// surfaces as a write error within a second.
		keepAlive := time.NewTicker(time.Second)
		defer keepAlive.Stop()

		for {
			select {
			case data, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, data); err != nil {
					log.Debug("stream", "subscriber write failed", map[string]interface{}{"error": err.Error()})
					return
				}
			case <-keepAlive.C:
				if err := writeComment(w, "keep-alive"); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	return w.Flush()
}

func writeEvent(w *bufio.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// Current returns a one-shot snapshot of the session state.
func (c *stateController) Current(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get state", c.sessionService.Current()))
}
