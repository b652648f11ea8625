package http

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/store"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/view"
)

const requestTimeout = 20 * time.Second

// EventLister is the read side of the event journal.
type EventLister interface {
	ListEvents(ctx context.Context, kind domain.EventKind, limit int) ([]domain.Event, error)
}

type Handlers struct {
	Store  *store.Store
	Events EventLister // nil when no journal is configured
	Log    zerolog.Logger
}

func Register(app *fiber.App, h *Handlers) {
	app.Use(h.logRequests)

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", h.table)
	app.Get("/meters", h.table)
	app.Post("/meters/:id/delete", h.deleteForm)

	api := app.Group("/api")
	api.Get("meters", h.apiMeters)
	api.Delete("meters/:id", h.apiDelete)
	if h.Events != nil {
		api.Get("events", h.apiEvents)
	}
}

func (h *Handlers) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if p := c.Path(); p == "/health" || p == "/metrics" {
		return err
	}
	h.Log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}

// load fetches the requested page, or refreshes the current one when no page is given.
func (h *Handlers) load(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var err error
	if n := c.QueryInt("page", 0); n != 0 {
		_, err = h.Store.GoToPage(ctx, n)
	} else {
		_, err = h.Store.FetchPage(ctx)
	}
	if errors.Is(err, store.ErrStalePage) {
		return nil
	}
	return err
}

func (h *Handlers) table(c *fiber.Ctx) error {
	err := h.load(c)
	return h.renderTable(c, err, "")
}

func (h *Handlers) deleteForm(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	_, err := h.Store.DeleteMeter(ctx, c.Params("id"))
	switch {
	case errors.Is(err, store.ErrStalePage):
		return h.renderTable(c, nil, "")
	case errors.Is(err, store.ErrDelete):
		return h.renderTable(c, err, "Не удалось удалить счётчик")
	}
	return h.renderTable(c, err, "")
}

func (h *Handlers) renderTable(c *fiber.Ctx, err error, failure string) error {
	page := view.Build(h.Store.Snapshot())
	status := fiber.StatusOK
	if err != nil {
		status = fiber.StatusBadGateway
		if failure == "" {
			failure = "Не удалось загрузить данные"
		}
		page.Error = failure
	}

	var buf bytes.Buffer
	if rerr := view.Render(&buf, page); rerr != nil {
		h.Log.Error().Err(rerr).Msg("render error")
		return c.Status(fiber.StatusInternalServerError).SendString("template error")
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (h *Handlers) apiMeters(c *fiber.Ctx) error {
	if err := h.load(c); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view.Build(h.Store.Snapshot()))
}

func (h *Handlers) apiDelete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	if _, err := h.Store.DeleteMeter(ctx, c.Params("id")); err != nil && !errors.Is(err, store.ErrStalePage) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view.Build(h.Store.Snapshot()))
}

func (h *Handlers) apiEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be in 1..500"})
	}
	items, err := h.Events.ListEvents(c.UserContext(), domain.EventKind(c.Query("kind")), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}
