package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolio-catalog/internal/service/catalog"
)

type MediaHandler struct {
	catalogService catalog.Service
}

func NewMediaHandler(catalogService catalog.Service) *MediaHandler {
	return &MediaHandler{catalogService: catalogService}
}

func (h *MediaHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	snapshot, err := h.catalogService.FetchAll(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(snapshot)
}

func (h *MediaHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	record, err := h.catalogService.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(record)
}
