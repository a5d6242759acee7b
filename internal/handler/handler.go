package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/middleware"
	"portfolio-catalog/internal/service"
)

type Handlers struct {
	Auth       *AuthHandler
	Media      *MediaHandler
	AdminMedia *AdminMediaHandler
	Stream     *StreamHandler
	Inquiry    *InquiryHandler
}

// NewHandlers wires the HTTP handlers. ctx bounds long-lived streams and is
// cancelled on shutdown.
func NewHandlers(ctx context.Context, services *service.Services, log *slog.Logger) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(services.Auth),
		Media:      NewMediaHandler(services.Catalog),
		AdminMedia: NewAdminMediaHandler(services.Catalog, services.Upload, services.Mutation),
		Stream:     NewStreamHandler(ctx, services.Galleries, log),
		Inquiry:    NewInquiryHandler(services.Inquiry),
	}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid media ID")
	}
	return id, nil
}

// parseFilter reads ?kind=; an empty value selects every record.
func parseFilter(c *fiber.Ctx) (domain.CatalogFilter, error) {
	kind := c.Query("kind")
	if kind == "" {
		return domain.CatalogFilter{}, nil
	}
	k := domain.MediaKind(kind)
	if !k.IsValid() {
		return domain.CatalogFilter{}, middleware.BadRequest("kind must be artwork or video")
	}
	return domain.FilterByKind(k), nil
}
