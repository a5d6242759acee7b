package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/middleware"
	"portfolio-catalog/internal/service/inquiry"
)

type InquiryHandler struct {
	inquiryService inquiry.Service
}

func NewInquiryHandler(inquiryService inquiry.Service) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// Create always answers with {success, id} or {success:false, error}.
func (h *InquiryHandler) Create(c *fiber.Ctx) error {
	var input domain.Inquiry
	if err := c.BodyParser(&input); err != nil {
		return respondInquiry(c, fiber.StatusBadRequest, domain.InquiryResponse{Error: "Invalid request body"})
	}

	id, err := h.inquiryService.Submit(c.UserContext(), input, middleware.GetClientIP(c))
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return respondInquiry(c, fiber.StatusUnprocessableEntity, domain.InquiryResponse{Error: validationErr.Reason})
		case errors.Is(err, inquiry.ErrRateLimited):
			return respondInquiry(c, fiber.StatusTooManyRequests, domain.InquiryResponse{Error: err.Error()})
		case errors.Is(err, inquiry.ErrDeliveryFailed):
			return respondInquiry(c, fiber.StatusBadGateway, domain.InquiryResponse{Error: "Your inquiry could not be sent. Please try again."})
		}
		return respondInquiry(c, fiber.StatusInternalServerError, domain.InquiryResponse{Error: "Internal server error"})
	}

	return respondInquiry(c, fiber.StatusOK, domain.InquiryResponse{Success: true, ID: id})
}

func respondInquiry(c *fiber.Ctx, status int, body domain.InquiryResponse) error {
	return c.Status(status).JSON(body)
}
