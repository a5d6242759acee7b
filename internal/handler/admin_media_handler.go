package handler

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/middleware"
	"portfolio-catalog/internal/service/catalog"
	"portfolio-catalog/internal/service/mutation"
	"portfolio-catalog/internal/service/upload"
)

type AdminMediaHandler struct {
	catalogService  catalog.Service
	uploadService   upload.Service
	mutationService mutation.Service
}

func NewAdminMediaHandler(catalogService catalog.Service, uploadService upload.Service, mutationService mutation.Service) *AdminMediaHandler {
	return &AdminMediaHandler{
		catalogService:  catalogService,
		uploadService:   uploadService,
		mutationService: mutationService,
	}
}

// List is the unfiltered admin view unless ?kind= is given.
func (h *AdminMediaHandler) List(c *fiber.Ctx) error {
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

func (h *AdminMediaHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}

	file, closeFile, err := openUpload(fileHeader)
	if err != nil {
		return middleware.BadRequest("Failed to read file")
	}
	defer closeFile()

	input := domain.FileUploadInput{
		Kind:        domain.MediaKind(c.FormValue("kind")),
		File:        file,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Name:        c.FormValue("name"),
	}
	if typeDetail := strings.TrimSpace(c.FormValue("type_detail")); typeDetail != "" {
		input.TypeDetail = &typeDetail
	}

	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		thumb, closeThumb, err := openUpload(thumbHeader)
		if err != nil {
			return middleware.BadRequest("Failed to read thumbnail")
		}
		defer closeThumb()
		input.Thumbnail = &thumb
	}

	record, err := h.uploadService.UploadFile(c.UserContext(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *AdminMediaHandler) AddLink(c *fiber.Ctx) error {
	var input domain.LinkInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	record, err := h.uploadService.AddLink(c.UserContext(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *AdminMediaHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var input domain.UpdateMediaInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	record, err := h.mutationService.Edit(c.UserContext(), id, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(record)
}

func (h *AdminMediaHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.mutationService.DeleteByID(c.UserContext(), id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

// openUpload opens a multipart file. A missing or generic Content-Type is replaced
// by one sniffed from the content.
func openUpload(header *multipart.FileHeader) (domain.FileUpload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return domain.FileUpload{}, nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		detected, err := mimetype.DetectReader(f)
		if err == nil {
			contentType = detected.String()
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			_ = f.Close()
			return domain.FileUpload{}, nil, err
		}
	}

	return domain.FileUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
