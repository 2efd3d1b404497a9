package controllers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/litera-app/litera/internal/pkg/translation"
	"github.com/litera-app/litera/internal/pkg/usercontext"
)

// TranslationController handles uploads, estimates and the job API.
type TranslationController struct {
	service *translation.Service
}

func NewTranslationController(service *translation.Service) *TranslationController {
	return &TranslationController{service: service}
}

type calculateCostRequest struct {
	BookID    uint `json:"book_id"`
	ModelType int  `json:"model_type"`
}

type startTranslationRequest struct {
	BookID         uint   `json:"book_id"`
	TargetLanguage string `json:"target_language"`
	ModelType      int    `json:"model_type"`
}

// HandleUploadBook accepts a multipart document upload.
func (tc *TranslationController) HandleUploadBook(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Missing file upload")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Unreadable file upload")
	}
	defer f.Close()

	book, err := tc.service.UploadBook(usercontext.GetUserID(c), fileHeader.Filename, f, c.FormValue("source_language"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(book)
}

// HandleCalculateCost estimates the translation cost for a stored book.
func (tc *TranslationController) HandleCalculateCost(c *fiber.Ctx) error {
	var req calculateCostRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	cost, err := tc.service.CalculateCost(usercontext.GetUserID(c), req.BookID, req.ModelType)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"book_id":        req.BookID,
		"model_type":     req.ModelType,
		"estimated_cost": cost,
	})
}

// HandleStartTranslation debits the cost and enqueues the job.
func (tc *TranslationController) HandleStartTranslation(c *fiber.Ctx) error {
	var req startTranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if req.TargetLanguage == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "target_language is required")
	}

	job, err := tc.service.Start(usercontext.GetUserID(c), req.BookID, req.TargetLanguage, req.ModelType)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleListBooks returns the user's uploaded books.
func (tc *TranslationController) HandleListBooks(c *fiber.Ctx) error {
	books, err := tc.service.Books(usercontext.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"books": books})
}

// HandleListJobs returns the user's translation jobs.
func (tc *TranslationController) HandleListJobs(c *fiber.Ctx) error {
	jobs, err := tc.service.List(usercontext.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

// HandleDownload streams the translated document of a completed job.
func (tc *TranslationController) HandleDownload(c *fiber.Ctx) error {
	jobID, err := strconv.ParseUint(c.Params("job_id"), 10, 32)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid job id")
	}

	rc, filename, err := tc.service.Download(usercontext.GetUserID(c), uint(jobID))
	if err != nil {
		return serviceError(c, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to read result")
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}
