package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/payment"
	"github.com/litera-app/litera/internal/pkg/pricing"
	"github.com/litera-app/litera/internal/pkg/translation"
)

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// serviceError maps service-layer sentinel errors to HTTP responses.
// Unrecognized errors become a 500 without leaking internals.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pricing.ErrUnknownModel):
		return errorJSON(c, fiber.StatusBadRequest, "unknown_model", "Unknown pricing model")
	case errors.Is(err, pricing.ErrInvalidPlan):
		return errorJSON(c, fiber.StatusBadRequest, "invalid_plan", "Unknown subscription plan")
	case errors.Is(err, translation.ErrUnsupportedFormat):
		return errorJSON(c, fiber.StatusBadRequest, "unsupported_format", "Unsupported document format")
	case errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidAmount):
		return errorJSON(c, fiber.StatusBadRequest, "invalid_amount", "Amount must be positive")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return errorJSON(c, fiber.StatusPaymentRequired, "insufficient_funds", "Insufficient balance")
	case errors.Is(err, translation.ErrBookNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Book not found")
	case errors.Is(err, translation.ErrJobNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Translation job not found")
	case errors.Is(err, payment.ErrPaymentNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Payment not found")
	case errors.Is(err, translation.ErrResultNotReady):
		return errorJSON(c, fiber.StatusConflict, "not_ready", "Translation result not ready")
	case errors.Is(err, payment.ErrPaymentDeclined):
		return errorJSON(c, fiber.StatusConflict, "payment_declined", "Payment was declined by the provider")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not_found", "Record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errorJSON(c, fiber.StatusConflict, "duplicate", "Record already exists")
	default:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errorJSON(c, fiber.StatusBadRequest, "validation_failed", err.Error())
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Something went wrong")
	}
}
