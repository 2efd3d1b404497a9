package controllers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/payment"
	"github.com/litera-app/litera/internal/pkg/pricing"
	"github.com/litera-app/litera/internal/pkg/translation"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return serviceError(c, err)
	})

	resp, terr := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, terr)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown pricing model", pricing.ErrUnknownModel, fiber.StatusBadRequest},
		{"invalid plan", pricing.ErrInvalidPlan, fiber.StatusBadRequest},
		{"unsupported format", translation.ErrUnsupportedFormat, fiber.StatusBadRequest},
		{"invalid amount", payment.ErrInvalidAmount, fiber.StatusBadRequest},
		{"insufficient funds", ledger.ErrInsufficientFunds, fiber.StatusPaymentRequired},
		{"book not found", translation.ErrBookNotFound, fiber.StatusNotFound},
		{"job not found", translation.ErrJobNotFound, fiber.StatusNotFound},
		{"payment not found", payment.ErrPaymentNotFound, fiber.StatusNotFound},
		{"result not ready", translation.ErrResultNotReady, fiber.StatusConflict},
		{"payment declined", payment.ErrPaymentDeclined, fiber.StatusConflict},
		{"duplicate key", gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(t, tt.err))
		})
	}
}
