package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/litera-app/litera/internal/pkg/payment"
	"github.com/litera-app/litera/internal/pkg/usercontext"
)

// PaymentController handles top-ups, subscriptions and the provider callbacks.
type PaymentController struct {
	service *payment.Service
}

func NewPaymentController(service *payment.Service) *PaymentController {
	return &PaymentController{service: service}
}

type createPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type subscribeRequest struct {
	PlanID string `json:"plan_id"`
}

// HandleCreatePayment starts a one-time top-up and returns the approval URL.
func (pc *PaymentController) HandleCreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	result, err := pc.service.CreatePayment(c.Context(), usercontext.GetUserID(c), req.Amount)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandlePaymentSuccess is the provider return callback for one-time payments.
// PayPal appends paymentId and PayerID as query parameters.
func (pc *PaymentController) HandlePaymentSuccess(c *fiber.Ctx) error {
	paymentID := c.Query("paymentId")
	payerID := c.Query("PayerID")
	if paymentID == "" || payerID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Missing paymentId or PayerID")
	}

	tx, err := pc.service.ConfirmPayment(c.Context(), paymentID, payerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(tx)
}

// HandleSubscribe starts a subscription purchase.
func (pc *PaymentController) HandleSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	result, err := pc.service.Subscribe(c.Context(), usercontext.GetUserID(c), req.PlanID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleSubscriptionSuccess is the provider return callback for subscriptions.
func (pc *PaymentController) HandleSubscriptionSuccess(c *fiber.Ctx) error {
	paymentID := c.Query("paymentId")
	payerID := c.Query("PayerID")
	if paymentID == "" || payerID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Missing paymentId or PayerID")
	}

	sub, err := pc.service.ConfirmSubscription(c.Context(), paymentID, payerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sub)
}

// HandlePlans lists the fixed subscription catalog with the ledger credit
// each plan grants on activation.
func (pc *PaymentController) HandlePlans(c *fiber.Ctx) error {
	catalog := pc.service.Plans()
	plans := make([]fiber.Map, 0, len(catalog))
	for _, p := range catalog {
		plans = append(plans, fiber.Map{
			"id":               p.ID,
			"name":             p.Name,
			"price":            p.Amount,
			"bonus_percentage": p.BonusPercentage,
			"credit":           p.Credit(),
			"description":      p.Description,
		})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleTransactions returns the user's payment history.
func (pc *PaymentController) HandleTransactions(c *fiber.Ctx) error {
	txs, err := pc.service.Transactions(usercontext.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}
