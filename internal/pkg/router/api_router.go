package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/litera-app/litera/app/controllers"
	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/middleware"
)

// ApiRouter installs the JSON API under /api. Provider callbacks and the
// auth endpoints are public; everything else requires a bearer token.
type ApiRouter struct {
	users       repository.UserRepository
	auth        *controllers.AuthController
	translation *controllers.TranslationController
	payment     *controllers.PaymentController
}

func NewApiRouter(
	users repository.UserRepository,
	auth *controllers.AuthController,
	translation *controllers.TranslationController,
	payment *controllers.PaymentController,
) *ApiRouter {
	return &ApiRouter{
		users:       users,
		auth:        auth,
		translation: translation,
		payment:     payment,
	}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	requireAuth := middleware.BearerAuthMiddleware(h.users)

	auth := api.Group("/auth")
	auth.Post("/register", h.auth.HandleRegister)
	auth.Post("/login", h.auth.HandleLogin)
	auth.Get("/check-token", requireAuth, h.auth.HandleCheckToken)
	auth.Get("/balance", requireAuth, h.auth.HandleBalance)

	translation := api.Group("/translation", requireAuth)
	translation.Post("/upload-book", h.translation.HandleUploadBook)
	translation.Get("/books", h.translation.HandleListBooks)
	translation.Post("/calculate-cost", h.translation.HandleCalculateCost)
	translation.Post("/start-translation", h.translation.HandleStartTranslation)
	translation.Get("/jobs", h.translation.HandleListJobs)
	translation.Get("/download/:job_id", h.translation.HandleDownload)

	payment := api.Group("/payment")
	payment.Post("/create", requireAuth, h.payment.HandleCreatePayment)
	payment.Post("/subscribe", requireAuth, h.payment.HandleSubscribe)
	payment.Get("/plans", h.payment.HandlePlans)
	payment.Get("/transactions", requireAuth, h.payment.HandleTransactions)
	// Provider return URLs; PayPal redirects the buyer here without a token.
	payment.Get("/success", h.payment.HandlePaymentSuccess)
	payment.Get("/subscription/success", h.payment.HandleSubscriptionSuccess)
}
