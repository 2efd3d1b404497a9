package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/token"
	"github.com/litera-app/litera/internal/pkg/usercontext"
)

// AuthController handles registration, login and token introspection.
type AuthController struct {
	users  repository.UserRepository
	ledger *ledger.Service
}

func NewAuthController(users repository.UserRepository, ldg *ledger.Service) *AuthController {
	return &AuthController{users: users, ledger: ldg}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Language  string `json:"language"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a user plus their zero balance and returns a token.
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	exists, err := ac.users.EmailExists(req.Email)
	if err != nil {
		return serviceError(c, err)
	}
	if exists {
		return errorJSON(c, fiber.StatusConflict, "email_taken", "Email is already registered")
	}

	user, err := models.CreateUser(req.Email, req.Password, req.FirstName, req.LastName, req.Language)
	if err != nil {
		return serviceError(c, err)
	}

	if err := ac.users.Create(user); err != nil {
		// Two concurrent registrations can both pass the EmailExists check;
		// the unique index decides, and the loser gets the same 409.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorJSON(c, fiber.StatusConflict, "email_taken", "Email is already registered")
		}
		return serviceError(c, err)
	}

	if err := ac.ledger.Open(user.ID); err != nil {
		// The account exists but has no balance row; surface loudly, the
		// ledger refuses operations until the row is created.
		log.Errorf("[Auth] Failed to open balance for user %d: %v", user.ID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "Account setup failed")
	}

	jwt, err := token.Generate(user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	log.Infof("[Auth] Registered user %d (%s)", user.ID, user.Email)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": jwt,
		"user":  user,
	})
}

// HandleLogin verifies credentials and returns a fresh token.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		// Same answer for unknown email and wrong password.
		return errorJSON(c, fiber.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	}

	if !user.IsActive() {
		return errorJSON(c, fiber.StatusForbidden, "forbidden", "User disabled")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := ac.users.Update(user); err != nil {
		log.Warnf("[Auth] Failed to update last login for user %d: %v", user.ID, err)
	}

	jwt, err := token.Generate(user.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": jwt,
		"user":  user,
	})
}

// HandleCheckToken confirms the bearer token and echoes the resolved identity.
func (ac *AuthController) HandleCheckToken(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.JSON(fiber.Map{
		"valid":    true,
		"user_id":  userCtx.UserID,
		"email":    userCtx.Email,
		"is_admin": userCtx.IsAdmin,
	})
}

// HandleBalance returns the authenticated user's current balance.
func (ac *AuthController) HandleBalance(c *fiber.Ctx) error {
	balance, err := ac.ledger.Balance(usercontext.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"balance":      balance.Balance,
		"last_updated": balance.LastUpdated,
	})
}
