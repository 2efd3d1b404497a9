package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/internal/pkg/ledger"
)

type fakeUserRepo struct {
	exists    bool
	createErr error
}

func (r *fakeUserRepo) Create(user *models.User) error {
	return r.createErr
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) EmailExists(email string) (bool, error) {
	return r.exists, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	return nil
}

func registerResponse(t *testing.T, users *fakeUserRepo) int {
	t.Helper()
	ac := NewAuthController(users, ledger.NewService(nil))

	app := fiber.New()
	app.Post("/register", ac.HandleRegister)

	req := httptest.NewRequest("POST", "/register",
		strings.NewReader(`{"email":"reader@example.com","password":"secret1"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRegisterDuplicateEmail(t *testing.T) {
	assert.Equal(t, fiber.StatusConflict, registerResponse(t, &fakeUserRepo{exists: true}))
}

func TestRegisterDuplicateEmailRace(t *testing.T) {
	// Both requests pass the EmailExists check; the unique index rejects the
	// second insert, which must still answer 409, not 500.
	users := &fakeUserRepo{exists: false, createErr: gorm.ErrDuplicatedKey}
	assert.Equal(t, fiber.StatusConflict, registerResponse(t, users))
}
