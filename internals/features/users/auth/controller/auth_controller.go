package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"hifzku_backend/internals/features/users/auth/dto"
	"hifzku_backend/internals/features/users/auth/service"
	helper "hifzku_backend/internals/helpers"
	helperAuth "hifzku_backend/internals/helpers/auth"
)

type AuthController struct {
	DB   *gorm.DB
	Auth *service.Auth
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Auth: service.New(db)}
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := helper.Validate(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	res, err := ac.Auth.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserInactive):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case err != nil:
		log.Printf("[AUTH] login: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal login, coba lagi nanti")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    res.AccessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  res.ExpiresAt,
	})
	return helper.JsonOK(c, "Login successful", res)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw := helperAuth.GetRawAccessToken(c)
	if err := ac.Auth.Logout(c.UserContext(), raw); err != nil {
		log.Printf("[WARN] Failed to blacklist token: %v", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})
	return helper.JsonOK(c, "Logout successful", nil)
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	user, fresh, err := ac.Auth.Me(c.UserContext(), actor.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		log.Printf("[AUTH] me: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "")
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"user":  user,
		"actor": fresh,
	})
}
