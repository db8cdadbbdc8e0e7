package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/middleware"
	"github.com/pegasusmrx/store-backend/internal/utils"
)

type AuthHandler struct {
	PasswordHash string
	JWTSecret    string
	Expires      int
	Log          *zap.Logger
}

type LoginReq struct {
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	password := strings.TrimSpace(req.Password)
	if password == "" {
		errs := FieldErrors{}
		errs.Add("password", "Password is required")
		return validationFail(c, errs)
	}

	if !utils.CheckPassword(h.PasswordHash, password) {
		h.Log.Warn("failed admin login", zap.String("ip", clientIP(c)))
		return fail(c, fiber.StatusUnauthorized, "Invalid password")
	}

	token, err := utils.SignAdminJWT(h.JWTSecret, h.Expires)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(h.Expires) * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return ok(c, fiber.Map{"loggedIn": true})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return ok(c, fiber.Map{"loggedIn": false})
}
