package server

import (
	"strings"
	"time"

	"anecdote/internal/models"
	"anecdote/internal/observability"
	"anecdote/internal/service"

	"github.com/gofiber/fiber/v2"
)

const sessionCookieName = "token"

// sessionToken extracts the session token from the cookie set at login, or
// from an Authorization Bearer header for non-browser clients.
func (s *Server) sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(sessionCookieName); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return ""
}

// setSessionCookie writes the session cookie. The cookie lives exactly as
// long as the token it carries, is unreadable from scripts, and only travels
// same-site.
func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.authService.TokenTTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

// clearSessionCookie expires the session cookie immediately.
func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	observability.AuthAttempts.WithLabelValues("signup", observability.Outcome(err)).Inc()
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user.Summary(),
	})
}

// Login handles POST /api/auth/login. On success the session token is set as
// an httpOnly cookie; it is also returned in the body for clients that cannot
// use cookies.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authService.Authenticate(c.Context(), req.Username, req.Password)
	observability.AuthAttempts.WithLabelValues("login", observability.Outcome(err)).Inc()
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"ok":    true,
		"token": token,
		"user":  user.Summary(),
	})
}

// Logout handles POST /api/auth/logout. Sessions are stateless signed tokens,
// so logout only clears the cookie; a copy of the token kept elsewhere stays
// valid until it expires.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Me handles GET /api/auth/me and returns the authenticated identity.
func (s *Server) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Locals("username").(string)
	return c.JSON(fiber.Map{
		"user": models.UserSummary{ID: userID, Username: username},
	})
}
