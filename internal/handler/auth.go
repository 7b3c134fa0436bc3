package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/filmhub/internal/auth"
	"github.com/goliatone/filmhub/internal/model"
	"github.com/goliatone/filmhub/internal/repository"
	errors "github.com/goliatone/go-errors"
)

// AuthController serves the session lifecycle endpoints.
type AuthController struct {
	auther  *auth.Authenticator
	cookies *auth.CookieWriter
	users   repository.Users
	logger  *slog.Logger
}

// NewAuthController returns a new AuthController.
func NewAuthController(auther *auth.Authenticator, cookies *auth.CookieWriter, users repository.Users, logger *slog.Logger) *AuthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthController{
		auther:  auther,
		cookies: cookies,
		users:   users,
		logger:  logger,
	}
}

// Signup handles POST /api/auth/signup.
func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(fiber.StatusBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	if _, err := a.auther.Signup(c.UserContext(), auth.SignupInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Signup successful. Please check your email for verification.",
	})
}

// Login handles POST /api/auth/login. A successful login sets both session
// cookies.
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(fiber.StatusBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	pair, user, err := a.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.cookies.SetSessionCookies(c, pair)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user.Public(),
	})
}

// GoogleCallback handles POST /api/auth/google/callback with a provider ID
// token.
func (a *AuthController) GoogleCallback(c *fiber.Ctx) error {
	payload := new(GoogleCallbackPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
			WithCode(fiber.StatusBadRequest)
	}
	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	pair, user, err := a.auther.FederatedLogin(c.UserContext(), payload.Token)
	if err != nil {
		return err
	}

	a.cookies.SetSessionCookies(c, pair)

	return c.JSON(fiber.Map{
		"user": user.Public(),
	})
}

// Logout handles POST /api/auth/logout. Runs behind the session middleware.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c.UserContext())
	if !ok {
		return auth.ErrUnauthenticated
	}

	if err := a.auther.Logout(c.UserContext(), userID); err != nil {
		return err
	}

	a.cookies.ClearSessionCookies(c)

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// VerifyEmail handles GET /api/auth/verify-email/:token.
func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return auth.ErrVerificationNotFound
	}

	user, err := a.auther.VerifyEmail(c.UserContext(), token)
	if err != nil {
		return err
	}

	a.logger.Info("email verified", "user_id", user.ID)

	return c.JSON(fiber.Map{
		"message": "Email verified successfully! You can now log in to your account.",
	})
}

// CheckVerification handles GET /api/auth/check-verification/:email.
func (a *AuthController) CheckVerification(c *fiber.Ctx) error {
	payload := CheckVerificationPayload{Email: c.Params("email")}
	if err := payload.Validate(); err != nil {
		return ValidationError(err)
	}

	verified, err := a.auther.VerificationStatus(c.UserContext(), payload.Email)
	if err != nil {
		return err
	}

	message := "User has not verified their account"
	if verified {
		message = "User has verified their account"
	}

	return c.JSON(fiber.Map{
		"isVerified": verified,
		"message":    message,
	})
}

// Check handles GET /api/auth/check. Runs behind the session middleware and
// echoes the authenticated user.
func (a *AuthController) Check(c *fiber.Ctx) error {
	user, err := a.currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Authenticated",
		"user":    user.Public(),
	})
}

func (a *AuthController) currentUser(c *fiber.Ctx) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(c.UserContext())
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	user, err := a.users.GetByID(c.UserContext(), userID.String())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return user, nil
}
