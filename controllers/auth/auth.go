package authController

import (
	"errors"
	"internhub/middleware"
	"internhub/models"
	"internhub/services"
	authValidator "internhub/validators/auth"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Controller serves signup, login and the caller's profile.
type Controller struct {
	auth  *services.AuthService
	users services.UserStore
}

func New(auth *services.AuthService, users services.UserStore) *Controller {
	return &Controller{auth: auth, users: users}
}

func (ctl *Controller) Signup(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedSignup").(services.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := ctl.auth.Signup(c.UserContext(), req)
	if errors.Is(err, models.ErrValidation) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, models.Message(err)+"!", nil)
	}
	if err != nil {
		log.Printf("[AUTH] signup failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", user)
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	creds, ok := c.Locals("validatedLogin").(authValidator.Credentials)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := ctl.auth.Login(c.UserContext(), creds.Email, creds.Password)
	if errors.Is(err, models.ErrUnauthorized) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}
	if err != nil {
		log.Printf("[AUTH] login failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Role, user.Email)
	if err != nil {
		log.Printf("[AUTH] token generation failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated account with its sectors.
func (ctl *Controller) Me(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User ID not found!", nil)
	}
	user, err := ctl.users.FindByID(c.UserContext(), userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched!", user)
}
