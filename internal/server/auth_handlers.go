package server

import (
	"fmt"
	"time"

	"fittrack/internal/middleware"
	"fittrack/internal/models"
	"fittrack/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Register handles POST /registration
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Age      *int   `json:"age"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, password, email, and age are required"))
	}

	if req.Username == "" || req.Password == "" || req.Email == "" || req.Age == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, password, email, and age are required"))
	}

	if *req.Age < 18 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You must be 18 or older to register"))
	}

	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password must be at least 8 characters long and contain at least one special character and one number"))
	}

	existing, err := s.userRepo.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username already exists"))
	}

	existingEmail, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existingEmail != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Age:      *req.Age,
		Role:     models.RoleDefault,
	}
	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		// A concurrent registration can slip past the pre-checks; the unique
		// columns report it as a duplicate.
		return models.RespondWithError(c, fiber.StatusBadRequest, createErr)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		"username", user.Username)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.userRepo.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid username or password"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid username or password"))
	}

	token, err := s.generateToken(user.Username, user.Role)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	// Registering the token makes it an active session member. Each login
	// adds another token so multiple devices can stay signed in at once.
	if err := s.sessions.AddToken(c.Context(), user.Username, token); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in",
		"username", user.Username)

	return c.JSON(fiber.Map{"jwt_token": token})
}

// Logout handles POST /logout. Only the presented token is removed, so
// other devices holding their own tokens stay logged in.
func (s *Server) Logout(c *fiber.Ctx) error {
	username := s.currentUsername(c)
	token, _ := c.Locals("token").(string)

	if err := s.sessions.RemoveToken(c.Context(), username, token); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged out",
		"username", username)

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// generateToken creates a JWT for the given username and role
func (s *Server) generateToken(username string, role models.Role) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,                            // Identity used by the session registry
		"hasRole":  string(role),                        // Role checked by AdminRequired
		"sub":      "fitnessTrackingSystem",             // Subject
		"exp":      now.Add(s.config.TokenTTL()).Unix(), // Expiration
		"iat":      now.Unix(),                          // Issued at
		"jti":      s.generateJTI(),                     // Unique ID so repeated logins mint distinct tokens
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID so two logins in the same second
// still produce distinct session members.
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
