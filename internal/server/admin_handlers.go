package server

import (
	"strconv"

	"fittrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

type exerciseRequest struct {
	Name        string `json:"name"`
	YoutubeLink string `json:"youtube_link"`
	BodyPart    string `json:"bodyPart"`
	Description string `json:"description"`
}

func (r *exerciseRequest) complete() bool {
	return r.Name != "" && r.YoutubeLink != "" && r.BodyPart != "" && r.Description != ""
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// AddExercise handles POST /admin/exercises
func (s *Server) AddExercise(c *fiber.Ctx) error {
	var req exerciseRequest
	if err := c.BodyParser(&req); err != nil || !req.complete() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing required fields"))
	}

	bodyPart, err := s.catalogRepo.GetBodyPartByName(c.Context(), req.BodyPart)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if bodyPart == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Body part not found"))
	}

	exercise := &models.Exercise{
		Name:        req.Name,
		YoutubeLink: req.YoutubeLink,
		BodyPartID:  bodyPart.ID,
		Description: req.Description,
	}
	if err := s.catalogRepo.CreateExercise(c.Context(), exercise); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Exercise added successfully"})
}

// EditExercise handles PUT /admin/exercises/:exerciseId
func (s *Server) EditExercise(c *fiber.Ctx) error {
	var req exerciseRequest
	if err := c.BodyParser(&req); err != nil || !req.complete() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing required fields"))
	}

	bodyPart, err := s.catalogRepo.GetBodyPartByName(c.Context(), req.BodyPart)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if bodyPart == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Body part not found"))
	}

	id, ok := parseID(c.Params("exerciseId"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Exercise not found"))
	}
	exercise, err := s.catalogRepo.GetExerciseByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if exercise == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Exercise not found"))
	}

	exercise.Name = req.Name
	exercise.YoutubeLink = req.YoutubeLink
	exercise.BodyPartID = bodyPart.ID
	exercise.Description = req.Description
	if err := s.catalogRepo.UpdateExercise(c.Context(), exercise); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"message": "Exercise updated successfully"})
}

// DeleteExercise handles DELETE /admin/exercises/:exerciseId
func (s *Server) DeleteExercise(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("exerciseId"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Exercise not found"))
	}

	deleted, err := s.catalogRepo.DeleteExercise(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if deleted == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Exercise not found"))
	}
	return c.JSON(fiber.Map{"message": "Exercise deleted successfully"})
}

// GetAllUsers handles GET /admin/users. Password hashes never serialize.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	result := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		result = append(result, fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"age":      user.Age,
			"hasRole":  user.Role,
		})
	}
	return c.JSON(result)
}

// GetLoggedInUsers handles GET /admin/loggedusers. Joins the session
// registry against the user table; usernames with live sessions but no
// surviving user record are skipped.
func (s *Server) GetLoggedInUsers(c *fiber.Ctx) error {
	usernames, err := s.sessions.ActiveUsernames(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	loggedIn := make([]fiber.Map, 0, len(usernames))
	for _, username := range usernames {
		user, err := s.userRepo.GetByUsername(c.Context(), username)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if user == nil {
			continue
		}
		loggedIn = append(loggedIn, fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"hasRole":  user.Role,
		})
	}
	return c.JSON(loggedIn)
}

// UpdateUser handles PUT /admin/users/:userId
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	var req struct {
		NewUsername string `json:"new_username"`
		Email       string `json:"email"`
		Age         *int   `json:"age"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid input data"))
	}
	if req.NewUsername == "" && req.Email == "" && req.Age == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid input data"))
	}

	id, ok := parseID(c.Params("userId"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}
	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}

	if req.NewUsername != "" {
		user.Username = req.NewUsername
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Age != nil {
		user.Age = *req.Age
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// DeleteUser handles DELETE /admin/users/:userId
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("userId"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}

	deleted, err := s.userRepo.Delete(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if deleted == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User not found"))
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
