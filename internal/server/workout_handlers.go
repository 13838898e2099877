package server

import (
	"fittrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetExercisesByBodyPart handles GET /workouts/exercises/:bodyPart
func (s *Server) GetExercisesByBodyPart(c *fiber.Ctx) error {
	bodyPart, err := s.catalogRepo.GetBodyPartByName(c.Context(), c.Params("bodyPart"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if bodyPart == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Body part not found"))
	}

	exercises, err := s.catalogRepo.ListExercisesByBodyPart(c.Context(), bodyPart.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(exercises)
}
