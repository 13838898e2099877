package server

import (
	"time"

	"fittrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) today() string {
	return time.Now().UTC().Format(models.DateLayout)
}

// currentGoal picks the goal whose inclusive period covers the given date.
func currentGoal(goals []models.Goal, isoDate string) *models.Goal {
	for i := range goals {
		if goals[i].Contains(isoDate) {
			return &goals[i]
		}
	}
	return nil
}

// DashboardCalories handles GET /dashboard/calories. Returns the running
// total of the calorie goal covering today.
func (s *Server) DashboardCalories(c *fiber.Ctx) error {
	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	goals, err := s.goalRepo.FindAll(c.Context(), username, models.GoalKindCalories)
	if err != nil {
		return respondTracker(c, err)
	}
	if len(goals) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No active goals found"))
	}

	current := currentGoal(goals, s.today())
	if current == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No goals set for this week ☹"))
	}

	return c.JSON(fiber.Map{"calories_burned": current.Total})
}

// DashboardProgress handles GET /dashboard/progress. Returns the summed
// progress of the goal covering today.
func (s *Server) DashboardProgress(c *fiber.Ctx) error {
	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	goals, err := s.goalRepo.FindAll(c.Context(), username, models.GoalKindProgress)
	if err != nil {
		return respondTracker(c, err)
	}
	if len(goals) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No goals this week"))
	}

	current := currentGoal(goals, s.today())
	if current == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No activity progress this week"))
	}

	return c.JSON(fiber.Map{"progress": current.Total})
}
