package server

import (
	"errors"

	"fittrack/internal/models"
	"fittrack/internal/tracker"

	"github.com/gofiber/fiber/v2"
)

// goalRequest is the shared create-goal payload for both trackers.
type goalRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Goal      float64 `json:"goal"`
	Activity  string  `json:"activity"`
}

// respondTracker maps engine errors onto the wire: validation failures are
// client errors, everything else is a 500.
func respondTracker(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
		return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

func (s *Server) createGoal(c *fiber.Ctx, svc *tracker.Service) error {
	var req goalRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("All fields are required"))
	}
	if req.StartDate == "" || req.EndDate == "" || req.Goal == 0 || req.Activity == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("All fields are required"))
	}

	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	if err := svc.CreateGoal(c.Context(), username, req.StartDate, req.EndDate, req.Goal, req.Activity); err != nil {
		return respondTracker(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Goal set successfully"})
}

func (s *Server) logValue(c *fiber.Ctx, svc *tracker.Service, date string, value float64, successMsg, achievedSuffix string) error {
	if date == "" || value == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("All fields are required"))
	}

	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	achieved, err := svc.LogValue(c.Context(), username, date, value)
	if err != nil {
		return respondTracker(c, err)
	}

	message := successMsg
	if achieved {
		message += achievedSuffix
	}
	return c.JSON(fiber.Map{"message": message})
}

func (s *Server) valueForDate(c *fiber.Ctx, svc *tracker.Service, valueKey string) error {
	date := c.Query("date")
	if date == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Date is required"))
	}

	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	isoDate, value, err := svc.ValueForDate(c.Context(), username, date)
	if err != nil {
		return respondTracker(c, err)
	}
	return c.JSON(fiber.Map{"date": isoDate, valueKey: value})
}

func (s *Server) deleteValue(c *fiber.Ctx, svc *tracker.Service, successMsg string) error {
	date := c.Query("date")
	if date == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Date is required"))
	}

	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	if err := svc.DeleteValue(c.Context(), username, date); err != nil {
		return respondTracker(c, err)
	}
	return c.JSON(fiber.Map{"message": successMsg})
}

// CreateCalorieGoal handles POST /calories/goal
func (s *Server) CreateCalorieGoal(c *fiber.Ctx) error {
	return s.createGoal(c, s.calorieTracker)
}

// LogCalories handles POST /calories
func (s *Server) LogCalories(c *fiber.Ctx) error {
	var req struct {
		Date     string  `json:"date"`
		Calories float64 `json:"calories"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("All fields are required"))
	}
	return s.logValue(c, s.calorieTracker, req.Date, req.Calories,
		"Calories logged successfully", " & The goal is achieved, Congratulations!")
}

// ListCalorieGoals handles GET /calories/progress
func (s *Server) ListCalorieGoals(c *fiber.Ctx) error {
	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	goals, err := s.calorieTracker.ListGoals(c.Context(), username)
	if err != nil {
		return respondTracker(c, err)
	}
	if len(goals) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No active goals found"))
	}

	result := make([]fiber.Map, 0, len(goals))
	for _, goal := range goals {
		result = append(result, fiber.Map{
			"goal":            goal.Target,
			"calories_burned": goal.Total,
			"activity":        goal.Activity,
			"start_date":      goal.StartDate,
			"end_date":        goal.EndDate,
		})
	}
	return c.JSON(result)
}

// GetCaloriesByDate handles GET /calories?date=
func (s *Server) GetCaloriesByDate(c *fiber.Ctx) error {
	return s.valueForDate(c, s.calorieTracker, "calories")
}

// DeleteCaloriesByDate handles DELETE /calories?date=
func (s *Server) DeleteCaloriesByDate(c *fiber.Ctx) error {
	return s.deleteValue(c, s.calorieTracker, "Calories log deleted successfully")
}

// DeleteCalorieGoal handles DELETE /calories/goals?start_date=&end_date=
func (s *Server) DeleteCalorieGoal(c *fiber.Ctx) error {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Start date and End date are required"))
	}

	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	if err := s.calorieTracker.DeleteGoalByPeriod(c.Context(), username, startDate, endDate); err != nil {
		return respondTracker(c, err)
	}
	return c.JSON(fiber.Map{"message": "Goal deleted successfully"})
}

// CreateProgressGoal handles POST /progress/goal
func (s *Server) CreateProgressGoal(c *fiber.Ctx) error {
	return s.createGoal(c, s.progressTracker)
}

// LogProgress handles POST /progress
func (s *Server) LogProgress(c *fiber.Ctx) error {
	var req struct {
		Date     string  `json:"date"`
		Progress float64 `json:"progress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("All fields are required"))
	}
	return s.logValue(c, s.progressTracker, req.Date, req.Progress,
		"Progress logged successfully", " and goal achieved!")
}

// ListProgressGoals handles GET /progress/all
func (s *Server) ListProgressGoals(c *fiber.Ctx) error {
	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	goals, err := s.progressTracker.ListGoals(c.Context(), username)
	if err != nil {
		return respondTracker(c, err)
	}
	if len(goals) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No active goal"))
	}

	result := make([]fiber.Map, 0, len(goals))
	for _, goal := range goals {
		result = append(result, fiber.Map{
			"goal_id":    goal.ID,
			"goal":       goal.Target,
			"activity":   goal.Activity,
			"progress":   goal.Total,
			"start_date": goal.StartDate,
			"end_date":   goal.EndDate,
		})
	}
	return c.JSON(result)
}

// GetProgressByDate handles GET /progress?date=
func (s *Server) GetProgressByDate(c *fiber.Ctx) error {
	return s.valueForDate(c, s.progressTracker, "progress")
}

// DeleteProgressByDate handles DELETE /progress?date=
func (s *Server) DeleteProgressByDate(c *fiber.Ctx) error {
	return s.deleteValue(c, s.progressTracker, "Progress deleted successfully")
}

// DeleteProgressGoalByID handles DELETE /progress/goal/:goalId
func (s *Server) DeleteProgressGoalByID(c *fiber.Ctx) error {
	username, err := s.requireUser(c)
	if err != nil {
		return respondTracker(c, err)
	}

	if err := s.progressTracker.DeleteGoalByID(c.Context(), username, c.Params("goalId")); err != nil {
		return respondTracker(c, err)
	}
	return c.JSON(fiber.Map{"message": "Goal deleted successfully"})
}
