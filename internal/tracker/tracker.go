// Package tracker implements the period-goal engine shared by the calorie
// and progress trackers. A Variant carries the handful of behaviors that
// differ between the two flavors; everything else is common.
package tracker

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fittrack/internal/models"
	"fittrack/internal/repository"
)

// Variant parameterizes the engine for one tracker flavor: the date layout
// accepted on the wire, the period-width rules, and user-facing wording.
type Variant struct {
	Kind            models.GoalKind
	DateLayout      string
	DateFormatError string
	// PeriodDays is the required span in days between start and end dates.
	// Zero disables the fixed-width check.
	PeriodDays      int
	RejectPastStart bool
	NoEntryMessage  string
}

// Calories keeps the legacy dd-mm-yyyy wire format, rejects goals starting
// in the past, and pins the period to exactly one week.
var Calories = Variant{
	Kind:            models.GoalKindCalories,
	DateLayout:      "02-01-2006",
	DateFormatError: "Invalid date format. Use dd-mm-yyyy.",
	PeriodDays:      6,
	RejectPastStart: true,
	NoEntryMessage:  "No calories logged for this date",
}

// Progress accepts ISO dates and places no constraints on period placement
// or width beyond end falling after start.
var Progress = Variant{
	Kind:            models.GoalKindProgress,
	DateLayout:      models.DateLayout,
	DateFormatError: "Invalid date format. Use yyyy-mm-dd.",
	NoEntryMessage:  "No progress logged for this date",
}

// Service runs one tracker flavor on top of the shared goal store.
type Service struct {
	goals   repository.GoalRepository
	variant Variant
	now     func() time.Time
}

// NewService returns a tracker service for the given variant.
func NewService(goals repository.GoalRepository, variant Variant) *Service {
	return &Service{goals: goals, variant: variant, now: time.Now}
}

func (s *Service) parseDate(value string) (time.Time, string, error) {
	t, err := time.Parse(s.variant.DateLayout, value)
	if err != nil {
		return time.Time{}, "", models.NewValidationError(s.variant.DateFormatError)
	}
	return t, t.Format(models.DateLayout), nil
}

// CreateGoal validates the period and stores a new goal. The overlap
// pre-check gives the friendly error; the unique index on the start date
// catches the concurrent-create race the pre-check cannot see.
func (s *Service) CreateGoal(ctx context.Context, username, start, end string, target float64, activity string) error {
	startTime, startISO, err := s.parseDate(start)
	if err != nil {
		return err
	}
	endTime, endISO, err := s.parseDate(end)
	if err != nil {
		return err
	}

	if s.variant.RejectPastStart {
		today := s.now().UTC().Format(models.DateLayout)
		if startISO < today {
			return models.NewValidationError("Start date cannot be in the past")
		}
	}

	if endISO <= startISO {
		return models.NewValidationError("End date must be after the start date")
	}

	if s.variant.PeriodDays > 0 {
		if int(endTime.Sub(startTime).Hours()/24) != s.variant.PeriodDays {
			return models.NewValidationError("The goal period must be exactly 7 days")
		}
	}

	existing, err := s.goals.FindOverlapping(ctx, username, s.variant.Kind, startISO, endISO)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewValidationError("A goal already exists for the specified period")
	}

	goal := &models.Goal{
		Username:  username,
		Kind:      s.variant.Kind,
		StartDate: startISO,
		EndDate:   endISO,
		Target:    target,
		Activity:  activity,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrDuplicatePeriod) {
			return models.NewValidationError("A goal already exists for the specified period")
		}
		return err
	}
	return nil
}

// LogValue records a value for the date under the active goal, replacing
// any value previously logged for that date. The returned flag reports
// whether the goal's running total has reached its target.
func (s *Service) LogValue(ctx context.Context, username, date string, value float64) (bool, error) {
	_, dateISO, err := s.parseDate(date)
	if err != nil {
		return false, err
	}

	goal, err := s.goals.FindActive(ctx, username, s.variant.Kind, dateISO)
	if err != nil {
		return false, err
	}
	if goal == nil {
		return false, models.NewValidationError("No active goal for this period")
	}

	total, err := s.goals.UpsertEntry(ctx, goal.ID, dateISO, value)
	if err != nil {
		return false, err
	}
	return total >= goal.Target, nil
}

// ValueForDate returns the logged value for the date, keyed by the active
// goal's period. The date comes back in ISO form regardless of the wire
// layout it was given in.
func (s *Service) ValueForDate(ctx context.Context, username, date string) (string, float64, error) {
	_, dateISO, err := s.parseDate(date)
	if err != nil {
		return "", 0, err
	}

	goal, err := s.goals.FindActive(ctx, username, s.variant.Kind, dateISO)
	if err != nil {
		return "", 0, err
	}
	if goal == nil {
		return "", 0, models.NewValidationError("No active goal for this period")
	}

	entry, err := s.goals.GetEntry(ctx, goal.ID, dateISO)
	if err != nil {
		return "", 0, err
	}
	if entry == nil {
		return "", 0, models.NewValidationError(s.variant.NoEntryMessage)
	}
	return dateISO, entry.Value, nil
}

// DeleteValue removes the entry for the date and recomputes the goal's
// total from the surviving entries.
func (s *Service) DeleteValue(ctx context.Context, username, date string) error {
	_, dateISO, err := s.parseDate(date)
	if err != nil {
		return err
	}

	goal, err := s.goals.FindActive(ctx, username, s.variant.Kind, dateISO)
	if err != nil {
		return err
	}
	if goal == nil {
		return models.NewValidationError("No active goal for this period")
	}

	removed, err := s.goals.RemoveEntry(ctx, goal.ID, dateISO)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError(s.variant.NoEntryMessage)
	}
	return nil
}

// ListGoals returns every goal of this flavor for the user, ordered by
// start date. Callers decide how to present an empty result.
func (s *Service) ListGoals(ctx context.Context, username string) ([]models.Goal, error) {
	return s.goals.FindAll(ctx, username, s.variant.Kind)
}

// DeleteGoalByPeriod removes the goal matching the exact start and end
// dates, along with its entries.
func (s *Service) DeleteGoalByPeriod(ctx context.Context, username, start, end string) error {
	_, startISO, err := s.parseDate(start)
	if err != nil {
		return err
	}
	_, endISO, err := s.parseDate(end)
	if err != nil {
		return err
	}

	goal, err := s.goals.FindByPeriod(ctx, username, s.variant.Kind, startISO, endISO)
	if err != nil {
		return err
	}
	if goal == nil {
		return models.NewValidationError("No goal found for this period")
	}

	_, err = s.goals.Delete(ctx, goal.ID)
	return err
}

// DeleteGoalByID removes the goal with the given identifier if the user
// owns it.
func (s *Service) DeleteGoalByID(ctx context.Context, username, id string) error {
	goalID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return models.NewValidationError("Invalid Goal ID")
	}

	deleted, err := s.goals.DeleteOwned(ctx, username, s.variant.Kind, uint(goalID))
	if err != nil {
		return err
	}
	if deleted == 0 {
		return models.NewValidationError("Goal not found")
	}
	return nil
}
