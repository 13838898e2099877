package repository

import (
	"context"
	"errors"

	"fittrack/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicatePeriod reports that another goal with the same owner and start
// date won the insert race.
var ErrDuplicatePeriod = errors.New("goal period already exists")

// GoalRepository defines persistence operations for period goals and their
// per-date log entries.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	// FindOverlapping returns a goal of the same kind whose inclusive
	// [start_date, end_date] interval intersects the given one, or nil.
	FindOverlapping(ctx context.Context, username string, kind models.GoalKind, start, end string) (*models.Goal, error)
	// FindActive returns the goal whose period contains the given ISO date,
	// or nil.
	FindActive(ctx context.Context, username string, kind models.GoalKind, date string) (*models.Goal, error)
	FindByPeriod(ctx context.Context, username string, kind models.GoalKind, start, end string) (*models.Goal, error)
	FindAll(ctx context.Context, username string, kind models.GoalKind) ([]models.Goal, error)
	Delete(ctx context.Context, goalID uint) (int64, error)
	DeleteOwned(ctx context.Context, username string, kind models.GoalKind, goalID uint) (int64, error)

	GetEntry(ctx context.Context, goalID uint, date string) (*models.GoalEntry, error)
	// UpsertEntry inserts or replaces the entry for the date and maintains
	// the goal's running total in the same transaction. Returns the new total.
	UpsertEntry(ctx context.Context, goalID uint, date string, value float64) (float64, error)
	// RemoveEntry deletes the entry for the date and recomputes the total
	// from the remaining entries. Returns false if no entry existed.
	RemoveEntry(ctx context.Context, goalID uint, date string) (bool, error)
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository returns a new GoalRepository implementation.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePeriod
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *goalRepository) FindOverlapping(ctx context.Context, username string, kind models.GoalKind, start, end string) (*models.Goal, error) {
	var goal models.Goal
	// Inclusive-bound interval intersection; covers containment in both
	// directions: new.start <= existing.end AND new.end >= existing.start.
	err := r.db.WithContext(ctx).
		Where("username = ? AND kind = ? AND start_date <= ? AND end_date >= ?", username, kind, end, start).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &goal, nil
}

func (r *goalRepository) FindActive(ctx context.Context, username string, kind models.GoalKind, date string) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.WithContext(ctx).
		Where("username = ? AND kind = ? AND start_date <= ? AND end_date >= ?", username, kind, date, date).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &goal, nil
}

func (r *goalRepository) FindByPeriod(ctx context.Context, username string, kind models.GoalKind, start, end string) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.WithContext(ctx).
		Where("username = ? AND kind = ? AND start_date = ? AND end_date = ?", username, kind, start, end).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &goal, nil
}

func (r *goalRepository) FindAll(ctx context.Context, username string, kind models.GoalKind) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.WithContext(ctx).
		Where("username = ? AND kind = ?", username, kind).
		Order("start_date").
		Find(&goals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return goals, nil
}

func (r *goalRepository) Delete(ctx context.Context, goalID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goalID).Delete(&models.GoalEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Goal{}, goalID)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return deleted, nil
}

func (r *goalRepository) DeleteOwned(ctx context.Context, username string, kind models.GoalKind, goalID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var goal models.Goal
		err := tx.Where("id = ? AND username = ? AND kind = ?", goalID, username, kind).First(&goal).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.GoalEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Goal{}, goal.ID)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return deleted, nil
}

func (r *goalRepository) GetEntry(ctx context.Context, goalID uint, date string) (*models.GoalEntry, error) {
	var entry models.GoalEntry
	err := r.db.WithContext(ctx).
		Where("goal_id = ? AND date = ?", goalID, date).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

func (r *goalRepository) UpsertEntry(ctx context.Context, goalID uint, date string, value float64) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var goal models.Goal
		if err := tx.First(&goal, goalID).Error; err != nil {
			return err
		}

		var entry models.GoalEntry
		err := tx.Where("goal_id = ? AND date = ?", goalID, date).First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.GoalEntry{GoalID: goalID, Date: date, Value: value}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			total = goal.Total + value
		case err != nil:
			return err
		default:
			// Replace the value for the date and adjust the total by the delta.
			total = goal.Total - entry.Value + value
			entry.Value = value
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Goal{}).Where("id = ?", goalID).Update("total", total).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *goalRepository) RemoveEntry(ctx context.Context, goalID uint, date string) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("goal_id = ? AND date = ?", goalID, date).Delete(&models.GoalEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		// Recompute from the surviving entries rather than subtracting, so
		// the total can never drift from the log.
		var total float64
		if err := tx.Model(&models.GoalEntry{}).
			Where("goal_id = ?", goalID).
			Select("COALESCE(SUM(value), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		return tx.Model(&models.Goal{}).Where("id = ?", goalID).Update("total", total).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return removed, nil
}
