package models

import "time"

// GoalKind distinguishes the two period-goal trackers that share the same
// storage shape and engine.
type GoalKind string

const (
	GoalKindCalories GoalKind = "calories"
	GoalKindProgress GoalKind = "progress"
)

// DateLayout is the canonical storage format for goal and entry dates.
// ISO calendar dates order lexicographically, so range filters on the
// string columns behave like date comparisons.
const DateLayout = "2006-01-02"

// Goal is a target value over a bounded date range for one tracked activity.
// The unique index on {username, kind, start_date} closes the race between
// two concurrent creates that both pass the overlap pre-check.
type Goal struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Username  string      `gorm:"index:idx_goal_owner_start,unique,priority:1;not null" json:"username"`
	Kind      GoalKind    `gorm:"index:idx_goal_owner_start,unique,priority:2;not null" json:"-"`
	StartDate string      `gorm:"index:idx_goal_owner_start,unique,priority:3;not null" json:"start_date"`
	EndDate   string      `gorm:"not null" json:"end_date"`
	Target    float64     `gorm:"not null" json:"goal"`
	Activity  string      `gorm:"not null" json:"activity"`
	Total     float64     `gorm:"not null;default:0" json:"total"`
	Entries   []GoalEntry `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// GoalEntry is a single date-keyed observation contributing to a goal's
// total. At most one entry may exist per date within a goal.
type GoalEntry struct {
	ID     uint    `gorm:"primaryKey" json:"-"`
	GoalID uint    `gorm:"index:idx_entry_goal_date,unique,priority:1;not null" json:"-"`
	Date   string  `gorm:"index:idx_entry_goal_date,unique,priority:2;not null" json:"date"`
	Value  float64 `gorm:"not null" json:"value"`
}

// Contains reports whether the goal's inclusive period covers the given
// ISO date.
func (g *Goal) Contains(isoDate string) bool {
	return g.StartDate <= isoDate && isoDate <= g.EndDate
}
