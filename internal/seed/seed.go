// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"fittrack/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password assigned to every generated demo user. It
// satisfies the registration policy (length, digit, special character).
const DemoPassword = "password123!"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	ShouldClean bool
	AdminUser   string
	AdminPass   string
}

// catalog is the built-in body-part and exercise library loaded by Catalog.
var catalog = map[string][]models.Exercise{
	"chest": {
		{Name: "bench press", YoutubeLink: "https://www.youtube.com/watch?v=rT7DgCr-3pg", Description: "Barbell press from a flat bench"},
		{Name: "push up", YoutubeLink: "https://www.youtube.com/watch?v=IODxDxX7oi4", Description: "Bodyweight press from the floor"},
	},
	"back": {
		{Name: "pull up", YoutubeLink: "https://www.youtube.com/watch?v=eGo4IYlbE5g", Description: "Bodyweight vertical pull"},
		{Name: "deadlift", YoutubeLink: "https://www.youtube.com/watch?v=op9kVnSso6Q", Description: "Barbell hip hinge from the floor"},
	},
	"legs": {
		{Name: "squat", YoutubeLink: "https://www.youtube.com/watch?v=ultWZbUMPL8", Description: "Barbell back squat"},
		{Name: "lunge", YoutubeLink: "https://www.youtube.com/watch?v=QOVaHwm-Q6U", Description: "Alternating bodyweight lunge"},
	},
	"shoulders": {
		{Name: "overhead press", YoutubeLink: "https://www.youtube.com/watch?v=2yjwXTZQDDI", Description: "Standing barbell press"},
	},
	"arms": {
		{Name: "bicep curl", YoutubeLink: "https://www.youtube.com/watch?v=ykJmrZ5v0Oo", Description: "Dumbbell curl"},
		{Name: "tricep dip", YoutubeLink: "https://www.youtube.com/watch?v=0326dy_-CzM", Description: "Parallel bar dip"},
	},
}

// Seeder populates the database with demo data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// Run executes the full seeding pipeline described by opts: optional wipe,
// exercise catalog, admin account, demo users and their goals.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}
	if err := s.Catalog(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if _, err := s.EnsureAdmin(opts.AdminUser, opts.AdminPass); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if err := s.SeedGoals(users); err != nil {
		return fmt.Errorf("goals: %w", err)
	}
	return nil
}

// ClearAll removes all seeded rows. Entry tables go first so foreign keys
// never dangle mid-wipe.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.GoalEntry{},
		&models.Goal{},
		&models.Exercise{},
		&models.BodyPart{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// Catalog loads the built-in body-part and exercise library. Safe to run
// repeatedly.
func (s *Seeder) Catalog() error {
	for name, exercises := range catalog {
		bodyPart := models.BodyPart{Name: name}
		if err := s.db.Where("name = ?", name).FirstOrCreate(&bodyPart).Error; err != nil {
			return fmt.Errorf("body part %q: %w", name, err)
		}
		for _, exercise := range exercises {
			exercise.BodyPartID = bodyPart.ID
			if err := s.db.Where("name = ? AND body_part_id = ?", exercise.Name, bodyPart.ID).
				FirstOrCreate(&exercise).Error; err != nil {
				return fmt.Errorf("exercise %q: %w", exercise.Name, err)
			}
		}
	}
	return nil
}

// EnsureAdmin creates the admin account if it does not exist yet.
func (s *Seeder) EnsureAdmin(username, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := models.User{
		Username: username,
		Email:    username + "@fittrack.local",
		Password: string(hashed),
		Age:      35,
		Role:     models.RoleAdmin,
	}
	if err := s.db.Where("username = ?", username).FirstOrCreate(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// SeedUsers generates n demo users, all sharing DemoPassword.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password: string(hashed),
			Age:      gofakeit.Number(18, 70),
			Role:     models.RoleDefault,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("creating user %q: %w", user.Username, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedGoals gives each user one current calorie goal with a few logged days
// and one long-running progress goal. Totals are written consistent with
// the generated entries.
func (s *Seeder) SeedGoals(users []models.User) error {
	now := time.Now().UTC()
	weekStart := now.Format(models.DateLayout)
	weekEnd := now.AddDate(0, 0, 6).Format(models.DateLayout)

	for _, user := range users {
		calorieGoal := models.Goal{
			Username:  user.Username,
			Kind:      models.GoalKindCalories,
			StartDate: weekStart,
			EndDate:   weekEnd,
			Target:    float64(gofakeit.Number(1500, 4000)),
			Activity:  gofakeit.RandomString([]string{"running", "cycling", "swimming", "rowing"}),
		}

		days := rand.Intn(3) + 1
		var total float64
		for d := 0; d < days; d++ {
			value := float64(gofakeit.Number(150, 700))
			calorieGoal.Entries = append(calorieGoal.Entries, models.GoalEntry{
				Date:  now.AddDate(0, 0, d).Format(models.DateLayout),
				Value: value,
			})
			total += value
		}
		calorieGoal.Total = total

		if err := s.db.Create(&calorieGoal).Error; err != nil {
			return fmt.Errorf("calorie goal for %q: %w", user.Username, err)
		}

		progressGoal := models.Goal{
			Username:  user.Username,
			Kind:      models.GoalKindProgress,
			StartDate: now.AddDate(0, -1, 0).Format(models.DateLayout),
			EndDate:   now.AddDate(0, 2, 0).Format(models.DateLayout),
			Target:    float64(gofakeit.Number(5, 20)),
			Activity:  gofakeit.RandomString([]string{"weight loss", "muscle gain", "flexibility"}),
		}
		value := float64(gofakeit.Number(1, 10))
		progressGoal.Entries = []models.GoalEntry{{
			Date:  now.AddDate(0, 0, -7).Format(models.DateLayout),
			Value: value,
		}}
		progressGoal.Total = value

		if err := s.db.Create(&progressGoal).Error; err != nil {
			return fmt.Errorf("progress goal for %q: %w", user.Username, err)
		}
	}
	log.Printf("Seeded goals for %d users", len(users))
	return nil
}
