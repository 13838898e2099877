package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fittrack/internal/models"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Goal{},
		&models.GoalEntry{},
		&models.BodyPart{},
		&models.Exercise{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func TestCatalogIsIdempotent(t *testing.T) {
	s := NewSeeder(setupSeedTestDB(t))

	require.NoError(t, s.Catalog())
	var firstCount int64
	require.NoError(t, s.db.Model(&models.Exercise{}).Count(&firstCount).Error)
	require.Positive(t, firstCount)

	// A second run must not duplicate the library.
	require.NoError(t, s.Catalog())
	var secondCount int64
	require.NoError(t, s.db.Model(&models.Exercise{}).Count(&secondCount).Error)
	assert.Equal(t, firstCount, secondCount)
}

func TestEnsureAdmin(t *testing.T) {
	s := NewSeeder(setupSeedTestDB(t))

	admin, err := s.EnsureAdmin("root", "sup3rsecret!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	again, err := s.EnsureAdmin("root", "sup3rsecret!")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}

func TestSeedUsersAndGoals(t *testing.T) {
	s := NewSeeder(setupSeedTestDB(t))

	users, err := s.SeedUsers(5)
	require.NoError(t, err)
	require.Len(t, users, 5)
	for _, user := range users {
		assert.GreaterOrEqual(t, user.Age, 18)
	}

	require.NoError(t, s.SeedGoals(users))

	// Every seeded goal's total must match the sum of its entries.
	var goals []models.Goal
	require.NoError(t, s.db.Preload("Entries").Find(&goals).Error)
	require.Len(t, goals, 10)
	for _, goal := range goals {
		var sum float64
		for _, entry := range goal.Entries {
			sum += entry.Value
		}
		assert.Equal(t, sum, goal.Total, "goal %d total drifted from its entries", goal.ID)
	}
}

func TestRun(t *testing.T) {
	s := NewSeeder(setupSeedTestDB(t))

	require.NoError(t, s.Run(Options{
		NumUsers:    3,
		ShouldClean: true,
		AdminUser:   "root",
		AdminPass:   "sup3rsecret!",
	}))

	var userCount, goalCount, exerciseCount int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, s.db.Model(&models.Goal{}).Count(&goalCount).Error)
	require.NoError(t, s.db.Model(&models.Exercise{}).Count(&exerciseCount).Error)
	assert.Equal(t, int64(4), userCount, "3 demo users plus the admin")
	assert.Equal(t, int64(6), goalCount, "one calorie and one progress goal per demo user")
	assert.Positive(t, exerciseCount)

	var admin models.User
	require.NoError(t, s.db.Where("username = ?", "root").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestClearAll(t *testing.T) {
	s := NewSeeder(setupSeedTestDB(t))

	users, err := s.SeedUsers(2)
	require.NoError(t, err)
	require.NoError(t, s.SeedGoals(users))
	require.NoError(t, s.Catalog())

	require.NoError(t, s.ClearAll())

	var userCount, goalCount int64
	require.NoError(t, s.db.Unscoped().Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, s.db.Model(&models.Goal{}).Count(&goalCount).Error)
	assert.Zero(t, userCount)
	assert.Zero(t, goalCount)
}
