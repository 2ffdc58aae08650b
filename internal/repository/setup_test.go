package repository

import (
	"fmt"
	"testing"

	"pollhive/internal/database"
	"pollhive/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func seedPoll(t *testing.T, db *gorm.DB, userID uint, options ...string) *models.Poll {
	t.Helper()
	poll := &models.Poll{
		Question: "Which one?",
		Category: "Technology",
		UserID:   userID,
	}
	for i, text := range options {
		poll.Options = append(poll.Options, models.PollOption{Text: text, Position: i})
	}
	if err := db.Create(poll).Error; err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return poll
}
