// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"pollhive/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPolls    int
	ShouldClean bool
}

// questionTemplates maps each poll category to question stems the factory
// fills in with faked subjects.
var questionTemplates = map[string][]string{
	"Technology":       {"What's the best %s for beginners?", "Which %s do you use daily?"},
	"Entertainment":    {"What's the most rewatchable %s?", "Which %s deserves a sequel?"},
	"Science":          {"Which %s discovery excites you most?", "What %s topic should schools teach more?"},
	"Sports":           {"Who's the greatest %s of all time?", "Which %s is most fun to watch?"},
	"Food":             {"What's the best %s topping?", "Which %s is underrated?"},
	"Travel & Leisure": {"What's your dream %s destination?", "Best %s for a long weekend?"},
	"Food & Drink":     {"Coffee or %s in the morning?", "Which %s pairs best with pizza?"},
	"Media":            {"Which %s do you trust most?", "Best %s for long-form content?"},
	"Lifestyle":        {"What %s habit changed your life?", "Morning or evening %s?"},
	"Education":        {"What's the most useful %s to learn?", "Which %s should be mandatory?"},
	"Health":           {"What's your go-to %s routine?", "Which %s tip actually works?"},
	"Politics":         {"Should %s be a local or national issue?", "Which %s reform matters most?"},
	"Other":            {"What's your favorite %s?", "Which %s would you pick?"},
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d polls...", opts.NumUsers, opts.NumPolls)

	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	polls, err := createPolls(db, users, opts.NumPolls)
	if err != nil {
		return fmt.Errorf("failed to create polls: %w", err)
	}
	log.Printf("✓ %d polls created", len(polls))

	votes, err := castVotes(db, users, polls)
	if err != nil {
		return fmt.Errorf("failed to cast votes: %w", err)
	}
	log.Printf("✓ %d votes cast", votes)

	comments, err := createComments(db, users, polls)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", comments)

	log.Println("✨ Seeding complete")
	return nil
}

// clearData removes seeded rows child-first so FK constraints hold.
func clearData(db *gorm.DB) error {
	tables := []string{"comments", "poll_voters", "poll_votes", "poll_options", "polls", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!abc"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Password: string(hashed),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPolls(db *gorm.DB, users []*models.User, count int) ([]*models.Poll, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own polls")
	}

	polls := make([]*models.Poll, 0, count)
	for i := 0; i < count; i++ {
		category := models.PollCategories[rand.Intn(len(models.PollCategories))]
		templates := questionTemplates[category]
		question := fmt.Sprintf(templates[rand.Intn(len(templates))], gofakeit.NounConcrete())

		numOptions := 2 + rand.Intn(4)
		poll := &models.Poll{
			Question:  question,
			Category:  category,
			UserID:    users[rand.Intn(len(users))].ID,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		for j := 0; j < numOptions; j++ {
			poll.Options = append(poll.Options, models.PollOption{
				Text:     fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), gofakeit.NounConcrete()),
				Position: j,
			})
		}
		if err := db.Create(poll).Error; err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

// castVotes has a random subset of users vote on each poll, keeping the
// ledger, the voted-by set and the per-option counters consistent.
func castVotes(db *gorm.DB, users []*models.User, polls []*models.Poll) (int, error) {
	total := 0
	for _, poll := range polls {
		if len(poll.Options) == 0 {
			continue
		}
		for _, user := range users {
			if rand.Intn(100) >= 40 {
				continue
			}
			option := &poll.Options[rand.Intn(len(poll.Options))]
			err := db.Transaction(func(tx *gorm.DB) error {
				vote := &models.PollVote{
					PollID:     poll.ID,
					UserID:     user.ID,
					OptionID:   option.ID,
					OptionText: option.Text,
				}
				if err := tx.Create(vote).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.PollOption{}).
					Where("id = ?", option.ID).
					UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error; err != nil {
					return err
				}
				return tx.Create(&models.PollVoter{PollID: poll.ID, UserID: user.ID}).Error
			})
			if err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func createComments(db *gorm.DB, users []*models.User, polls []*models.Poll) (int, error) {
	total := 0
	for _, poll := range polls {
		numComments := rand.Intn(6)
		for i := 0; i < numComments; i++ {
			comment := &models.Comment{
				Content: gofakeit.Sentence(8 + rand.Intn(10)),
				PollID:  poll.ID,
				UserID:  users[rand.Intn(len(users))].ID,
			}
			if err := db.Create(comment).Error; err != nil {
				return total, err
			}
			total++

			numReplies := rand.Intn(3)
			for j := 0; j < numReplies; j++ {
				reply := &models.Comment{
					Content:         gofakeit.Sentence(5 + rand.Intn(8)),
					PollID:          poll.ID,
					UserID:          users[rand.Intn(len(users))].ID,
					ParentCommentID: &comment.ID,
				}
				err := db.Transaction(func(tx *gorm.DB) error {
					if err := tx.Create(reply).Error; err != nil {
						return err
					}
					return tx.Model(&models.Comment{}).
						Where("id = ?", comment.ID).
						UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
				})
				if err != nil {
					return total, err
				}
				total++
			}
		}
	}
	return total, nil
}
