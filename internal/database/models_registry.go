package database

import "pollhive/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.PollVoter{},
		&models.Comment{},
	}
}
