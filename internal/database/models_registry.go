package database

import "conduit/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Article{},
		&models.Tag{},
		&models.Favorite{},
		&models.Follow{},
	}
}
