package database

import "innercircle/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Image{},
		&models.Video{},
		&models.User{},
		&models.Post{},
		&models.Circle{},
		&models.CircleMember{},
		&models.PostShare{},
		&models.Comment{},
		&models.PostImage{},
		&models.PostVideo{},
	}
}
