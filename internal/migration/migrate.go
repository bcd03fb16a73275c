package migration

import (
	"gorm.io/gorm"

	"github.com/quillboard/quill-backend/internal/domain"
)

// Run executes AutoMigrate for every table and seeds default tags if
// the tags table is empty. Safe to run on every startup.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.UserProfile{},
		&domain.Tag{},
		&domain.Post{},
		&domain.Comment{},
		&domain.PostMark{},
		&domain.PostHistory{},
		&domain.PostVersion{},
		&domain.CommentVersion{},
		&domain.SocialAccount{},
		&domain.AuthToken{},
	); err != nil {
		return err
	}

	var count int64
	db.Model(&domain.Tag{}).Count(&count)
	if count == 0 {
		return seedTags(db)
	}

	return nil
}

func seedTags(db *gorm.DB) error {
	tags := []domain.Tag{
		{Title: "General", Alias: "general", Weight: 100},
		{Title: "Announcements", Alias: "announcements", Weight: 90},
		{Title: "Questions", Alias: "questions", Weight: 80},
	}
	return db.Create(&tags).Error
}
