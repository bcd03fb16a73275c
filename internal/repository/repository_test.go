package repository

import (
	"testing"

	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
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
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func int64Ptr(v int64) *int64 { return &v }
