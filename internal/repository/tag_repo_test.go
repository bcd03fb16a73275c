package repository

import (
	"testing"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Go":               "go",
		"Web Development":  "web-development",
		"C++ & Rust":       "c-rust",
		"  spaced  out  ":  "spaced-out",
		"already-slugged":  "already-slugged",
		"Trailing Dots...": "trailing-dots",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestTagRepository_ListOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)

	repo.Create(&domain.Tag{Title: "zebra", Alias: "zebra", Weight: 10})
	repo.Create(&domain.Tag{Title: "apple", Alias: "apple", Weight: 10})
	repo.Create(&domain.Tag{Title: "pinned", Alias: "pinned", Weight: 50})

	tags, err := repo.List()
	assert.NoError(t, err)
	assert.Len(t, tags, 3)
	assert.Equal(t, "pinned", tags[0].Alias)
	// equal weight falls back to title order
	assert.Equal(t, "apple", tags[1].Alias)
	assert.Equal(t, "zebra", tags[2].Alias)
}

func TestTagRepository_FindOrCreateByTitles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)

	repo.Create(&domain.Tag{Title: "Go", Alias: "go", Weight: 5})

	tags, err := repo.FindOrCreateByTitles([]string{"Go", "Web Development", "  ", "go"})
	assert.NoError(t, err)
	assert.Len(t, tags, 2)

	// existing row is reused, weight intact
	assert.Equal(t, "go", tags[0].Alias)
	assert.Equal(t, 5, tags[0].Weight)
	assert.Equal(t, "web-development", tags[1].Alias)

	var count int64
	db.Model(&domain.Tag{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestTagRepository_FindByAliasNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)

	_, err := repo.FindByAlias("missing")
	assert.ErrorIs(t, err, common.ErrTagNotFound)
}
