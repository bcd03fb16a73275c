package repository

import (
	"errors"
	"strings"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// TagRepository is the data access layer for tags
type TagRepository interface {
	WithTx(tx *gorm.DB) TagRepository

	// List returns tags ordered by weight DESC, title ASC
	List() ([]*domain.Tag, error)
	FindByID(id int64) (*domain.Tag, error)
	FindByAlias(alias string) (*domain.Tag, error)
	Create(tag *domain.Tag) error
	// FindOrCreateByTitles resolves tag titles to rows, creating missing
	// ones with a slugified alias
	FindOrCreateByTitles(titles []string) ([]domain.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) List() ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := r.db.Order("weight DESC, title").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) FindByID(id int64) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.db.First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByAlias(alias string) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.db.Where("alias = ?", alias).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Create(tag *domain.Tag) error {
	return r.db.Create(tag).Error
}

func (r *tagRepository) FindOrCreateByTitles(titles []string) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0, len(titles))
	seen := make(map[string]bool, len(titles))

	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		alias := Slugify(title)
		if seen[alias] {
			continue
		}
		seen[alias] = true

		var tag domain.Tag
		err := r.db.Where("alias = ?", alias).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = domain.Tag{Title: title, Alias: alias}
			err = r.db.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Slugify lowercases a title and collapses non-alphanumeric runs into
// single hyphens
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
