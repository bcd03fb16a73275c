package repository

import (
	"errors"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// PostRepository is the data access layer for posts
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository

	// List returns a feed page ordered by last_action DESC, id DESC
	List(filter *domain.PostFilter, page, limit int) ([]*domain.Post, int64, error)
	FindByID(id int64) (*domain.Post, error)
	Create(post *domain.Post) error
	Update(post *domain.Post) error
	ReplaceTags(post *domain.Post, tags []domain.Tag) error
	Delete(id int64) error
	IDsByUser(userID int64) ([]int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

func (r *postRepository) List(filter *domain.PostFilter, page, limit int) ([]*domain.Post, int64, error) {
	query := r.db.Model(&domain.Post{}).
		Joins("LEFT JOIN post_histories ON post_histories.post_id = posts.id")

	if filter != nil {
		if filter.IDGte > 0 {
			query = query.Where("posts.id >= ?", filter.IDGte)
		}
		if filter.Body != "" {
			query = query.Where("posts.body LIKE ?", "%"+filter.Body+"%")
		}
		if filter.UserID > 0 {
			query = query.Where("posts.user_id = ?", filter.UserID)
		}
		if filter.TagAlias != "" {
			query = query.
				Joins("JOIN post_tags ON post_tags.post_id = posts.id").
				Joins("JOIN tags ON tags.id = post_tags.tag_id").
				Where("tags.alias = ?", filter.TagAlias)
		}
	}

	var total int64
	if err := query.Distinct("posts.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*domain.Post
	err := query.
		Preload("Tags").
		Select("posts.*").
		Order("post_histories.last_action DESC, posts.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) FindByID(id int64) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Preload("Tags").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(post *domain.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) Update(post *domain.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepository) ReplaceTags(post *domain.Post, tags []domain.Tag) error {
	return r.db.Model(post).Association("Tags").Replace(tags)
}

func (r *postRepository) Delete(id int64) error {
	return r.db.Delete(&domain.Post{}, id).Error
}

func (r *postRepository) IDsByUser(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&domain.Post{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}
