package repository

import (
	"errors"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// CommentRepository is the data access layer for comments
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository

	ListByPost(postID int64, page, limit int) ([]*domain.Comment, int64, error)
	FindByID(id int64) (*domain.Comment, error)
	Create(comment *domain.Comment) error
	Update(comment *domain.Comment) error
	Delete(id int64) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) ListByPost(postID int64, page, limit int) ([]*domain.Comment, int64, error) {
	var total int64
	if err := r.db.Model(&domain.Comment{}).
		Where("post_id = ?", postID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*domain.Comment
	err := r.db.Where("post_id = ?", postID).
		Order("created_at, id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) FindByID(id int64) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Create(comment *domain.Comment) error {
	return r.db.Create(comment).Error
}

func (r *commentRepository) Update(comment *domain.Comment) error {
	return r.db.Save(comment).Error
}

func (r *commentRepository) Delete(id int64) error {
	return r.db.Delete(&domain.Comment{}, id).Error
}
