package repository

import (
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// VersionRepository stores immutable post/comment snapshots
type VersionRepository interface {
	WithTx(tx *gorm.DB) VersionRepository

	NextPostVersion(postID int64) (int, error)
	CreatePostVersion(version *domain.PostVersion) error
	ListPostVersions(postID int64) ([]*domain.PostVersion, error)

	NextCommentVersion(commentID int64) (int, error)
	CreateCommentVersion(version *domain.CommentVersion) error
	ListCommentVersions(commentID int64) ([]*domain.CommentVersion, error)
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) WithTx(tx *gorm.DB) VersionRepository {
	return &versionRepository{db: tx}
}

func (r *versionRepository) nextVersion(model interface{}, idColumn string, id int64) (int, error) {
	var maxVersion *int
	err := r.db.Model(model).
		Where(idColumn+" = ?", id).
		Select("MAX(version)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}

func (r *versionRepository) NextPostVersion(postID int64) (int, error) {
	return r.nextVersion(&domain.PostVersion{}, "post_id", postID)
}

func (r *versionRepository) CreatePostVersion(version *domain.PostVersion) error {
	return r.db.Create(version).Error
}

func (r *versionRepository) ListPostVersions(postID int64) ([]*domain.PostVersion, error) {
	var versions []*domain.PostVersion
	err := r.db.Where("post_id = ?", postID).
		Order("version DESC").
		Find(&versions).Error
	return versions, err
}

func (r *versionRepository) NextCommentVersion(commentID int64) (int, error) {
	return r.nextVersion(&domain.CommentVersion{}, "comment_id", commentID)
}

func (r *versionRepository) CreateCommentVersion(version *domain.CommentVersion) error {
	return r.db.Create(version).Error
}

func (r *versionRepository) ListCommentVersions(commentID int64) ([]*domain.CommentVersion, error) {
	var versions []*domain.CommentVersion
	err := r.db.Where("comment_id = ?", commentID).
		Order("version DESC").
		Find(&versions).Error
	return versions, err
}
