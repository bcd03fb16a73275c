package repository

import (
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// MarkRepository is the data access layer of the vote ledger
type MarkRepository interface {
	// WithTx returns a view of the repository bound to tx
	WithTx(tx *gorm.DB) MarkRepository

	// FindByPostAndUser returns every live mark for the pair. More than
	// one row means a race leaked past the application pre-check; the
	// ledger treats it as state to repair.
	FindByPostAndUser(postID, userID int64) ([]domain.PostMark, error)
	Create(mark *domain.PostMark) error
	DeleteByPostAndUser(postID, userID int64) (int64, error)
	Counts(postID int64) (liked int64, disliked int64, err error)
	// RatedFor returns the caller's mark type for a post, MarkNone if
	// absent
	RatedFor(postID, userID int64) (int, error)
	RatedForMany(postIDs []int64, userID int64) (map[int64]int, error)
	CountsForMany(postIDs []int64) (map[int64][2]int64, error)
}

type markRepository struct {
	db *gorm.DB
}

// NewMarkRepository creates a new MarkRepository
func NewMarkRepository(db *gorm.DB) MarkRepository {
	return &markRepository{db: db}
}

func (r *markRepository) WithTx(tx *gorm.DB) MarkRepository {
	return &markRepository{db: tx}
}

func (r *markRepository) FindByPostAndUser(postID, userID int64) ([]domain.PostMark, error) {
	var marks []domain.PostMark
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Order("id").
		Find(&marks).Error
	return marks, err
}

func (r *markRepository) Create(mark *domain.PostMark) error {
	return r.db.Create(mark).Error
}

func (r *markRepository) DeleteByPostAndUser(postID, userID int64) (int64, error) {
	result := r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&domain.PostMark{})
	return result.RowsAffected, result.Error
}

func (r *markRepository) Counts(postID int64) (int64, int64, error) {
	var liked, disliked int64
	if err := r.db.Model(&domain.PostMark{}).
		Where("post_id = ? AND mark_type = ?", postID, domain.MarkLike).
		Count(&liked).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.Model(&domain.PostMark{}).
		Where("post_id = ? AND mark_type = ?", postID, domain.MarkDislike).
		Count(&disliked).Error; err != nil {
		return 0, 0, err
	}
	return liked, disliked, nil
}

func (r *markRepository) RatedFor(postID, userID int64) (int, error) {
	var mark domain.PostMark
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).
		First(&mark).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.MarkNone, nil
		}
		return domain.MarkNone, err
	}
	return mark.MarkType, nil
}

// RatedForMany resolves the caller's marks for a feed page in one query
func (r *markRepository) RatedForMany(postIDs []int64, userID int64) (map[int64]int, error) {
	rated := make(map[int64]int, len(postIDs))
	if len(postIDs) == 0 {
		return rated, nil
	}

	var marks []domain.PostMark
	err := r.db.Where("post_id IN ? AND user_id = ?", postIDs, userID).
		Find(&marks).Error
	if err != nil {
		return nil, err
	}
	for _, m := range marks {
		rated[m.PostID] = m.MarkType
	}
	return rated, nil
}

// CountsForMany resolves like/dislike counts for a feed page in one
// query; index 0 is likes, 1 dislikes
func (r *markRepository) CountsForMany(postIDs []int64) (map[int64][2]int64, error) {
	counts := make(map[int64][2]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID   int64
		MarkType int
		N        int64
	}
	err := r.db.Model(&domain.PostMark{}).
		Select("post_id, mark_type, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id, mark_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		c := counts[row.PostID]
		switch row.MarkType {
		case domain.MarkLike:
			c[0] = row.N
		case domain.MarkDislike:
			c[1] = row.N
		}
		counts[row.PostID] = c
	}
	return counts, nil
}
