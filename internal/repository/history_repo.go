package repository

import (
	"errors"
	"time"

	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// HistoryRepository stores per-post activity records
type HistoryRepository interface {
	WithTx(tx *gorm.DB) HistoryRepository

	// GetOrCreate returns the history row for a post, creating it with
	// last_action = postCreated when missing
	GetOrCreate(postID int64, postCreated time.Time) (*domain.PostHistory, error)
	Save(history *domain.PostHistory) error
	FindByPostID(postID int64) (*domain.PostHistory, error)
	// LastActions resolves last_action timestamps for a feed page
	LastActions(postIDs []int64) (map[int64]time.Time, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) WithTx(tx *gorm.DB) HistoryRepository {
	return &historyRepository{db: tx}
}

func (r *historyRepository) GetOrCreate(postID int64, postCreated time.Time) (*domain.PostHistory, error) {
	var history domain.PostHistory
	err := r.db.Where("post_id = ?", postID).First(&history).Error
	if err == nil {
		return &history, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	history = domain.PostHistory{
		PostID:     postID,
		LastAction: postCreated,
	}
	if err := r.db.Create(&history).Error; err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *historyRepository) Save(history *domain.PostHistory) error {
	return r.db.Save(history).Error
}

func (r *historyRepository) FindByPostID(postID int64) (*domain.PostHistory, error) {
	var history domain.PostHistory
	err := r.db.Where("post_id = ?", postID).First(&history).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *historyRepository) LastActions(postIDs []int64) (map[int64]time.Time, error) {
	actions := make(map[int64]time.Time, len(postIDs))
	if len(postIDs) == 0 {
		return actions, nil
	}

	var rows []struct {
		PostID     int64
		LastAction time.Time
	}
	err := r.db.Model(&domain.PostHistory{}).
		Select("post_id, last_action").
		Where("post_id IN ?", postIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		actions[row.PostID] = row.LastAction
	}
	return actions, nil
}
