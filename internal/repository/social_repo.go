package repository

import (
	"errors"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialRepository is the data access layer for social account links
type SocialRepository interface {
	WithTx(tx *gorm.DB) SocialRepository

	FindByProviderUID(provider domain.SocialProvider, externalUID string) (*domain.SocialAccount, error)
	// Upsert creates the (provider, external_uid) link or re-points an
	// existing one at the given user
	Upsert(account *domain.SocialAccount) error
	ListByUser(userID int64) ([]*domain.SocialAccount, error)
}

type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository creates a new SocialRepository
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) WithTx(tx *gorm.DB) SocialRepository {
	return &socialRepository{db: tx}
}

func (r *socialRepository) FindByProviderUID(provider domain.SocialProvider, externalUID string) (*domain.SocialAccount, error) {
	var account domain.SocialAccount
	err := r.db.Where("provider = ? AND external_uid = ?", provider, externalUID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *socialRepository) Upsert(account *domain.SocialAccount) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "external_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
	}).Create(account).Error
}

func (r *socialRepository) ListByUser(userID int64) ([]*domain.SocialAccount, error) {
	var accounts []*domain.SocialAccount
	err := r.db.Where("user_id = ?", userID).Find(&accounts).Error
	return accounts, err
}
