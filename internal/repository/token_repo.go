package repository

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// TokenRepository manages opaque bearer tokens, one per user with
// get-or-create semantics
type TokenRepository interface {
	WithTx(tx *gorm.DB) TokenRepository

	GetOrCreate(userID int64) (*domain.AuthToken, error)
	FindByKey(key string) (*domain.AuthToken, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) WithTx(tx *gorm.DB) TokenRepository {
	return &tokenRepository{db: tx}
}

func (r *tokenRepository) GetOrCreate(userID int64) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	keyBytes := make([]byte, 20)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, err
	}
	token = domain.AuthToken{
		Key:    hex.EncodeToString(keyBytes),
		UserID: userID,
	}
	if err := r.db.Create(&token).Error; err != nil {
		// Concurrent login created the row between lookup and insert;
		// the unique index on user_id guarantees there is one to read.
		if readErr := r.db.Where("user_id = ?", userID).First(&token).Error; readErr == nil {
			return &token, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindByKey(key string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.Where("token_key = ?", key).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return &token, nil
}
