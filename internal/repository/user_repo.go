package repository

import (
	"errors"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository is the data access layer for users and their profiles
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository

	FindByID(id int64) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	UsernameExists(username string) (bool, error)
	Create(user *domain.User) error
	Update(user *domain.User) error
	List(page, limit int) ([]*domain.User, int64, error)

	GetProfile(userID int64) (*domain.UserProfile, error)
	CreateProfile(profile *domain.UserProfile) error
	SaveProfile(profile *domain.UserProfile) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) FindByID(id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) List(page, limit int) ([]*domain.User, int64, error) {
	var total int64
	if err := r.db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*domain.User
	err := r.db.Order("id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) GetProfile(userID int64) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) CreateProfile(profile *domain.UserProfile) error {
	return r.db.Create(profile).Error
}

func (r *userRepository) SaveProfile(profile *domain.UserProfile) error {
	return r.db.Save(profile).Error
}
