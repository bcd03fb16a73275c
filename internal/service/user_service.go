package service

import (
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
)

// UserService read access to users and management of the caller's own
// profile
type UserService interface {
	ListUsers(page, limit int) ([]*domain.UserResponse, *common.Meta, error)
	GetUser(id int64) (*domain.UserResponse, error)
	GetProfile(userID int64) (*domain.UserProfile, error)
	UpdateProfile(userID int64, req *domain.UpdateProfileRequest) (*domain.UserProfile, error)
}

type userService struct {
	users repository.UserRepository
	posts repository.PostRepository
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, posts repository.PostRepository) UserService {
	return &userService{users: users, posts: posts}
}

func (s *userService) ListUsers(page, limit int) ([]*domain.UserResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := s.users.List(page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.UserResponse, len(users))
	for i, u := range users {
		ids, err := s.posts.IDsByUser(u.ID)
		if err != nil {
			return nil, nil, err
		}
		responses[i] = u.ToResponse(ids)
	}

	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *userService) GetUser(id int64) (*domain.UserResponse, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	ids, err := s.posts.IDsByUser(id)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(ids), nil
}

func (s *userService) GetProfile(userID int64) (*domain.UserProfile, error) {
	return s.users.GetProfile(userID)
}

func (s *userService) UpdateProfile(userID int64, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	profile, err := s.users.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.ReceiveCommentsEmail != nil {
		profile.ReceiveCommentsEmail = *req.ReceiveCommentsEmail
	}

	if err := s.users.SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
