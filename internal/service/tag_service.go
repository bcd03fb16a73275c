package service

import (
	"fmt"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
)

// TagService business logic for tags
type TagService interface {
	ListTags() ([]*domain.Tag, error)
	GetTag(id int64) (*domain.Tag, error)
	CreateTag(req *domain.CreateTagRequest) (*domain.Tag, error)
}

type tagService struct {
	tags repository.TagRepository
}

// NewTagService creates a new TagService
func NewTagService(tags repository.TagRepository) TagService {
	return &tagService{tags: tags}
}

func (s *tagService) ListTags() ([]*domain.Tag, error) {
	return s.tags.List()
}

func (s *tagService) GetTag(id int64) (*domain.Tag, error) {
	return s.tags.FindByID(id)
}

func (s *tagService) CreateTag(req *domain.CreateTagRequest) (*domain.Tag, error) {
	alias := repository.Slugify(req.Alias)
	if alias == "" {
		return nil, fmt.Errorf("%w: alias is empty after normalization", common.ErrValidation)
	}

	if _, err := s.tags.FindByAlias(alias); err == nil {
		return nil, fmt.Errorf("%w: tag alias %q already exists", common.ErrConflict, alias)
	}

	tag := &domain.Tag{
		Title:  req.Title,
		Alias:  alias,
		Weight: req.Weight,
	}
	if err := s.tags.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}
