package service

import (
	"testing"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateTag_SlugifiesAlias(t *testing.T) {
	tags := new(mockTagRepo)
	tags.On("FindByAlias", "web-development").Return(nil, common.ErrTagNotFound)
	tags.On("Create", mock.MatchedBy(func(tag *domain.Tag) bool {
		return tag.Alias == "web-development" && tag.Title == "Web Development"
	})).Return(nil)
	svc := NewTagService(tags)

	tag, err := svc.CreateTag(&domain.CreateTagRequest{Title: "Web Development", Alias: "Web Development"})
	assert.NoError(t, err)
	assert.Equal(t, "web-development", tag.Alias)
	tags.AssertExpectations(t)
}

func TestCreateTag_DuplicateAlias(t *testing.T) {
	tags := new(mockTagRepo)
	tags.On("FindByAlias", "go").Return(&domain.Tag{ID: 1, Alias: "go"}, nil)
	svc := NewTagService(tags)

	_, err := svc.CreateTag(&domain.CreateTagRequest{Title: "Go", Alias: "go"})
	assert.ErrorIs(t, err, common.ErrConflict)
	tags.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateTag_EmptyAlias(t *testing.T) {
	svc := NewTagService(new(mockTagRepo))

	_, err := svc.CreateTag(&domain.CreateTagRequest{Title: "???", Alias: "???"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestPolicies(t *testing.T) {
	owner := int64(5)

	assert.True(t, OwnerOnly(5, &owner))
	assert.False(t, OwnerOnly(9, &owner))
	// anonymous resources have no owner to act as
	assert.False(t, OwnerOnly(5, nil))

	assert.False(t, NotOwner(5, &owner))
	assert.True(t, NotOwner(9, &owner))
	assert.True(t, NotOwner(5, nil))
}
