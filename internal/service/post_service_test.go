package service

import (
	"context"
	"testing"
	"time"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- Mock TagRepository ---

type mockTagRepo struct {
	mock.Mock
}

func (m *mockTagRepo) WithTx(tx *gorm.DB) repository.TagRepository { return m }

func (m *mockTagRepo) List() ([]*domain.Tag, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tag), args.Error(1)
}

func (m *mockTagRepo) FindByID(id int64) (*domain.Tag, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *mockTagRepo) FindByAlias(alias string) (*domain.Tag, error) {
	args := m.Called(alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *mockTagRepo) Create(tag *domain.Tag) error {
	return m.Called(tag).Error(0)
}

func (m *mockTagRepo) FindOrCreateByTitles(titles []string) ([]domain.Tag, error) {
	args := m.Called(titles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

// --- Mock VersionRepository ---

type mockVersionRepo struct {
	mock.Mock
}

func (m *mockVersionRepo) WithTx(tx *gorm.DB) repository.VersionRepository { return m }

func (m *mockVersionRepo) NextPostVersion(postID int64) (int, error) {
	args := m.Called(postID)
	return args.Int(0), args.Error(1)
}

func (m *mockVersionRepo) CreatePostVersion(version *domain.PostVersion) error {
	return m.Called(version).Error(0)
}

func (m *mockVersionRepo) ListPostVersions(postID int64) ([]*domain.PostVersion, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostVersion), args.Error(1)
}

func (m *mockVersionRepo) NextCommentVersion(commentID int64) (int, error) {
	args := m.Called(commentID)
	return args.Int(0), args.Error(1)
}

func (m *mockVersionRepo) CreateCommentVersion(version *domain.CommentVersion) error {
	return m.Called(version).Error(0)
}

func (m *mockVersionRepo) ListCommentVersions(commentID int64) ([]*domain.CommentVersion, error) {
	args := m.Called(commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommentVersion), args.Error(1)
}

// --- Fixture ---

type postFixture struct {
	posts    *mockPostRepo
	marks    *mockMarkRepo
	history  *mockHistoryRepo
	tags     *mockTagRepo
	users    *mockUserRepo
	versions *mockVersionRepo
	svc      PostService
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	f := &postFixture{
		posts:    new(mockPostRepo),
		marks:    new(mockMarkRepo),
		history:  new(mockHistoryRepo),
		tags:     new(mockTagRepo),
		users:    new(mockUserRepo),
		versions: new(mockVersionRepo),
	}
	f.svc = NewPostService(&mockTxRunner{}, f.posts, f.marks, f.history, f.tags,
		f.users, f.versions, NewActivityService(f.history), nil)
	return f
}

// --- Tests ---

func TestListPosts_ProjectsCountsAndRating(t *testing.T) {
	f := newPostFixture(t)
	created := time.Now().Add(-2 * time.Hour)
	bumped := time.Now().Add(-time.Hour)

	f.posts.On("List", (*domain.PostFilter)(nil), 1, 20).Return([]*domain.Post{
		{ID: 1, Title: "a", CreatedAt: created},
		{ID: 2, Title: "b", CreatedAt: created},
	}, int64(2), nil)
	f.marks.On("CountsForMany", []int64{1, 2}).Return(map[int64][2]int64{1: {3, 1}}, nil)
	f.marks.On("RatedForMany", []int64{1, 2}, int64(9)).Return(map[int64]int{1: domain.MarkLike}, nil)
	f.history.On("LastActions", []int64{1, 2}).Return(map[int64]time.Time{1: bumped}, nil)

	responses, meta, err := f.svc.ListPosts(context.Background(), 9, nil, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, int64(2), meta.Total)

	assert.Equal(t, int64(3), responses[0].Liked)
	assert.Equal(t, int64(1), responses[0].Disliked)
	assert.Equal(t, domain.MarkLike, responses[0].Rated)
	assert.True(t, responses[0].LastAction.Equal(bumped))

	// post 2 has no activity row: creation time backfills last_action
	assert.Equal(t, domain.MarkNone, responses[1].Rated)
	assert.True(t, responses[1].LastAction.Equal(created))
}

func TestListPosts_AnonymousSkipsRatedLookup(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("List", (*domain.PostFilter)(nil), 1, 20).Return([]*domain.Post{{ID: 1}}, int64(1), nil)
	f.marks.On("CountsForMany", []int64{1}).Return(map[int64][2]int64{}, nil)
	f.history.On("LastActions", []int64{1}).Return(map[int64]time.Time{}, nil)

	_, _, err := f.svc.ListPosts(context.Background(), 0, nil, 1, 20)
	assert.NoError(t, err)
	f.marks.AssertNotCalled(t, "RatedForMany", mock.Anything, mock.Anything)
}

func TestListPosts_ClampsPagination(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("List", (*domain.PostFilter)(nil), 1, 20).Return([]*domain.Post{}, int64(0), nil)
	f.marks.On("CountsForMany", []int64{}).Return(map[int64][2]int64{}, nil)
	f.history.On("LastActions", []int64{}).Return(map[int64]time.Time{}, nil)

	_, meta, err := f.svc.ListPosts(context.Background(), 0, nil, -3, 500)
	assert.NoError(t, err)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 20, meta.Limit)
}

func TestCreatePost_BodyTooShort(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.CreatePost(context.Background(), &domain.CreatePostRequest{
		Title: "t", Body: "short",
	}, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	f.posts.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreatePost_AnonymousDefaultsUsername(t *testing.T) {
	f := newPostFixture(t)

	f.posts.On("Create", mock.MatchedBy(func(p *domain.Post) bool {
		return p.Username == "anonymous" && p.UserID == nil
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(0).(*domain.Post).ID = 1
	})
	f.history.On("GetOrCreate", int64(1), mock.Anything).Return(&domain.PostHistory{PostID: 1}, nil)
	f.history.On("Save", mock.Anything).Return(nil)
	f.versions.On("NextPostVersion", int64(1)).Return(1, nil)
	f.versions.On("CreatePostVersion", mock.MatchedBy(func(v *domain.PostVersion) bool {
		return v.Version == 1 && v.ChangeType == domain.ChangeCreate
	})).Return(nil)

	resp, err := f.svc.CreatePost(context.Background(), &domain.CreatePostRequest{
		Title: "t", Body: "long enough body",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "anonymous", resp.Username)
	f.versions.AssertExpectations(t)
}

func TestCreatePost_SnapshotsUsernameFromAccount(t *testing.T) {
	f := newPostFixture(t)
	uid := int64(7)

	f.users.On("FindByID", uid).Return(&domain.User{ID: 7, Username: "bob"}, nil)
	f.posts.On("Create", mock.MatchedBy(func(p *domain.Post) bool {
		return p.Username == "bob"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(0).(*domain.Post).ID = 1
	})
	f.tags.On("FindOrCreateByTitles", []string{"Go"}).Return([]domain.Tag{{ID: 1, Title: "Go", Alias: "go"}}, nil)
	f.posts.On("ReplaceTags", mock.Anything, mock.Anything).Return(nil)
	f.history.On("GetOrCreate", int64(1), mock.Anything).Return(&domain.PostHistory{PostID: 1}, nil)
	f.history.On("Save", mock.Anything).Return(nil)
	f.versions.On("NextPostVersion", int64(1)).Return(1, nil)
	f.versions.On("CreatePostVersion", mock.MatchedBy(func(v *domain.PostVersion) bool {
		return v.Username == "bob" && v.Tags == "go"
	})).Return(nil)

	resp, err := f.svc.CreatePost(context.Background(), &domain.CreatePostRequest{
		Title: "t", Body: "long enough body", Tags: []string{"Go"},
	}, &uid)
	assert.NoError(t, err)
	assert.Equal(t, "bob", resp.Username)
	assert.Len(t, resp.Tags, 1)
}

func TestCreatePost_SnapshotFailureAborts(t *testing.T) {
	f := newPostFixture(t)

	f.posts.On("Create", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(0).(*domain.Post).ID = 1
	})
	f.history.On("GetOrCreate", int64(1), mock.Anything).Return(&domain.PostHistory{PostID: 1}, nil)
	f.history.On("Save", mock.Anything).Return(nil)
	f.versions.On("NextPostVersion", int64(1)).Return(0, gorm.ErrInvalidDB)

	_, err := f.svc.CreatePost(context.Background(), &domain.CreatePostRequest{
		Title: "t", Body: "long enough body",
	}, nil)
	assert.Error(t, err)
}

func TestUpdatePost_NotOwner(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("FindByID", int64(1)).Return(votablePost(1, 5, time.Now()), nil)

	_, err := f.svc.UpdatePost(context.Background(), 1, &domain.UpdatePostRequest{
		Title: "t", Body: "long enough body",
	}, 9)
	assert.ErrorIs(t, err, common.ErrForbidden)
	f.posts.AssertNotCalled(t, "Update", mock.Anything)
}

func TestUpdatePost_AnonymousPostHasNoOwner(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("FindByID", int64(1)).
		Return(&domain.Post{ID: 1, Title: "t", Body: "long enough body"}, nil)

	// nobody owns an anonymous post, not even its author
	_, err := f.svc.UpdatePost(context.Background(), 1, &domain.UpdatePostRequest{
		Title: "t", Body: "long enough body",
	}, 9)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestDeletePost_OwnerSucceeds(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("FindByID", int64(1)).Return(votablePost(1, 5, time.Now()), nil)
	f.posts.On("Delete", int64(1)).Return(nil)

	assert.NoError(t, f.svc.DeletePost(context.Background(), 1, 5))
	f.posts.AssertExpectations(t)
}

func TestListVersions_OwnerOnly(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("FindByID", int64(1)).Return(votablePost(1, 5, time.Now()), nil)

	_, err := f.svc.ListVersions(1, 9)
	assert.ErrorIs(t, err, common.ErrForbidden)
	f.versions.AssertNotCalled(t, "ListPostVersions", mock.Anything)
}

func TestListVersions_ReturnsTrail(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("FindByID", int64(1)).Return(votablePost(1, 5, time.Now()), nil)
	f.versions.On("ListPostVersions", int64(1)).Return([]*domain.PostVersion{
		{PostID: 1, Version: 2, ChangeType: domain.ChangeUpdate},
		{PostID: 1, Version: 1, ChangeType: domain.ChangeCreate},
	}, nil)

	versions, err := f.svc.ListVersions(1, 5)
	assert.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
}
