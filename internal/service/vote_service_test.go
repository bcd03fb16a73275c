package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- Mock TxRunner ---

type mockTxRunner struct{}

func (m *mockTxRunner) RunInTx(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// --- Mock PostRepository ---

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) WithTx(tx *gorm.DB) repository.PostRepository { return m }

func (m *mockPostRepo) List(filter *domain.PostFilter, page, limit int) ([]*domain.Post, int64, error) {
	args := m.Called(filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) FindByID(id int64) (*domain.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) Create(post *domain.Post) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) Update(post *domain.Post) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) ReplaceTags(post *domain.Post, tags []domain.Tag) error {
	return m.Called(post, tags).Error(0)
}

func (m *mockPostRepo) Delete(id int64) error {
	return m.Called(id).Error(0)
}

func (m *mockPostRepo) IDsByUser(userID int64) ([]int64, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// --- Mock MarkRepository ---

type mockMarkRepo struct {
	mock.Mock
}

func (m *mockMarkRepo) WithTx(tx *gorm.DB) repository.MarkRepository { return m }

func (m *mockMarkRepo) FindByPostAndUser(postID, userID int64) ([]domain.PostMark, error) {
	args := m.Called(postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostMark), args.Error(1)
}

func (m *mockMarkRepo) Create(mark *domain.PostMark) error {
	return m.Called(mark).Error(0)
}

func (m *mockMarkRepo) DeleteByPostAndUser(postID, userID int64) (int64, error) {
	args := m.Called(postID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMarkRepo) Counts(postID int64) (int64, int64, error) {
	args := m.Called(postID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockMarkRepo) RatedFor(postID, userID int64) (int, error) {
	args := m.Called(postID, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockMarkRepo) RatedForMany(postIDs []int64, userID int64) (map[int64]int, error) {
	args := m.Called(postIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *mockMarkRepo) CountsForMany(postIDs []int64) (map[int64][2]int64, error) {
	args := m.Called(postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][2]int64), args.Error(1)
}

// --- Mock HistoryRepository ---

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) WithTx(tx *gorm.DB) repository.HistoryRepository { return m }

func (m *mockHistoryRepo) GetOrCreate(postID int64, postCreated time.Time) (*domain.PostHistory, error) {
	args := m.Called(postID, postCreated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostHistory), args.Error(1)
}

func (m *mockHistoryRepo) Save(history *domain.PostHistory) error {
	return m.Called(history).Error(0)
}

func (m *mockHistoryRepo) FindByPostID(postID int64) (*domain.PostHistory, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostHistory), args.Error(1)
}

func (m *mockHistoryRepo) LastActions(postIDs []int64) (map[int64]time.Time, error) {
	args := m.Called(postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]time.Time), args.Error(1)
}

// --- Helpers ---

func int64Ptr(v int64) *int64 { return &v }

func votablePost(id int64, ownerID int64, created time.Time) *domain.Post {
	return &domain.Post{ID: id, UserID: int64Ptr(ownerID), Title: "t", Body: "body body b", CreatedAt: created}
}

// --- Tests ---

func TestRate_InvalidMarkType(t *testing.T) {
	svc := NewVoteService(&mockTxRunner{}, new(mockPostRepo), new(mockMarkRepo), NewActivityService(new(mockHistoryRepo)), PolicyToggle, nil)

	_, err := svc.Rate(context.Background(), 1, 2, 7)
	assert.ErrorIs(t, err, common.ErrInvalidMarkType)
}

func TestRate_PostNotFound(t *testing.T) {
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(99)).Return(nil, common.ErrPostNotFound)
	svc := NewVoteService(&mockTxRunner{}, posts, new(mockMarkRepo), NewActivityService(new(mockHistoryRepo)), PolicyToggle, nil)

	_, err := svc.Rate(context.Background(), 99, 2, domain.MarkLike)
	assert.ErrorIs(t, err, common.ErrPostNotFound)
}

func TestRate_SelfVote(t *testing.T) {
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, time.Now()), nil)
	marks := new(mockMarkRepo)
	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(new(mockHistoryRepo)), PolicyToggle, nil)

	_, err := svc.Rate(context.Background(), 1, 5, domain.MarkLike)
	assert.ErrorIs(t, err, common.ErrSelfVote)
	marks.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRate_CastNew(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).Return([]domain.PostMark{}, nil)
	marks.On("Create", mock.MatchedBy(func(m *domain.PostMark) bool {
		return m.PostID == 1 && m.UserID == 2 && m.MarkType == domain.MarkLike
	})).Return(nil)
	marks.On("Counts", int64(1)).Return(int64(1), int64(0), nil)

	history := new(mockHistoryRepo)
	h := &domain.PostHistory{PostID: 1, LastAction: created}
	history.On("GetOrCreate", int64(1), created).Return(h, nil)
	history.On("Save", h).Return(nil)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(history), PolicyToggle, nil)

	resp, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.NoError(t, err)
	assert.Equal(t, domain.MarkLike, resp.Rated)
	assert.False(t, resp.Switched)
	assert.Equal(t, int64(1), resp.Liked)
	assert.Equal(t, int64(0), resp.Disliked)

	// the up-vote must advance the feed sort key
	assert.NotNil(t, h.UpVoted)
	assert.True(t, h.LastAction.After(created))
	marks.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestRate_ToggleOff(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).
		Return([]domain.PostMark{{ID: 10, PostID: 1, UserID: 2, MarkType: domain.MarkLike}}, nil)
	marks.On("DeleteByPostAndUser", int64(1), int64(2)).Return(int64(1), nil)
	marks.On("Counts", int64(1)).Return(int64(0), int64(0), nil)

	history := new(mockHistoryRepo)
	h := &domain.PostHistory{PostID: 1, LastAction: created}
	history.On("GetOrCreate", int64(1), created).Return(h, nil)
	history.On("Save", h).Return(nil)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(history), PolicyToggle, nil)

	resp, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.NoError(t, err)
	assert.Equal(t, domain.MarkNone, resp.Rated)
	assert.Equal(t, int64(0), resp.Liked)

	// removing a vote records un_voted but must not bump last_action
	assert.NotNil(t, h.UnVoted)
	assert.True(t, h.LastAction.Equal(created))
	marks.AssertNotCalled(t, "Create", mock.Anything)
	marks.AssertExpectations(t)
}

func TestRate_StrictRejectsDuplicate(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).
		Return([]domain.PostMark{{ID: 10, PostID: 1, UserID: 2, MarkType: domain.MarkLike}}, nil)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(new(mockHistoryRepo)), PolicyStrict, nil)

	_, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.ErrorIs(t, err, common.ErrDuplicateVote)
	marks.AssertNotCalled(t, "DeleteByPostAndUser", mock.Anything, mock.Anything)
	marks.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRate_SwitchSides(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).
		Return([]domain.PostMark{{ID: 10, PostID: 1, UserID: 2, MarkType: domain.MarkLike}}, nil)
	marks.On("DeleteByPostAndUser", int64(1), int64(2)).Return(int64(1), nil)
	marks.On("Create", mock.MatchedBy(func(m *domain.PostMark) bool {
		return m.MarkType == domain.MarkDislike
	})).Return(nil)
	marks.On("Counts", int64(1)).Return(int64(0), int64(1), nil)

	history := new(mockHistoryRepo)
	h := &domain.PostHistory{PostID: 1, LastAction: created}
	history.On("GetOrCreate", int64(1), created).Return(h, nil)
	history.On("Save", h).Return(nil)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(history), PolicyToggle, nil)

	resp, err := svc.Rate(context.Background(), 1, 2, domain.MarkDislike)
	assert.NoError(t, err)
	assert.Equal(t, domain.MarkDislike, resp.Rated)
	assert.True(t, resp.Switched)
	assert.Equal(t, int64(1), resp.Disliked)
	assert.NotNil(t, h.DownVoted)
	marks.AssertExpectations(t)
}

func TestRate_RepairsLeakedMarks(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	// two rows for the same pair: state a lost race left behind
	marks.On("FindByPostAndUser", int64(1), int64(2)).Return([]domain.PostMark{
		{ID: 10, PostID: 1, UserID: 2, MarkType: domain.MarkLike},
		{ID: 11, PostID: 1, UserID: 2, MarkType: domain.MarkDislike},
	}, nil)
	marks.On("DeleteByPostAndUser", int64(1), int64(2)).Return(int64(2), nil)
	marks.On("Create", mock.Anything).Return(nil)
	marks.On("Counts", int64(1)).Return(int64(1), int64(0), nil)

	history := new(mockHistoryRepo)
	h := &domain.PostHistory{PostID: 1, LastAction: created}
	history.On("GetOrCreate", int64(1), created).Return(h, nil)
	history.On("Save", h).Return(nil)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(history), PolicyToggle, nil)

	resp, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.NoError(t, err)
	assert.Equal(t, domain.MarkLike, resp.Rated)
	marks.AssertExpectations(t)
}

func TestRate_ConcurrentInsertLosesRace(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).Return([]domain.PostMark{}, nil)
	marks.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(new(mockHistoryRepo)), PolicyToggle, nil)

	_, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.ErrorIs(t, err, common.ErrDuplicateVote)
}

func TestRate_AnonymousPostAcceptsVotes(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	post := &domain.Post{ID: 1, UserID: nil, Title: "t", Body: "body body b", CreatedAt: created}
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(post, nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).Return([]domain.PostMark{}, nil)
	marks.On("Create", mock.Anything).Return(nil)
	marks.On("Counts", int64(1)).Return(int64(1), int64(0), nil)

	history := new(mockHistoryRepo)
	h := &domain.PostHistory{PostID: 1, LastAction: created}
	history.On("GetOrCreate", int64(1), created).Return(h, nil)
	history.On("Save", h).Return(nil)

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(history), PolicyToggle, nil)

	resp, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.NoError(t, err)
	assert.Equal(t, domain.MarkLike, resp.Rated)
}

func TestRate_HistoryErrorRollsBack(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	posts := new(mockPostRepo)
	posts.On("FindByID", int64(1)).Return(votablePost(1, 5, created), nil)

	marks := new(mockMarkRepo)
	marks.On("FindByPostAndUser", int64(1), int64(2)).Return([]domain.PostMark{}, nil)
	marks.On("Create", mock.Anything).Return(nil)

	history := new(mockHistoryRepo)
	history.On("GetOrCreate", int64(1), created).Return(nil, errors.New("db error"))

	svc := NewVoteService(&mockTxRunner{}, posts, marks, NewActivityService(history), PolicyToggle, nil)

	_, err := svc.Rate(context.Background(), 1, 2, domain.MarkLike)
	assert.Error(t, err)
}
