package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/quillboard/quill-backend/pkg/cache"
	"github.com/quillboard/quill-backend/pkg/logger"
	"gorm.io/gorm"
)

// PostService business logic for posts and their revision history
type PostService interface {
	ListPosts(ctx context.Context, viewerID int64, filter *domain.PostFilter, page, limit int) ([]*domain.PostResponse, *common.Meta, error)
	GetPost(ctx context.Context, id, viewerID int64) (*domain.PostResponse, error)
	CreatePost(ctx context.Context, req *domain.CreatePostRequest, userID *int64) (*domain.PostResponse, error)
	UpdatePost(ctx context.Context, id int64, req *domain.UpdatePostRequest, actorID int64) (*domain.PostResponse, error)
	DeletePost(ctx context.Context, id int64, actorID int64) error
	ListVersions(id int64, actorID int64) ([]*domain.PostVersion, error)
}

type postService struct {
	txr      repository.TxRunner
	posts    repository.PostRepository
	marks    repository.MarkRepository
	history  repository.HistoryRepository
	tags     repository.TagRepository
	users    repository.UserRepository
	versions repository.VersionRepository
	activity *ActivityService
	cache    cache.Service
}

// NewPostService creates a new PostService. cache may be nil.
func NewPostService(
	txr repository.TxRunner,
	posts repository.PostRepository,
	marks repository.MarkRepository,
	history repository.HistoryRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	versions repository.VersionRepository,
	activity *ActivityService,
	cacheService cache.Service,
) PostService {
	return &postService{
		txr:      txr,
		posts:    posts,
		marks:    marks,
		history:  history,
		tags:     tags,
		users:    users,
		versions: versions,
		activity: activity,
		cache:    cacheService,
	}
}

// ListPosts returns a feed page ordered by last activity. viewerID 0
// means anonymous: rated is omitted (always 0).
func (s *postService) ListPosts(ctx context.Context, viewerID int64, filter *domain.PostFilter, page, limit int) ([]*domain.PostResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cacheable := viewerID == 0 && (filter == nil || *filter == (domain.PostFilter{}))
	if cacheable && s.cache != nil && s.cache.IsAvailable() {
		if raw, err := s.cache.GetFeed(ctx, page, limit); err == nil {
			var cached struct {
				Posts []*domain.PostResponse `json:"posts"`
				Meta  *common.Meta           `json:"meta"`
			}
			if json.Unmarshal(raw, &cached) == nil {
				return cached.Posts, cached.Meta, nil
			}
		}
	}

	posts, total, err := s.posts.List(filter, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses, err := s.project(posts, viewerID)
	if err != nil {
		return nil, nil, err
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}

	if cacheable && s.cache != nil && s.cache.IsAvailable() {
		payload := map[string]interface{}{"posts": responses, "meta": meta}
		if err := s.cache.SetFeed(ctx, page, limit, payload); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("feed cache write failed")
		}
	}

	return responses, meta, nil
}

// project turns posts into responses, resolving counts, the viewer's
// marks and last_action in batched queries
func (s *postService) project(posts []*domain.Post, viewerID int64) ([]*domain.PostResponse, error) {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	counts, err := s.marks.CountsForMany(ids)
	if err != nil {
		return nil, err
	}
	rated := map[int64]int{}
	if viewerID != 0 {
		rated, err = s.marks.RatedForMany(ids, viewerID)
		if err != nil {
			return nil, err
		}
	}
	actions, err := s.history.LastActions(ids)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.PostResponse, len(posts))
	for i, p := range posts {
		c := counts[p.ID]
		last, ok := actions[p.ID]
		if !ok {
			last = p.CreatedAt
		}
		responses[i] = p.ToResponse(c[0], c[1], rated[p.ID], last)
	}
	return responses, nil
}

// GetPost retrieves a single post with the viewer's rating state
func (s *postService) GetPost(_ context.Context, id, viewerID int64) (*domain.PostResponse, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}

	responses, err := s.project([]*domain.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

// CreatePost creates a post, its history row and the v1 snapshot in one
// transaction. userID nil means anonymous.
func (s *postService) CreatePost(ctx context.Context, req *domain.CreatePostRequest, userID *int64) (*domain.PostResponse, error) {
	if len(strings.TrimSpace(req.Body)) < domain.MinBodyLength {
		return nil, fmt.Errorf("%w: body must be at least %d characters", common.ErrValidation, domain.MinBodyLength)
	}

	username := strings.TrimSpace(req.Username)
	if userID != nil {
		user, err := s.users.FindByID(*userID)
		if err != nil {
			return nil, err
		}
		username = user.Username
	}
	if username == "" {
		username = "anonymous"
	}

	post := &domain.Post{
		UserID:   userID,
		Username: username,
		Title:    req.Title,
		Body:     req.Body,
		Email:    req.Email,
	}

	err := s.txr.RunInTx(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		if err := posts.Create(post); err != nil {
			return err
		}

		if len(req.Tags) > 0 {
			tags, err := s.tags.WithTx(tx).FindOrCreateByTitles(req.Tags)
			if err != nil {
				return err
			}
			if err := posts.ReplaceTags(post, tags); err != nil {
				return err
			}
			post.Tags = tags
		}

		if err := s.activity.Apply(tx, post, domain.NewPostCreated(post.ID, post.CreatedAt)); err != nil {
			return err
		}

		// Revision recording is not best-effort: a failed snapshot
		// aborts the whole create.
		return s.snapshot(tx, post, domain.ChangeCreate, userID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	return post.ToResponse(0, 0, domain.MarkNone, post.CreatedAt), nil
}

// UpdatePost edits a post (owner only) and appends a snapshot
func (s *postService) UpdatePost(ctx context.Context, id int64, req *domain.UpdatePostRequest, actorID int64) (*domain.PostResponse, error) {
	if len(strings.TrimSpace(req.Body)) < domain.MinBodyLength {
		return nil, fmt.Errorf("%w: body must be at least %d characters", common.ErrValidation, domain.MinBodyLength)
	}

	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !OwnerOnly(actorID, post.UserID) {
		return nil, common.ErrForbidden
	}

	post.Title = req.Title
	post.Body = req.Body
	post.Email = req.Email

	err = s.txr.RunInTx(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		if err := posts.Update(post); err != nil {
			return err
		}

		tags, err := s.tags.WithTx(tx).FindOrCreateByTitles(req.Tags)
		if err != nil {
			return err
		}
		if err := posts.ReplaceTags(post, tags); err != nil {
			return err
		}
		post.Tags = tags

		return s.snapshot(tx, post, domain.ChangeUpdate, &actorID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	if s.cache != nil && s.cache.IsAvailable() {
		_ = s.cache.InvalidatePost(ctx, id) //nolint:errcheck // cache only
	}

	return s.GetPost(ctx, id, actorID)
}

// DeletePost removes a post (owner only). Versions stay: the audit
// trail outlives the entity.
func (s *postService) DeletePost(ctx context.Context, id int64, actorID int64) error {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return err
	}
	if !OwnerOnly(actorID, post.UserID) {
		return common.ErrForbidden
	}

	if err := s.posts.Delete(id); err != nil {
		return err
	}

	s.invalidateFeed(ctx)
	if s.cache != nil && s.cache.IsAvailable() {
		_ = s.cache.InvalidatePost(ctx, id) //nolint:errcheck // cache only
	}
	return nil
}

// ListVersions returns the audit trail of a post, owner only
func (s *postService) ListVersions(id int64, actorID int64) ([]*domain.PostVersion, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !OwnerOnly(actorID, post.UserID) {
		return nil, common.ErrForbidden
	}
	return s.versions.ListPostVersions(id)
}

// snapshot writes an immutable version row for the post's current state
func (s *postService) snapshot(tx *gorm.DB, post *domain.Post, changeType string, editedBy *int64) error {
	versions := s.versions.WithTx(tx)
	next, err := versions.NextPostVersion(post.ID)
	if err != nil {
		return err
	}

	aliases := make([]string, len(post.Tags))
	for i, t := range post.Tags {
		aliases[i] = t.Alias
	}

	return versions.CreatePostVersion(&domain.PostVersion{
		PostID:     post.ID,
		Version:    next,
		ChangeType: changeType,
		Username:   post.Username,
		Title:      post.Title,
		Body:       post.Body,
		Email:      post.Email,
		Tags:       strings.Join(aliases, ","),
		EditedBy:   editedBy,
	})
}

func (s *postService) invalidateFeed(ctx context.Context) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.InvalidateFeed(ctx); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("feed cache invalidation failed")
	}
}
