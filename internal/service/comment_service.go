package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/quillboard/quill-backend/pkg/cache"
	"github.com/quillboard/quill-backend/pkg/logger"
	"github.com/quillboard/quill-backend/pkg/mailer"
	"gorm.io/gorm"
)

// CommentService business logic for comments
type CommentService interface {
	ListComments(postID int64, page, limit int) ([]*domain.CommentResponse, *common.Meta, error)
	CreateComment(ctx context.Context, postID int64, req *domain.CreateCommentRequest, userID *int64) (*domain.CommentResponse, error)
	UpdateComment(ctx context.Context, id int64, req *domain.UpdateCommentRequest, actorID int64) (*domain.CommentResponse, error)
	DeleteComment(ctx context.Context, id int64, actorID int64) error
	ListVersions(id int64, actorID int64) ([]*domain.CommentVersion, error)
}

type commentService struct {
	txr      repository.TxRunner
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	versions repository.VersionRepository
	activity *ActivityService
	mailer   mailer.Mailer
	cache    cache.Service
}

// NewCommentService creates a new CommentService. mail and cache may be
// nil.
func NewCommentService(
	txr repository.TxRunner,
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	versions repository.VersionRepository,
	activity *ActivityService,
	mail mailer.Mailer,
	cacheService cache.Service,
) CommentService {
	return &commentService{
		txr:      txr,
		comments: comments,
		posts:    posts,
		users:    users,
		versions: versions,
		activity: activity,
		mailer:   mail,
		cache:    cacheService,
	}
}

func (s *commentService) ListComments(postID int64, page, limit int) ([]*domain.CommentResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if _, err := s.posts.FindByID(postID); err != nil {
		return nil, nil, err
	}

	comments, total, err := s.comments.ListByPost(postID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.CommentResponse, len(comments))
	for i, c := range comments {
		responses[i] = c.ToResponse()
	}

	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

// CreateComment adds a comment, snapshots it and bumps the post's
// activity record, all in one transaction. The author notification mail
// goes out after commit and never blocks it.
func (s *commentService) CreateComment(ctx context.Context, postID int64, req *domain.CreateCommentRequest, userID *int64) (*domain.CommentResponse, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("%w: comment body is empty", common.ErrValidation)
	}

	post, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, err
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

	comment := &domain.Comment{
		PostID:   postID,
		UserID:   userID,
		Username: username,
		Body:     req.Body,
		Email:    req.Email,
	}

	err = s.txr.RunInTx(func(tx *gorm.DB) error {
		if err := s.comments.WithTx(tx).Create(comment); err != nil {
			return err
		}
		if err := s.snapshot(tx, comment, domain.ChangeCreate, userID); err != nil {
			return err
		}
		return s.activity.Apply(tx, post, domain.NewCommentAdded(postID, comment.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	s.notifyAuthor(post, comment)
	s.invalidate(ctx, postID)

	return comment.ToResponse(), nil
}

func (s *commentService) UpdateComment(ctx context.Context, id int64, req *domain.UpdateCommentRequest, actorID int64) (*domain.CommentResponse, error) {
	comment, err := s.comments.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !OwnerOnly(actorID, comment.UserID) {
		return nil, common.ErrForbidden
	}

	comment.Body = req.Body

	err = s.txr.RunInTx(func(tx *gorm.DB) error {
		if err := s.comments.WithTx(tx).Update(comment); err != nil {
			return err
		}
		return s.snapshot(tx, comment, domain.ChangeUpdate, &actorID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, comment.PostID)
	return comment.ToResponse(), nil
}

func (s *commentService) DeleteComment(ctx context.Context, id int64, actorID int64) error {
	comment, err := s.comments.FindByID(id)
	if err != nil {
		return err
	}
	if !OwnerOnly(actorID, comment.UserID) {
		return common.ErrForbidden
	}

	if err := s.comments.Delete(id); err != nil {
		return err
	}

	s.invalidate(ctx, comment.PostID)
	return nil
}

func (s *commentService) ListVersions(id int64, actorID int64) ([]*domain.CommentVersion, error) {
	comment, err := s.comments.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !OwnerOnly(actorID, comment.UserID) {
		return nil, common.ErrForbidden
	}
	return s.versions.ListCommentVersions(id)
}

func (s *commentService) snapshot(tx *gorm.DB, comment *domain.Comment, changeType string, editedBy *int64) error {
	versions := s.versions.WithTx(tx)
	next, err := versions.NextCommentVersion(comment.ID)
	if err != nil {
		return err
	}
	return versions.CreateCommentVersion(&domain.CommentVersion{
		CommentID:  comment.ID,
		Version:    next,
		ChangeType: changeType,
		Username:   comment.Username,
		Body:       comment.Body,
		Email:      comment.Email,
		EditedBy:   editedBy,
	})
}

// notifyAuthor mails the post author about a new comment when their
// profile opts in. Fire-and-forget: delivery failure only logs.
func (s *commentService) notifyAuthor(post *domain.Post, comment *domain.Comment) {
	if s.mailer == nil || post.UserID == nil {
		return
	}
	if comment.UserID != nil && *comment.UserID == *post.UserID {
		return // own comment
	}

	authorID := *post.UserID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		author, err := s.users.FindByID(authorID)
		if err != nil || author.Email == nil {
			return
		}
		profile, err := s.users.GetProfile(authorID)
		if err != nil || !profile.ReceiveCommentsEmail {
			return
		}

		err = s.mailer.Send(ctx, mailer.TemplateNewComment, *author.Email, map[string]interface{}{
			"Username":      author.Username,
			"CommentAuthor": comment.Username,
			"PostTitle":     post.Title,
			"Body":          comment.Body,
		})
		if err != nil {
			logger.GetLogger().Warn().Err(err).
				Int64("post_id", post.ID).
				Msg("comment notification mail failed")
		}
	}()
}

func (s *commentService) invalidate(ctx context.Context, postID int64) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	_ = s.cache.InvalidatePost(ctx, postID) //nolint:errcheck // cache only
	_ = s.cache.InvalidateFeed(ctx)         //nolint:errcheck // cache only
}
