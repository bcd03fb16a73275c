package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/quillboard/quill-backend/pkg/cache"
	"gorm.io/gorm"
)

// VotePolicy selects how the ledger treats a repeated same-type vote
type VotePolicy string

const (
	// PolicyToggle removes the existing mark (vote acts as an on/off
	// switch). Default, matches current frontend behavior.
	PolicyToggle VotePolicy = "toggle"
	// PolicyStrict rejects the duplicate with a validation error.
	// Legacy compatibility mode.
	PolicyStrict VotePolicy = "strict"
)

// VoteService is the vote ledger: it guarantees at most one live mark
// per (post, user) and keeps the post's activity record in step.
type VoteService interface {
	Rate(ctx context.Context, postID, userID int64, markType int) (*domain.RateResponse, error)
}

type voteService struct {
	txr      repository.TxRunner
	posts    repository.PostRepository
	marks    repository.MarkRepository
	activity *ActivityService
	policy   VotePolicy
	cache    cache.Service
}

// NewVoteService creates a new VoteService. cache may be nil.
func NewVoteService(
	txr repository.TxRunner,
	posts repository.PostRepository,
	marks repository.MarkRepository,
	activity *ActivityService,
	policy VotePolicy,
	cacheService cache.Service,
) VoteService {
	if policy == "" {
		policy = PolicyToggle
	}
	return &voteService{
		txr:      txr,
		posts:    posts,
		marks:    marks,
		activity: activity,
		policy:   policy,
		cache:    cacheService,
	}
}

// Rate records, switches or removes userID's mark on a post. The mark
// mutation and the history upsert share one transaction; a failed vote
// leaves prior state untouched.
func (s *voteService) Rate(ctx context.Context, postID, userID int64, markType int) (*domain.RateResponse, error) {
	if !domain.ValidMarkType(markType) {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidMarkType, markType)
	}

	post, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if !NotOwner(userID, post.UserID) {
		return nil, common.ErrSelfVote
	}

	resp := &domain.RateResponse{PostID: postID}

	err = s.txr.RunInTx(func(tx *gorm.DB) error {
		marks := s.marks.WithTx(tx)

		existing, err := marks.FindByPostAndUser(postID, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		var events []domain.Event

		switch {
		case len(existing) == 1 && existing[0].MarkType == markType:
			if s.policy == PolicyStrict {
				return common.ErrDuplicateVote
			}
			// toggle off
			if _, err := marks.DeleteByPostAndUser(postID, userID); err != nil {
				return err
			}
			events = append(events, domain.NewVoteRemoved(postID, markType, now))
			resp.Rated = domain.MarkNone

		case len(existing) == 1:
			// switch sides: delete the old mark, record the new one
			if _, err := marks.DeleteByPostAndUser(postID, userID); err != nil {
				return err
			}
			events = append(events, domain.NewVoteRemoved(postID, existing[0].MarkType, now))
			if err := s.create(marks, postID, userID, markType); err != nil {
				return err
			}
			events = append(events, domain.NewVoteCast(postID, markType, now))
			resp.Rated = markType
			resp.Switched = true

		default:
			// No mark, or several left behind by a race the unique index
			// should have stopped. Wipe whatever is there and record a
			// fresh mark.
			if len(existing) > 1 {
				if _, err := marks.DeleteByPostAndUser(postID, userID); err != nil {
					return err
				}
				events = append(events, domain.NewVoteRemoved(postID, existing[0].MarkType, now))
			}
			if err := s.create(marks, postID, userID, markType); err != nil {
				return err
			}
			events = append(events, domain.NewVoteCast(postID, markType, now))
			resp.Rated = markType
		}

		if err := s.activity.Apply(tx, post, events...); err != nil {
			return err
		}

		resp.Liked, resp.Disliked, err = marks.Counts(postID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, postID)
	return resp, nil
}

func (s *voteService) create(marks repository.MarkRepository, postID, userID int64, markType int) error {
	err := marks.Create(&domain.PostMark{
		PostID:   postID,
		UserID:   userID,
		MarkType: markType,
	})
	if isDuplicateKey(err) {
		// A concurrent request won the race; the unique index held the
		// invariant. Surface it as a duplicate rather than a 500.
		return common.ErrDuplicateVote
	}
	return err
}

func (s *voteService) invalidate(ctx context.Context, postID int64) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	_ = s.cache.InvalidatePost(ctx, postID) //nolint:errcheck // cache only
	_ = s.cache.InvalidateFeed(ctx)         //nolint:errcheck // cache only
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// gorm translates these when TranslateError is on; the string check
// covers drivers opened without it.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
