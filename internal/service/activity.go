package service

import (
	"time"

	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"gorm.io/gorm"
)

// ActivityService maintains PostHistory.last_action, the feed sort key.
// It consumes the event list returned by mutations; nothing else touches
// the history row.
type ActivityService struct {
	history repository.HistoryRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(history repository.HistoryRepository) *ActivityService {
	return &ActivityService{history: history}
}

// RecomputeLastAction returns the feed sort key for a history row: the
// max of the post's creation time and the commented/up-voted/down-voted
// timestamps. un_voted never participates: removing a vote must not
// bump a post in the feed. Idempotent by construction.
func RecomputeLastAction(created time.Time, h *domain.PostHistory) time.Time {
	last := created
	for _, t := range []*time.Time{h.Commented, h.UpVoted, h.DownVoted} {
		if t != nil && t.After(last) {
			last = *t
		}
	}
	return last
}

// Apply folds events into the post's history row and recomputes
// last_action, all against tx so the upsert commits or rolls back with
// the mutation that produced the events.
func (s *ActivityService) Apply(tx *gorm.DB, post *domain.Post, events ...domain.Event) error {
	hist := s.history.WithTx(tx)

	h, err := hist.GetOrCreate(post.ID, post.CreatedAt)
	if err != nil {
		return err
	}

	for _, ev := range events {
		at := ev.At
		switch ev.Name {
		case domain.EventPostCreated:
			// creation time already seeds last_action
		case domain.EventCommentAdded:
			h.Commented = &at
		case domain.EventVoteCast:
			if ev.Mark == domain.MarkLike {
				h.UpVoted = &at
			} else {
				h.DownVoted = &at
			}
		case domain.EventVoteRemoved:
			h.UnVoted = &at
		}
	}

	h.LastAction = RecomputeLastAction(post.CreatedAt, h)
	return hist.Save(h)
}
