package domain

import "time"

// Event names
const (
	EventPostCreated  = "PostCreated"
	EventCommentAdded = "CommentAdded"
	EventVoteCast     = "VoteCast"
	EventVoteRemoved  = "VoteRemoved"
)

// Event is an activity-affecting fact produced by a mutation. Mutations
// return the events they caused instead of updating feed metadata as a
// hidden save side effect; the activity aggregator consumes them.
type Event struct {
	Name   string    `json:"name"`
	PostID int64     `json:"post_id"`
	Mark   int       `json:"mark,omitempty"` // for vote events
	At     time.Time `json:"at"`
}

// NewPostCreated records the creation of a post
func NewPostCreated(postID int64, at time.Time) Event {
	return Event{Name: EventPostCreated, PostID: postID, At: at}
}

// NewCommentAdded records a comment on a post
func NewCommentAdded(postID int64, at time.Time) Event {
	return Event{Name: EventCommentAdded, PostID: postID, At: at}
}

// NewVoteCast records a mark being created
func NewVoteCast(postID int64, mark int, at time.Time) Event {
	return Event{Name: EventVoteCast, PostID: postID, Mark: mark, At: at}
}

// NewVoteRemoved records a mark being deleted, whatever the cause
func NewVoteRemoved(postID int64, mark int, at time.Time) Event {
	return Event{Name: EventVoteRemoved, PostID: postID, Mark: mark, At: at}
}
