package domain

import "time"

// Mark types
const (
	MarkNone    = 0
	MarkLike    = 1
	MarkDislike = 2
)

// PostMark is one user's sentiment on one post. The composite unique
// index is the authoritative guard for the one-mark-per-(post,user)
// invariant; application-level checks are only a pre-check.
type PostMark struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID     int64     `gorm:"column:post_id;uniqueIndex:idx_post_user" json:"post"`
	UserID     int64     `gorm:"column:user_id;uniqueIndex:idx_post_user" json:"user"`
	MarkType   int       `gorm:"column:mark_type" json:"mark_type"`
	IP         string    `gorm:"column:ip;size:45" json:"-"`
	SessionKey string    `gorm:"column:session_key;size:2000" json:"-"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PostMark) TableName() string {
	return "post_marks"
}

// ValidMarkType reports whether t is a known mark type
func ValidMarkType(t int) bool {
	return t == MarkLike || t == MarkDislike
}

// RateRequest casts or toggles a vote on a post
type RateRequest struct {
	MarkType int `json:"mark_type" binding:"required"`
}

// RateResponse reports the ledger state after a vote operation.
// Switched is set when the vote replaced a mark of the other type.
type RateResponse struct {
	PostID   int64 `json:"post"`
	Rated    int   `json:"rated"`
	Switched bool  `json:"switched"`
	Liked    int64 `json:"liked"`
	Disliked int64 `json:"disliked"`
}
