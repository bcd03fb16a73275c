package domain

import "time"

// PostHistory is the derived activity record for one post. LastAction is
// the feed sort key: the max of the post's creation time and the
// commented/up-voted/down-voted timestamps. UnVoted is recorded for
// audit but deliberately kept out of LastAction — removing a vote must
// not bump a post in the feed.
type PostHistory struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID     int64      `gorm:"column:post_id;uniqueIndex" json:"post"`
	Commented  *time.Time `gorm:"column:commented" json:"commented"`
	UpVoted    *time.Time `gorm:"column:up_voted" json:"up_voted"`
	DownVoted  *time.Time `gorm:"column:down_voted" json:"down_voted"`
	UnVoted    *time.Time `gorm:"column:un_voted" json:"un_voted"`
	LastAction time.Time  `gorm:"column:last_action;index" json:"last_action"`
}

func (PostHistory) TableName() string {
	return "post_histories"
}
