package domain

import "time"

// Version change types
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
)

// PostVersion is an immutable snapshot of a post taken after every
// successful create or update. Never mutated or deleted by normal flows.
type PostVersion struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID     int64     `gorm:"column:post_id;index" json:"post_id"`
	Version    int       `gorm:"column:version" json:"version"`
	ChangeType string    `gorm:"column:change_type;size:20" json:"change_type"`
	Username   string    `gorm:"column:username;size:200" json:"username"`
	Title      string    `gorm:"column:title;size:2000" json:"title"`
	Body       string    `gorm:"column:body;type:text" json:"body"`
	Email      string    `gorm:"column:email;size:254" json:"email,omitempty"`
	Tags       string    `gorm:"column:tags;size:2000" json:"tags"`
	EditedBy   *int64    `gorm:"column:edited_by" json:"edited_by"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PostVersion) TableName() string {
	return "post_versions"
}

// CommentVersion is the comment counterpart of PostVersion
type CommentVersion struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CommentID  int64     `gorm:"column:comment_id;index" json:"comment_id"`
	Version    int       `gorm:"column:version" json:"version"`
	ChangeType string    `gorm:"column:change_type;size:20" json:"change_type"`
	Username   string    `gorm:"column:username;size:200" json:"username"`
	Body       string    `gorm:"column:body;type:text" json:"body"`
	Email      string    `gorm:"column:email;size:254" json:"email,omitempty"`
	EditedBy   *int64    `gorm:"column:edited_by" json:"edited_by"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CommentVersion) TableName() string {
	return "comment_versions"
}
