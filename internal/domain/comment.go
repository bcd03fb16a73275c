package domain

import "time"

// Comment belongs to a post. Like posts, comments may be anonymous.
type Comment struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"column:post_id;index" json:"post"`
	UserID    *int64    `gorm:"column:user_id;index" json:"user_id"`
	Username  string    `gorm:"column:username;size:200" json:"username"`
	Body      string    `gorm:"column:body;type:text" json:"body"`
	Email     string    `gorm:"column:email;size:254" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// CreateCommentRequest creates a comment on a post
type CreateCommentRequest struct {
	Username string `json:"username"`
	Body     string `json:"body" binding:"required"`
	Email    string `json:"email"`
}

// UpdateCommentRequest edits a comment body
type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// CommentResponse is the read projection of a comment
type CommentResponse struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post"`
	UserID    *int64    `json:"user"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created"`
}

// ToResponse converts a Comment to its response DTO
func (c *Comment) ToResponse() *CommentResponse {
	return &CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Username:  c.Username,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}
