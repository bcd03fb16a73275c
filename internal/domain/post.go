package domain

import "time"

// Post is a blog entry. UserID is nullable: anonymous posting keeps only
// the username snapshot and optional contact email.
type Post struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    *int64    `gorm:"column:user_id;index" json:"user_id"`
	Username  string    `gorm:"column:username;size:200" json:"username"`
	Title     string    `gorm:"column:title;size:2000" json:"title"`
	Body      string    `gorm:"column:body;type:text" json:"body"`
	Email     string    `gorm:"column:email;size:254" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Tags []Tag `gorm:"many2many:post_tags" json:"tags"`
}

func (Post) TableName() string {
	return "posts"
}

// MinBodyLength is the shortest accepted post body
const MinBodyLength = 10

// CreatePostRequest creates a post. Author identity comes from the
// bearer token, not the payload.
type CreatePostRequest struct {
	Username string   `json:"username"`
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body" binding:"required"`
	Email    string   `json:"email"`
	Tags     []string `json:"tags"`
}

// UpdatePostRequest updates a post's editable fields
type UpdatePostRequest struct {
	Title string   `json:"title" binding:"required"`
	Body  string   `json:"body" binding:"required"`
	Email string   `json:"email"`
	Tags  []string `json:"tags"`
}

// PostResponse is the read projection of a post, including vote counts
// and the caller's own mark (rated: 0 none, 1 like, 2 dislike)
type PostResponse struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user"`
	Username   string    `json:"username"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Liked      int64     `json:"liked"`
	Disliked   int64     `json:"disliked"`
	Rated      int       `json:"rated"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created"`
	LastAction time.Time `json:"last_action"`
}

// ToResponse builds a PostResponse; counts and rated come from the mark
// ledger, lastAction from the post's history row
func (p *Post) ToResponse(liked, disliked int64, rated int, lastAction time.Time) *PostResponse {
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = t.Alias
	}
	return &PostResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Username:   p.Username,
		Title:      p.Title,
		Body:       p.Body,
		Liked:      liked,
		Disliked:   disliked,
		Rated:      rated,
		Tags:       tags,
		CreatedAt:  p.CreatedAt,
		LastAction: lastAction,
	}
}

// PostFilter narrows the feed query
type PostFilter struct {
	IDGte    int64
	Body     string // substring match
	UserID   int64
	TagAlias string
}
