package domain

import "time"

// User is a local account. Accounts created through social login have no
// password; they authenticate by provider identity only.
type User struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;uniqueIndex;size:150" json:"username"`
	Email     *string   `gorm:"column:email;size:254;uniqueIndex" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile carries per-user settings, one row per user
type UserProfile struct {
	ID                   int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID               int64 `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	EmailConfirmed       bool  `gorm:"column:email_confirmed;default:false" json:"email_confirmed"`
	ReceiveCommentsEmail bool  `gorm:"column:receive_comments_email;default:true" json:"receive_comments_email"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// UserResponse is the public projection of a user
type UserResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Posts    []int64 `json:"posts"`
}

// ToResponse converts a User with its post IDs to a response DTO
func (u *User) ToResponse(postIDs []int64) *UserResponse {
	if postIDs == nil {
		postIDs = []int64{}
	}
	return &UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Posts:    postIDs,
	}
}

// UpdateProfileRequest updates the caller's own profile settings
type UpdateProfileRequest struct {
	ReceiveCommentsEmail *bool `json:"receive_comments_email"`
}
