package domain

import "time"

// AuthToken is the opaque bearer token for API authentication.
// One active token per user, get-or-create semantics: logging in again
// returns the existing token rather than rotating it.
type AuthToken struct {
	Key       string    `gorm:"column:token_key;primaryKey;size:64" json:"key"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
