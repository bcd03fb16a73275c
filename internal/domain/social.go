package domain

import "time"

// SocialProvider identifies an external identity provider
type SocialProvider string

const (
	SocialProviderGoogle   SocialProvider = "google"
	SocialProviderFacebook SocialProvider = "facebook"
	SocialProviderGithub   SocialProvider = "github"
)

// KnownProvider reports whether p is a supported provider
func KnownProvider(p SocialProvider) bool {
	switch p {
	case SocialProviderGoogle, SocialProviderFacebook, SocialProviderGithub:
		return true
	}
	return false
}

// SocialAccount links an external provider identity to a local user.
// The (provider, external_uid) pair is unique: one external identity
// resolves to exactly one local user. A user may link several networks.
type SocialAccount struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64          `gorm:"column:user_id;index" json:"user_id"`
	Provider    SocialProvider `gorm:"column:provider;uniqueIndex:idx_provider_uid;size:30" json:"provider"`
	ExternalUID string         `gorm:"column:external_uid;uniqueIndex:idx_provider_uid;size:191" json:"external_uid"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SocialAccount) TableName() string {
	return "social_accounts"
}

// SocialIdentity is the validated result of a provider callback
type SocialIdentity struct {
	Provider    SocialProvider `json:"provider"`
	ExternalUID string         `json:"external_uid"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
}

// SocialLoginRequest exchanges a provider authorization code
type SocialLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// SocialLoginResponse is returned after successful identity resolution
type SocialLoginResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	IsNewUser bool   `json:"is_new_user"`
}
