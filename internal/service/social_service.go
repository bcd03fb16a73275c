package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/domain"
	"github.com/quillboard/quill-backend/internal/repository"
	"github.com/quillboard/quill-backend/pkg/logger"
	"github.com/quillboard/quill-backend/pkg/mailer"
	"github.com/quillboard/quill-backend/pkg/token"
	"gorm.io/gorm"
)

// maxUsernameAttempts bounds the suffix loop. The unique index on
// username is the authoritative guard; the loop is only a pre-check and
// must terminate even under concurrent registration.
const maxUsernameAttempts = 1000

// SocialService resolves external social identities to exactly one
// local user
type SocialService interface {
	Login(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialLoginResponse, error)
	ConfirmEmail(tokenString string) error
}

type socialService struct {
	txr       repository.TxRunner
	users     repository.UserRepository
	social    repository.SocialRepository
	tokens    repository.TokenRepository
	providers ProviderClient
	verifier  *token.Manager
	mailer    mailer.Mailer
	baseURL   string
}

// NewSocialService creates a new SocialService. mail may be nil.
func NewSocialService(
	txr repository.TxRunner,
	users repository.UserRepository,
	social repository.SocialRepository,
	tokens repository.TokenRepository,
	providers ProviderClient,
	verifier *token.Manager,
	mail mailer.Mailer,
	baseURL string,
) SocialService {
	return &socialService{
		txr:       txr,
		users:     users,
		social:    social,
		tokens:    tokens,
		providers: providers,
		verifier:  verifier,
		mailer:    mail,
		baseURL:   baseURL,
	}
}

// Login exchanges the authorization code and resolves the identity to a
// local user, creating one if needed. All row writes share one
// transaction: a conflict aborts with no partial user creation.
func (s *socialService) Login(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialLoginResponse, error) {
	if !domain.KnownProvider(provider) {
		return nil, fmt.Errorf("%w: unknown provider %q", common.ErrValidation, provider)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", common.ErrValidation)
	}

	identity, err := s.providers.Exchange(ctx, provider, code)
	if err != nil {
		return nil, err
	}

	resp := &domain.SocialLoginResponse{}
	var sendVerification bool
	var resolvedEmail string

	err = s.txr.RunInTx(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		social := s.social.WithTx(tx)

		// Candidate A: the social link itself
		var byLink *domain.User
		account, err := social.FindByProviderUID(identity.Provider, identity.ExternalUID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if account != nil {
			if byLink, err = users.FindByID(account.UserID); err != nil {
				return err
			}
		}

		// Candidate B: an existing user owning the provider's email
		var byEmail *domain.User
		if identity.Email != "" {
			byEmail, err = users.FindByEmail(identity.Email)
			if err != nil && !errors.Is(err, common.ErrUserNotFound) {
				return err
			}
		}

		var user *domain.User
		switch {
		case byLink != nil && byEmail != nil && byLink.ID != byEmail.ID:
			// Two different locals claim this identity. Never merge,
			// never guess.
			return common.ErrIdentityConflict
		case byLink != nil:
			user = byLink
		case byEmail != nil:
			user = byEmail
		default:
			user, err = s.register(users, identity)
			if err != nil {
				return err
			}
			resp.IsNewUser = true
			if user.Email != nil {
				sendVerification = true
				resolvedEmail = *user.Email
			}
		}

		if err := social.Upsert(&domain.SocialAccount{
			UserID:      user.ID,
			Provider:    identity.Provider,
			ExternalUID: identity.ExternalUID,
		}); err != nil {
			return err
		}

		// Attach the provider's email when the account has none.
		// Verification mail goes out only when the email was set in this
		// login, never on a routine re-login.
		if user.Email == nil && identity.Email != "" {
			email := identity.Email
			user.Email = &email
			if err := users.Update(user); err != nil {
				if isDuplicateKey(err) {
					// Another account took this email between the
					// candidate lookup and the write.
					return common.ErrIdentityConflict
				}
				return err
			}
			sendVerification = true
			resolvedEmail = email
		}

		authToken, err := s.tokens.WithTx(tx).GetOrCreate(user.ID)
		if err != nil {
			return err
		}

		resp.Token = authToken.Key
		resp.UserID = user.ID
		resp.Username = user.Username
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sendVerification {
		s.sendVerificationMail(resp.UserID, resp.Username, resolvedEmail)
	}

	return resp, nil
}

// register creates a user with a de-duplicated username and an empty
// profile. Collisions resolve by numeric suffix: bob, bob1, bob2, ...
func (s *socialService) register(users repository.UserRepository, identity *domain.SocialIdentity) (*domain.User, error) {
	base := usernameBase(identity.DisplayName)

	var email *string
	if identity.Email != "" {
		email = &identity.Email
	}

	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}

		exists, err := users.UsernameExists(candidate)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		user := &domain.User{Username: candidate, Email: email}
		if err := users.Create(user); err != nil {
			if isDuplicateKey(err) {
				// Either a concurrent registration grabbed the name
				// between pre-check and insert, or the email unique
				// index fired. The former moves on to the next suffix;
				// the latter means a concurrent login owns this email.
				if email != nil {
					if _, ferr := users.FindByEmail(*email); ferr == nil {
						return nil, common.ErrIdentityConflict
					}
				}
				continue
			}
			return nil, err
		}

		if err := users.CreateProfile(&domain.UserProfile{UserID: user.ID}); err != nil {
			return nil, err
		}
		return user, nil
	}

	return nil, fmt.Errorf("%w: could not find a free username for %q", common.ErrConflict, base)
}

// ConfirmEmail redeems a verification token. Single use: a confirmed
// profile rejects the token, as does an email changed since issuance.
func (s *socialService) ConfirmEmail(tokenString string) error {
	claims, err := s.verifier.VerifyVerification(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return common.ErrExpiredToken
		}
		return common.ErrInvalidToken
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		return err
	}
	if user.Email == nil || *user.Email != claims.Email {
		return common.ErrInvalidToken
	}

	profile, err := s.users.GetProfile(user.ID)
	if err != nil {
		return err
	}
	if profile.EmailConfirmed {
		return common.ErrAlreadyConfirmed
	}

	profile.EmailConfirmed = true
	return s.users.SaveProfile(profile)
}

// sendVerificationMail issues a time-boxed token and mails the link.
// Runs after commit, fire-and-forget.
func (s *socialService) sendVerificationMail(userID int64, username, email string) {
	if s.mailer == nil {
		return
	}

	tok, err := s.verifier.GenerateVerification(userID, email)
	if err != nil {
		logger.GetLogger().Error().Err(err).Int64("user_id", userID).
			Msg("verification token generation failed")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.mailer.Send(ctx, mailer.TemplateVerifyEmail, email, map[string]interface{}{
			"Username":   username,
			"ConfirmURL": s.baseURL + "/confirm-email?token=" + tok,
		})
		if err != nil {
			logger.GetLogger().Warn().Err(err).Int64("user_id", userID).
				Msg("verification mail failed")
		}
	}()
}

// usernameBase derives a username from a display name: lowercase, keep
// letters and digits, dots for inner spaces
func usernameBase(displayName string) string {
	var b strings.Builder
	lastDot := true
	for _, r := range strings.ToLower(strings.TrimSpace(displayName)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDot = false
		case r == ' ' || r == '.' || r == '-' || r == '_':
			if !lastDot {
				b.WriteByte('.')
				lastDot = true
			}
		}
	}
	base := strings.TrimSuffix(b.String(), ".")
	if base == "" {
		base = "user"
	}
	return base
}
