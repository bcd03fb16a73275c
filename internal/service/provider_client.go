package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/config"
	"github.com/quillboard/quill-backend/internal/domain"
)

// ProviderClient exchanges a provider authorization code for a verified
// identity. Provider responses are untrusted input; everything is
// validated before use.
type ProviderClient interface {
	Exchange(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialIdentity, error)
}

type httpProviderClient struct {
	providers map[domain.SocialProvider]config.SocialProvider
	client    *http.Client
}

// NewProviderClient creates a ProviderClient from provider configs
func NewProviderClient(providers map[string]config.SocialProvider) ProviderClient {
	m := make(map[domain.SocialProvider]config.SocialProvider, len(providers))
	for name, cfg := range providers {
		m[domain.SocialProvider(name)] = cfg
	}
	return &httpProviderClient{
		providers: m,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Exchange performs the code-for-token and token-for-profile calls.
// Network and HTTP failures surface as transient upstream errors.
func (c *httpProviderClient) Exchange(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialIdentity, error) {
	cfg, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s not configured", common.ErrValidation, provider)
	}

	accessToken, err := c.exchangeCode(ctx, provider, cfg, code)
	if err != nil {
		return nil, err
	}

	identity, err := c.fetchIdentity(ctx, provider, accessToken)
	if err != nil {
		return nil, err
	}
	if identity.ExternalUID == "" {
		return nil, fmt.Errorf("%w: provider %s returned no user id", common.ErrUpstream, provider)
	}
	return identity, nil
}

func (c *httpProviderClient) exchangeCode(ctx context.Context, provider domain.SocialProvider, cfg config.SocialProvider, code string) (string, error) {
	var tokenURL string
	switch provider {
	case domain.SocialProviderGoogle:
		tokenURL = "https://oauth2.googleapis.com/token"
	case domain.SocialProviderFacebook:
		tokenURL = "https://graph.facebook.com/v18.0/oauth/access_token"
	case domain.SocialProviderGithub:
		tokenURL = "https://github.com/login/oauth/access_token"
	default:
		return "", fmt.Errorf("%w: unsupported provider %s", common.ErrValidation, provider)
	}

	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {cfg.RedirectURL},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	result, err := c.doJSON(req)
	if err != nil {
		return "", err
	}
	if errMsg, ok := result["error"]; ok {
		return "", fmt.Errorf("%w: token exchange rejected: %v", common.ErrUpstream, errMsg)
	}
	accessToken, ok := result["access_token"].(string)
	if !ok || accessToken == "" {
		return "", fmt.Errorf("%w: no access_token in provider response", common.ErrUpstream)
	}
	return accessToken, nil
}

func (c *httpProviderClient) fetchIdentity(ctx context.Context, provider domain.SocialProvider, accessToken string) (*domain.SocialIdentity, error) {
	var apiURL string
	switch provider {
	case domain.SocialProviderGoogle:
		apiURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	case domain.SocialProviderFacebook:
		apiURL = "https://graph.facebook.com/me?fields=id,name,email"
	case domain.SocialProviderGithub:
		apiURL = "https://api.github.com/user"
	default:
		return nil, fmt.Errorf("%w: unsupported provider %s", common.ErrValidation, provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	raw, err := c.doJSON(req)
	if err != nil {
		return nil, err
	}

	identity := &domain.SocialIdentity{Provider: provider}
	identity.ExternalUID = stringify(raw["id"])
	identity.Email, _ = raw["email"].(string)         //nolint:errcheck // type assertion, not error
	identity.DisplayName, _ = raw["name"].(string)    //nolint:errcheck // type assertion, not error
	if identity.DisplayName == "" {
		identity.DisplayName, _ = raw["login"].(string) //nolint:errcheck // github uses login
	}
	return identity, nil
}

func (c *httpProviderClient) doJSON(req *http.Request) (map[string]interface{}, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read provider response: %v", common.ErrUpstream, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: provider returned %d", common.ErrUpstream, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: parse provider response: %v", common.ErrUpstream, err)
	}
	return result, nil
}

// stringify renders provider ids that arrive as either string or number
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
