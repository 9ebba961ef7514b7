// Package clerk talks to the Clerk backend API. Only the single-user fetch
// is needed: session state lives in the session JWT, webhook payloads carry
// their own user data.
package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"devhub/internal/identity"
)

type Client struct {
	secretKey      string
	publishableKey string
	baseURL        string
	http           *http.Client
}

func New(secretKey, publishableKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.clerk.com/v1"
	}
	return &Client{
		secretKey:      secretKey,
		publishableKey: publishableKey,
		baseURL:        baseURL,
		http:           &http.Client{Timeout: timeout},
	}
}

// Configured reports whether both halves of the Clerk key pair are present.
// The backend API only needs the secret key, but a deployment without the
// publishable key cannot sign users in, so the webhook probe treats it as
// unconfigured.
func (c *Client) Configured() bool { return c.secretKey != "" && c.publishableKey != "" }

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userResponse struct {
	ID                    string         `json:"id"`
	Username              *string        `json:"username"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	PublicMetadata        map[string]any `json:"public_metadata"`
}

func (c *Client) Profile(ctx context.Context, userID string) (*identity.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clerk: fetch user %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clerk: fetch user %s: status %d", userID, resp.StatusCode)
	}

	var u userResponse
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("clerk: decode user %s: %w", userID, err)
	}
	return u.toProfile(), nil
}

func (u *userResponse) toProfile() *identity.Profile {
	p := &identity.Profile{
		ID:        u.ID,
		Email:     primaryEmail(u.EmailAddresses, u.PrimaryEmailAddressID),
		AvatarURL: u.ImageURL,
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if hint, ok := u.PublicMetadata["role"].(string); ok {
		p.RoleHint = hint
	}
	return p
}

// primaryEmail picks the address flagged primary, falling back to the first.
func primaryEmail(addrs []emailAddress, primaryID string) string {
	if len(addrs) == 0 {
		return ""
	}
	for _, a := range addrs {
		if primaryID != "" && a.ID == primaryID {
			return a.EmailAddress
		}
	}
	return addrs[0].EmailAddress
}
