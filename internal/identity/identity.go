// Package identity resolves chat identities to canonical external ones for
// the event-bus backend. Lookups go over HTTP and degrade softly: a failed
// or empty lookup falls back to the raw chat identifier.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrAmbiguous is returned when a lookup matches more than one account. The
// caller falls back to the raw identifier and warns the room.
var ErrAmbiguous = errors.New("identity lookup returned multiple matches")

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("identity not found")

// Resolver maps a chat identifier to a canonical username.
type Resolver interface {
	Resolve(ctx context.Context, chatID string) (string, error)
}

// HTTPResolver queries a lookup service over HTTP. The expected response is
// {"result": [{"username": "..."}]}.
type HTTPResolver struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPResolver Constructor.
func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	return &HTTPResolver{BaseURL: baseURL, Client: client}
}

type lookupResponse struct {
	Result []struct {
		Username string `json:"username"`
	} `json:"result"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, chatID string) (string, error) {
	u := fmt.Sprintf("%s/search/users?chat_id=%s", r.BaseURL, url.QueryEscape(chatID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	res, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity lookup failed: status %d", res.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}

	switch len(body.Result) {
	case 0:
		return "", ErrNotFound
	case 1:
		return body.Result[0].Username, nil
	default:
		return "", ErrAmbiguous
	}
}
