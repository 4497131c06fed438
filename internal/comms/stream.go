package comms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatme/internal/domain"
)

const defaultBaseURL = "https://chat.stream-io-api.com"

// StreamClient implements Provider against the Stream REST API. Server-side
// requests are authorized with a JWT signed by the API secret.
type StreamClient struct {
	apiKey      string
	secret      []byte
	baseURL     string
	serverToken string
	http        *http.Client
}

var _ Provider = (*StreamClient)(nil)

func NewStreamClient(apiKey, apiSecret, baseURL string) (*StreamClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("stream api key and secret are required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &StreamClient{
		apiKey:  apiKey,
		secret:  []byte(apiSecret),
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	token, err := c.sign(jwt.MapClaims{"server": true})
	if err != nil {
		return nil, fmt.Errorf("sign server token: %w", err)
	}
	c.serverToken = token
	return c, nil
}

func (c *StreamClient) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// CreateToken mints a client token bound to the user id. No expiry is set;
// the platform treats these as long-lived user tokens.
func (c *StreamClient) CreateToken(userID string) (string, error) {
	return c.sign(jwt.MapClaims{"user_id": userID})
}

func (c *StreamClient) UpsertUser(ctx context.Context, p Profile) error {
	body := map[string]any{
		"users": map[string]any{
			p.ID: map[string]any{
				"id":    p.ID,
				"name":  p.Name,
				"image": p.Image,
			},
		},
	}
	return c.do(ctx, http.MethodPost, "/users", body)
}

func (c *StreamClient) CreateChannel(ctx context.Context, channelID, createdBy, name string, memberIDs []string) error {
	body := map[string]any{
		"data": map[string]any{
			"name":          name,
			"members":       memberIDs,
			"created_by_id": createdBy,
		},
	}
	return c.do(ctx, http.MethodPost, "/channels/messaging/"+url.PathEscape(channelID)+"/query", body)
}

func (c *StreamClient) DeleteChannel(ctx context.Context, channelID string) error {
	return c.do(ctx, http.MethodDelete, "/channels/messaging/"+url.PathEscape(channelID), nil)
}

func (c *StreamClient) AddChannelMembers(ctx context.Context, channelID string, userIDs []string) error {
	body := map[string]any{"add_members": userIDs}
	return c.do(ctx, http.MethodPost, "/channels/messaging/"+url.PathEscape(channelID), body)
}

func (c *StreamClient) RemoveChannelMembers(ctx context.Context, channelID string, userIDs []string) error {
	body := map[string]any{"remove_members": userIDs}
	return c.do(ctx, http.MethodPost, "/channels/messaging/"+url.PathEscape(channelID), body)
}

func (c *StreamClient) do(ctx context.Context, method, path string, body any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	u := c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.serverToken)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s: %w", method, path, resp.StatusCode, msg, domain.ErrUpstream)
	}
	return nil
}
