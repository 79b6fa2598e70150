package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
)

// UserHeader carries the acting user on every API call.
const UserHeader = "X-User-ID"

const maxErrorBody = 64 << 10

// Client talks to the profile API. It satisfies syncer.Backend.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	var out models.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/profile/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveProfile(ctx context.Context, req models.SaveRequest) (*models.SaveResponse, error) {
	var out models.SaveResponse
	if err := c.do(ctx, http.MethodPut, "/api/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSocialLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/profile/links/action/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CheckUsername(ctx context.Context, candidate string) (bool, error) {
	var out models.UsernameAvailability
	if err := c.do(ctx, http.MethodGet, "/api/profile/check-username/"+url.PathEscape(candidate), nil, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// do sends one request. Non-2xx responses come back as *errors.AppError built
// from the server's error body; transport failures are returned unwrapped so
// callers may retry them.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.FromContext(ctx).WithPrefix("client").WithField("method", method)
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to encode request: %v", err)
			return err
		}
		reader = bytes.NewReader(data)
	}

	log.Debug("requesting %s", endpoint)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set(UserHeader, c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error.Code != "" {
		return errors.New(eb.Error.Code, eb.Error.Message, resp.StatusCode)
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.New(codeForStatus(resp.StatusCode), msg, resp.StatusCode)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return errors.ErrCodeNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrCodeUnauthorized
	}
	if status >= 400 && status < 500 {
		return errors.ErrCodeBadRequest
	}
	return errors.ErrCodeInternal
}
