// Package remote implements the HTTP client for the story service. It owns
// no retry logic: every call is a single attempt whose failure is reported to
// the caller.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUnauthorized wraps every 401 response so callers can invalidate the
// stored session with errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// TokenSource supplies the Authorization header value for authenticated
// endpoints. The preference store satisfies this.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the story service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the service at baseURL (without a trailing
// slash, e.g. "https://story-api.dicoding.dev/v1").
func NewClient(baseURL, userAgent string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*BasicResponse, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)
	form.Set("password", password)

	var out BasicResponse
	if err := c.postForm(ctx, "/register", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the session token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var out LoginResponse
	if err := c.postForm(ctx, "/login", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stories fetches one remote page. withLocation restricts the result to
// stories carrying coordinates.
func (c *Client) Stories(ctx context.Context, page, size int, withLocation bool) (*StoriesResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	location := 0
	if withLocation {
		location = 1
	}
	query.Set("location", strconv.Itoa(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/stories?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	var out StoriesResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddStoryRequest carries the multipart fields of a story upload.
type AddStoryRequest struct {
	Photo       io.Reader
	Filename    string
	Description string
	Lon         *float64
	Lat         *float64
}

// AddStory uploads a new story as multipart/form-data.
func (c *Client) AddStory(ctx context.Context, story AddStoryRequest) (*BasicResponse, error) {
	var body strings.Builder
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("photo", story.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, story.Photo); err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if err := writer.WriteField("description", story.Description); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if story.Lon != nil {
		if err := writer.WriteField("lon", strconv.FormatFloat(*story.Lon, 'f', -1, 64)); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if story.Lat != nil {
		if err := writer.WriteField("lat", strconv.FormatFloat(*story.Lat, 'f', -1, 64)); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/stories", strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	var out BasicResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError extracts the service's error message from a non-2xx body and
// wraps 401s in ErrUnauthorized.
func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	message := strings.TrimSpace(string(body))
	var basic BasicResponse
	if err := json.Unmarshal(body, &basic); err == nil && basic.Message != "" {
		message = basic.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", message, ErrUnauthorized)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, message)
}
