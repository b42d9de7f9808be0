// Package reddit is a thin client for the two Reddit API calls the bridge
// needs: submitting a self post and commenting on an existing thread. It
// authenticates with the script-app password grant and retains the access
// token for the lifetime of one run.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
	"github.com/jarmeli1/reddit-rss-alerts/internal/inbox"
)

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL   = "https://oauth.reddit.com"

	// MaxTitleLen is Reddit's post title cap.
	MaxTitleLen = 300
	// MaxCommentLen stays under Reddit's 10k comment cap.
	MaxCommentLen = 9_900
)

type Client struct {
	cfg        config.RedditConfig
	httpClient *http.Client

	tokenURL string
	apiURL   string
	token    string
}

func NewClient(cfg config.RedditConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		tokenURL:   defaultTokenURL,
		apiURL:     defaultAPIURL,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Error       string `json:"error"`
}

// authenticate obtains an OAuth token via the password grant. Called
// lazily before the first API request of a run.
func (c *Client) authenticate(ctx context.Context) error {
	if c.token != "" {
		return nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.cfg.Username},
		"password":   {c.cfg.Password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed: %s: %s", resp.Status, snippet(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.Error != "" {
		return fmt.Errorf("token request rejected: %s", tok.Error)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response missing access_token")
	}

	c.token = tok.AccessToken
	return nil
}

// SubmitPost creates a self post on the target board. Title and body are
// truncated to the platform caps before submission.
func (c *Client) SubmitPost(ctx context.Context, subreddit, title, body string) error {
	form := url.Values{
		"api_type": {"json"},
		"kind":     {"self"},
		"sr":       {subreddit},
		"title":    {truncate(title, MaxTitleLen)},
		"text":     {truncate(body, MaxCommentLen)},
	}
	return c.apiPost(ctx, "/api/submit", form)
}

// ReplyToThread comments on the thread a permalink identifies.
func (c *Client) ReplyToThread(ctx context.Context, permalink, body string) error {
	thing := inbox.ThreadID(permalink)
	if thing == "" {
		return fmt.Errorf("no thread id in permalink %q", permalink)
	}

	form := url.Values{
		"api_type": {"json"},
		"thing_id": {thing},
		"text":     {truncate(body, MaxCommentLen)},
	}
	return c.apiPost(ctx, "/api/comment", form)
}

// apiResponse is the api_type=json envelope; errors arrive as string tuples.
type apiResponse struct {
	JSON struct {
		Errors [][]interface{} `json:"errors"`
	} `json:"json"`
}

func (c *Client) apiPost(ctx context.Context, path string, form url.Values) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 16384))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed: %s: %s", path, resp.Status, snippet(body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Some endpoints return bare jquery payloads; a 200 without a
		// parseable envelope is treated as success.
		return nil
	}
	if len(parsed.JSON.Errors) > 0 {
		return fmt.Errorf("%s rejected: %s", path, formatAPIErrors(parsed.JSON.Errors))
	}
	return nil
}

func formatAPIErrors(errs [][]interface{}) string {
	var parts []string
	for _, tuple := range errs {
		var fields []string
		for _, v := range tuple {
			if s, ok := v.(string); ok {
				fields = append(fields, s)
			}
		}
		parts = append(parts, strings.Join(fields, " "))
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func snippet(body []byte) string {
	s := strings.ReplaceAll(string(body), "\n", " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
