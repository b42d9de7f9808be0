package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
)

const defaultGistAPI = "https://api.github.com"

// GistStore keeps the seen set as an ordered JSON array inside one file of
// a GitHub Gist.
type GistStore struct {
	cfg        config.StateConfig
	httpClient *http.Client
	baseURL    string
}

func NewGistStore(cfg config.StateConfig) *GistStore {
	return &GistStore{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    defaultGistAPI,
	}
}

type gistDocument struct {
	Files map[string]struct {
		Content string `json:"content"`
	} `json:"files"`
}

// Load fetches the gist and decodes the state file. A missing file or
// malformed content yields an empty set rather than an error: the worst
// case is re-evaluating entries the lookback window would drop anyway.
func (s *GistStore) Load(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.gistURL(), nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seen-set gist: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist fetch failed: %s: %s", resp.Status, bodySnippet(body))
	}

	var doc gistDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse gist response: %w", err)
	}

	seen := make(map[string]struct{})
	file, ok := doc.Files[s.cfg.Filename]
	if !ok || file.Content == "" {
		return seen, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(file.Content), &ids); err != nil {
		return seen, nil
	}
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

// Save replaces the state file with the sorted id list.
func (s *GistStore) Save(ctx context.Context, seen map[string]struct{}) error {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	content, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]interface{}{
		"files": map[string]interface{}{
			s.cfg.Filename: map[string]string{"content": string(content)},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.gistURL(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save seen-set gist: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gist save failed: %s: %s", resp.Status, bodySnippet(body))
	}
	return nil
}

func (s *GistStore) gistURL() string {
	return fmt.Sprintf("%s/gists/%s", s.baseURL, s.cfg.GistID)
}

func (s *GistStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.cfg.GistToken)
	req.Header.Set("Accept", "application/vnd.github+json")
}

func bodySnippet(body []byte) string {
	s := strings.ReplaceAll(string(body), "\n", " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
