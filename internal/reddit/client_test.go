package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
)

func testConfig() config.RedditConfig {
	return config.RedditConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		Username:     "bot",
		Password:     "hunter2",
		UserAgent:    "test-agent",
	}
}

// newTestClient wires a client to httptest servers standing in for the
// token endpoint and the API host.
func newTestClient(t *testing.T, apiHandler http.HandlerFunc) (*Client, *[]string) {
	t.Helper()

	var tokenRequests []string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		tokenRequests = append(tokenRequests, r.PostForm.Get("grant_type"))
		w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(apiHandler)
	t.Cleanup(apiSrv.Close)

	c := NewClient(testConfig())
	c.tokenURL = tokenSrv.URL
	c.apiURL = apiSrv.URL
	return c, &tokenRequests
}

func TestSubmitPost(t *testing.T) {
	var gotPath, gotTitle, gotSR, gotAuth, gotUA string
	c, tokenRequests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotPath = r.URL.Path
		gotTitle = r.PostForm.Get("title")
		gotSR = r.PostForm.Get("sr")
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"json":{"errors":[]}}`))
	})

	if err := c.SubmitPost(context.Background(), "test", "My Title", "body text"); err != nil {
		t.Fatalf("SubmitPost: %v", err)
	}

	if gotPath != "/api/submit" {
		t.Errorf("path = %q", gotPath)
	}
	if gotTitle != "My Title" || gotSR != "test" {
		t.Errorf("form: title=%q sr=%q", gotTitle, gotSR)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if len(*tokenRequests) != 1 || (*tokenRequests)[0] != "password" {
		t.Errorf("token requests = %v, want one password grant", *tokenRequests)
	}
}

func TestSubmitPostTruncatesTitle(t *testing.T) {
	var gotTitle string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotTitle = r.PostForm.Get("title")
		w.Write([]byte(`{"json":{"errors":[]}}`))
	})

	long := strings.Repeat("x", MaxTitleLen+50)
	if err := c.SubmitPost(context.Background(), "test", long, "body"); err != nil {
		t.Fatalf("SubmitPost: %v", err)
	}
	if len(gotTitle) != MaxTitleLen {
		t.Errorf("title length = %d, want %d", len(gotTitle), MaxTitleLen)
	}
}

func TestReplyToThread(t *testing.T) {
	var gotPath, gotThing, gotText string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotPath = r.URL.Path
		gotThing = r.PostForm.Get("thing_id")
		gotText = r.PostForm.Get("text")
		w.Write([]byte(`{"json":{"errors":[]}}`))
	})

	permalink := "https://www.reddit.com/r/test/comments/1abc2d/my_post_title"
	if err := c.ReplyToThread(context.Background(), permalink, "my comment"); err != nil {
		t.Fatalf("ReplyToThread: %v", err)
	}

	if gotPath != "/api/comment" {
		t.Errorf("path = %q", gotPath)
	}
	if gotThing != "t3_1abc2d" {
		t.Errorf("thing_id = %q", gotThing)
	}
	if gotText != "my comment" {
		t.Errorf("text = %q", gotText)
	}
}

func TestReplyToThreadRejectsBadPermalink(t *testing.T) {
	c := NewClient(testConfig())
	if err := c.ReplyToThread(context.Background(), "https://example.com/nope", "hi"); err == nil {
		t.Fatal("expected error for permalink without a thread id")
	}
}

func TestAPIErrorsSurface(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`))
	})

	err := c.SubmitPost(context.Background(), "test", "t", "b")
	if err == nil {
		t.Fatal("expected API error")
	}
	if !strings.Contains(err.Error(), "RATELIMIT") {
		t.Errorf("error should carry API detail: %v", err)
	}
}

func TestTokenReusedAcrossCalls(t *testing.T) {
	c, tokenRequests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"json":{"errors":[]}}`))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := c.SubmitPost(ctx, "test", "t", "b"); err != nil {
			t.Fatal(err)
		}
	}
	if len(*tokenRequests) != 1 {
		t.Errorf("token fetched %d times, want 1", len(*tokenRequests))
	}
}
